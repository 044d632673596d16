// Package tags turns the raw comma-separated tag string clients send into
// Tag rows, creating any the vocabulary does not have yet.
package tags

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/snapgram-app/backend/internal/models"
)

// Resolver runs against whatever handle it is constructed with, so post
// creation can resolve on the plain connection while post updates resolve
// on their transaction.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Normalize strips every space from the raw string, splits it on commas and
// drops empty entries. "art, DigitalArt ,," becomes ["art" "DigitalArt"].
func Normalize(raw string) []string {
	stripped := strings.ReplaceAll(raw, " ", "")
	if stripped == "" {
		return nil
	}

	var names []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(stripped, ",") {
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

// Resolve maps the raw tag string to tag IDs, creating missing tags.
// Matching is case-insensitive: "Art" resolves to an existing "art" rather
// than creating a duplicate. The first-seen casing wins for new tags.
func (r *Resolver) Resolve(ctx context.Context, raw string) ([]uint, error) {
	names := Normalize(raw)
	if len(names) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(names))
	for _, name := range names {
		norm := strings.ToLower(name)
		var tag models.Tag
		err := r.db.WithContext(ctx).
			Where("name_norm = ?", norm).
			First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, NameNorm: norm}
			err = r.db.WithContext(ctx).Create(&tag).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent create won the unique index; take its row.
				err = r.db.WithContext(ctx).
					Where("name_norm = ?", norm).
					First(&tag).Error
			}
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
