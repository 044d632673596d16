// Package search covers the discovery surface: trending tags and tag search.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/snapgram-app/backend/internal/apperror"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/pagination"
	"github.com/snapgram-app/backend/internal/posts"
)

const trendingLimit = 4

type Service struct {
	db    *gorm.DB
	posts *posts.Service
	log   *zap.Logger
}

func NewService(db *gorm.DB, postService *posts.Service, log *zap.Logger) *Service {
	return &Service{db: db, posts: postService, log: log}
}

// TrendingTags returns the four most-used tags. Ties break on name so the
// ranking is stable between calls.
func (s *Service) TrendingTags(ctx context.Context) ([]models.TrendingTag, error) {
	trending := []models.TrendingTag{}
	err := s.db.WithContext(ctx).Table("posts_tags").
		Select("tags.name AS name, COUNT(posts_tags.tag_id) AS tag_count").
		Joins("JOIN tags ON tags.id = posts_tags.tag_id").
		Group("tags.name").
		Order("tag_count DESC, tags.name ASC").
		Limit(trendingLimit).
		Scan(&trending).Error
	if err != nil {
		s.log.Error("trending tags query failed", zap.Error(err))
		return nil, apperror.Persistence("trending tags query")
	}
	return trending, nil
}

// SearchPosts finds posts whose tags contain the term, case-insensitively.
// A post matching several tags appears once. Results are newest-first and
// windowed like the feed.
func (s *Service) SearchPosts(ctx context.Context, term, viewerID string, cur pagination.Cursor) ([]models.FeedPost, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.FeedPost{}, nil
	}

	var matches []struct {
		ID        string
		CreatedAt time.Time
	}
	err := s.db.WithContext(ctx).Table("posts").
		Select("DISTINCT posts.id, posts.created_at").
		Joins("JOIN posts_tags ON posts_tags.post_id = posts.id").
		Joins("JOIN tags ON tags.id = posts_tags.tag_id").
		Where("tags.name_norm LIKE ?", "%"+strings.ToLower(term)+"%").
		Order("posts.created_at DESC").
		Limit(cur.Limit()).Offset(cur.Offset()).
		Scan(&matches).Error
	if err != nil {
		s.log.Error("post search failed", zap.String("term", term), zap.Error(err))
		return nil, apperror.Persistence("post search")
	}

	results := make([]models.FeedPost, 0, len(matches))
	for _, match := range matches {
		post, err := s.posts.GetByID(ctx, match.ID, viewerID)
		if err != nil {
			return nil, err
		}
		results = append(results, *post)
	}
	return results, nil
}
