// Package pagination holds the offset cursor used by every paginated
// listing. Pages are zero-indexed: page 0 is the newest window.
package pagination

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Cursor struct {
	Page     int
	PageSize int
}

// Parse builds a cursor from raw query strings, falling back to defaults
// on missing or malformed values.
func Parse(page, pageSize string) Cursor {
	c := Cursor{Page: 0, PageSize: DefaultPageSize}

	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		c.Page = n
	}
	if n, err := strconv.Atoi(pageSize); err == nil && n > 0 {
		c.PageSize = n
	}
	if c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
	return c
}

func (c Cursor) Offset() int {
	return c.Page * c.PageSize
}

func (c Cursor) Limit() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

// PageNumber converts an item's absolute start index into the 1-indexed
// page number shown to clients. Display metadata only.
func PageNumber(startIndex, limit int) int {
	if limit <= 0 {
		return 1
	}
	return startIndex/limit + 1
}
