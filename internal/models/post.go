package models

import "time"

type Post struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatorID    string `gorm:"type:varchar(36);index;not null" json:"creator_id"`
	Caption      string `gorm:"type:varchar(2200)" json:"caption"`
	Location     string `json:"location,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	ImageID      string `json:"image_id,omitempty"`
	LikesCount   int    `gorm:"default:0" json:"likes_count"`
	CommentCount int    `gorm:"default:0" json:"comment_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator User `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
}

// Tag names are unique case-insensitively. The unique index sits on the
// normalized column so two concurrent creates of "Art" and "art" cannot
// both land; Name keeps the casing the tag was first seen with.
type Tag struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	NameNorm string `gorm:"uniqueIndex;not null" json:"-"`
}

type PostTag struct {
	PostID string `gorm:"primaryKey;type:varchar(36)" json:"post_id"`
	TagID  uint   `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`

	Post Post `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tag  Tag  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (PostTag) TableName() string {
	return "posts_tags"
}

// FeedPost is a post enriched for the reading side: creator summary, tag
// names, and flags relative to the requesting user. PageNumber is display
// metadata only; it does not drive pagination.
type FeedPost struct {
	Post
	Creator    UserSummary `json:"creator"`
	Tags       []string    `json:"tags"`
	HasLiked   bool        `json:"has_liked"`
	HasSaved   bool        `json:"has_saved"`
	PageNumber int         `json:"page_number,omitempty"`
}

// PostStats is the engagement snapshot for a single post.
type PostStats struct {
	LikesCount   int  `json:"likes_count"`
	CommentCount int  `json:"comment_count"`
	HasLiked     bool `json:"has_liked"`
	HasSaved     bool `json:"has_saved"`
}

type TrendingTag struct {
	Name  string `json:"name"`
	Count int    `gorm:"column:tag_count" json:"count"`
}

type CreatePostRequest struct {
	Caption  string `json:"caption" validate:"max=2200"`
	Location string `json:"location"`
	Tags     string `json:"tags"`
	ImageURL string `json:"image_url"`
	ImageID  string `json:"image_id"`
}

type UpdatePostRequest struct {
	Caption  string `json:"caption" validate:"max=2200"`
	Location string `json:"location"`
	Tags     string `json:"tags"`
	ImageURL string `json:"image_url"`
	ImageID  string `json:"image_id"`
}
