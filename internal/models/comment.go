package models

import "time"

type Comment struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID   string `gorm:"type:varchar(36);index;not null" json:"post_id"`
	AuthorID string `gorm:"type:varchar(36);not null" json:"author_id"`
	Body     string `gorm:"type:varchar(2200);not null" json:"body"`

	CreatedAt time.Time `json:"created_at"`

	Post   Post `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// CommentView joins the author's display fields onto the comment row.
type CommentView struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	ImageURL   string    `json:"image_url,omitempty"`
	PageNumber int       `gorm:"-" json:"page_number,omitempty"`
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=2200"`
}
