package models

import "time"

// Like and Save are toggle rows. The composite primary key makes the
// (user, post) pair unique so a double toggle surfaces as a duplicate key.
type Like struct {
	UserID string `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	PostID string `gorm:"primaryKey;type:varchar(36)" json:"post_id"`

	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Post Post `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}

type Save struct {
	UserID string `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	PostID string `gorm:"primaryKey;type:varchar(36)" json:"post_id"`

	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Post Post `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Save) TableName() string {
	return "saves"
}
