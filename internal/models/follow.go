package models

import "time"

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  string `gorm:"primaryKey;type:varchar(36)" json:"follower_id"`
	FollowingID string `gorm:"primaryKey;type:varchar(36)" json:"following_id"`

	CreatedAt time.Time `json:"created_at"`

	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}
