package models

import "time"

type User struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Phone    string `json:"phone,omitempty"`
	Bio      string `json:"bio,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	ImageID  string `json:"-"` // Cloudinary public id, needed to replace the image later

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the creator/author shape embedded in feed and comment payloads.
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	ImageURL string `json:"image_url,omitempty"`
}

// Profile is a user plus their follow graph edges, as returned by GET /api/users/:id.
type Profile struct {
	User
	Followers []string `json:"followers"`
	Following []string `json:"following"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Bio      string `json:"bio"`
	Phone    string `json:"phone"`
	ImageURL string `json:"image_url"`
	ImageID  string `json:"image_id"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
