package handlers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/snapgram-app/backend/internal/auth"
	"github.com/snapgram-app/backend/internal/media"
	"github.com/snapgram-app/backend/internal/posts"
	"github.com/snapgram-app/backend/internal/search"
	"github.com/snapgram-app/backend/internal/users"
)

// Handler combines all handler types
type Handler struct {
	Auth   *AuthHandler
	Post   *PostHandler
	User   *UserHandler
	Upload *UploadHandler
}

// NewHandler builds the service graph on top of the injected database
// handle and wires every sub-handler to it.
func NewHandler(db *gorm.DB, images media.ImageStore, tokens *auth.Manager, log *zap.Logger) *Handler {
	postService := posts.NewService(db, images, log)
	searchService := search.NewService(db, postService, log)
	userService := users.NewService(db, images, log)

	return &Handler{
		Auth:   NewAuthHandler(userService, tokens),
		Post:   NewPostHandler(postService, searchService),
		User:   NewUserHandler(userService, postService),
		Upload: NewUploadHandler(images, log),
	}
}
