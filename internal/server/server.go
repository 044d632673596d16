package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/snapgram-app/backend/internal/auth"
	"github.com/snapgram-app/backend/internal/database"
	"github.com/snapgram-app/backend/internal/handlers"
	"github.com/snapgram-app/backend/internal/media"
)

type Server struct {
	db      *gorm.DB
	handler *handlers.Handler
	tokens  *auth.Manager
	log     *zap.Logger
}

// New wires the handler graph onto the injected database handle and returns
// a configured http.Server.
func New(db *gorm.DB, images media.ImageStore, tokens *auth.Manager, log *zap.Logger) *http.Server {
	s := &Server{
		db:      db,
		handler: handlers.NewHandler(db, images, tokens, log),
		tokens:  tokens,
		log:     log,
	}

	router := s.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	log.Info("server starting", zap.String("port", port))

	return &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, database.Health(s.db))
	})

	api := r.Group("/api")
	{
		// Public routes
		api.POST("/login", s.handler.Auth.Login)
		api.POST("/users", s.handler.User.Register)

		// Everything else requires a valid token
		protected := api.Group("")
		protected.Use(s.tokens.Middleware())
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			// User routes
			protected.GET("/users", s.handler.User.ListUsers)
			protected.GET("/users/:id", s.handler.User.GetUser)
			protected.GET("/users/username/:username", s.handler.User.GetUserByUsername)
			protected.PUT("/users/:id", s.handler.User.UpdateUser)
			protected.GET("/users/:id/posts", s.handler.User.GetUserPosts)
			protected.GET("/users/:id/liked", s.handler.User.GetLikedPosts)
			protected.GET("/users/:id/saved", s.handler.User.GetSavedPosts)
			protected.GET("/users/:id/followers", s.handler.User.GetFollowers)
			protected.GET("/users/:id/following", s.handler.User.GetFollowing)
			protected.POST("/users/:id/follow", s.handler.User.FollowUser)
			protected.DELETE("/users/:id/follow", s.handler.User.UnfollowUser)

			// Post routes
			protected.GET("/posts", s.handler.Post.GetPosts)
			protected.GET("/posts/infinite", s.handler.Post.GetFeed)
			protected.GET("/posts/search", s.handler.Post.SearchPosts)
			protected.GET("/posts/:id", s.handler.Post.GetPost)
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)

			// Engagement routes
			protected.POST("/posts/:id/like", s.handler.Post.LikePost)
			protected.DELETE("/posts/:id/like", s.handler.Post.UnlikePost)
			protected.POST("/posts/:id/save", s.handler.Post.SavePost)
			protected.DELETE("/posts/:id/save", s.handler.Post.UnsavePost)
			protected.GET("/posts/:id/comments", s.handler.Post.GetComments)
			protected.POST("/posts/:id/comments", s.handler.Post.CreateComment)
			protected.GET("/posts/:id/stats", s.handler.Post.GetStats)
			protected.GET("/posts/:id/likes", s.handler.Post.GetLikes)
			protected.GET("/posts/:id/saves", s.handler.Post.GetSaves)

			// Discovery
			protected.GET("/tags/trending", s.handler.Post.GetTrendingTags)

			// Upload routes
			protected.POST("/upload/post-image", s.handler.Upload.UploadPostImage)
			protected.POST("/upload/profile-image", s.handler.Upload.UploadProfileImage)
			protected.DELETE("/upload/image", s.handler.Upload.DeleteImage)
		}
	}

	return r
}
