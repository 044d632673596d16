package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/pagination"
	"github.com/snapgram-app/backend/internal/posts"
	"github.com/snapgram-app/backend/internal/users"
)

type UserHandler struct {
	users *users.Service
	posts *posts.Service
}

func NewUserHandler(userService *users.Service, postService *posts.Service) *UserHandler {
	return &UserHandler{users: userService, posts: postService}
}

func cursorFromQuery(c *gin.Context) pagination.Cursor {
	return pagination.Parse(c.Query("page"), c.Query("page_size"))
}

// Register creates a new account.
func (h *UserHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if !bindAndValidate(c, &input) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), users.RegisterInput{
		Name:     input.Name,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers returns other users, excluding the requester.
func (h *UserHandler) ListUsers(c *gin.Context) {
	list, err := h.users.List(c.Request.Context(), c.GetString("user_id"), cursorFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetUser returns a profile with follower/following id lists.
func (h *UserHandler) GetUser(c *gin.Context) {
	profile, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUserByUsername resolves a profile by handle.
func (h *UserHandler) GetUserByUsername(c *gin.Context) {
	profile, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUserPosts lists the posts a user created.
func (h *UserHandler) GetUserPosts(c *gin.Context) {
	feed, err := h.posts.PostsForUser(c.Request.Context(), c.Param("id"), c.GetString("user_id"), cursorFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// GetLikedPosts lists the posts a user has liked.
func (h *UserHandler) GetLikedPosts(c *gin.Context) {
	feed, err := h.posts.PostsLikedBy(c.Request.Context(), c.Param("id"), cursorFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// GetSavedPosts lists a user's bookmarks. Only the owner may read them.
func (h *UserHandler) GetSavedPosts(c *gin.Context) {
	userID := c.Param("id")
	if userID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "saved posts are private"})
		return
	}

	feed, err := h.posts.PostsSavedBy(c.Request.Context(), userID, cursorFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// UpdateUser rewrites the caller's own profile.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")
	if userID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot update another user"})
		return
	}

	var input models.UpdateUserRequest
	if !bindAndValidate(c, &input) {
		return
	}

	user, err := h.users.Update(c.Request.Context(), userID, users.UpdateInput{
		Name:     input.Name,
		Username: input.Username,
		Email:    input.Email,
		Bio:      input.Bio,
		Phone:    input.Phone,
		ImageURL: input.ImageURL,
		ImageID:  input.ImageID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// FollowUser adds the caller as a follower of :id.
func (h *UserHandler) FollowUser(c *gin.Context) {
	if err := h.users.Follow(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "followed"})
}

// UnfollowUser removes the edge; removing a missing edge still succeeds.
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	if err := h.users.Unfollow(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFollowers returns ids of users following :id.
func (h *UserHandler) GetFollowers(c *gin.Context) {
	ids, err := h.users.Followers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": ids})
}

// GetFollowing returns ids of users that :id follows.
func (h *UserHandler) GetFollowing(c *gin.Context) {
	ids, err := h.users.Following(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": ids})
}
