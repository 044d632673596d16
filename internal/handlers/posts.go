package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/posts"
	"github.com/snapgram-app/backend/internal/search"
)

type PostHandler struct {
	posts  *posts.Service
	search *search.Service
}

func NewPostHandler(postService *posts.Service, searchService *search.Service) *PostHandler {
	return &PostHandler{posts: postService, search: searchService}
}

// GetPosts returns every post, newest first.
func (h *PostHandler) GetPosts(c *gin.Context) {
	feed, err := h.posts.GetAll(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// GetFeed returns one paginated feed window. Page 0 is the newest.
func (h *PostHandler) GetFeed(c *gin.Context) {
	feed, err := h.posts.GetFeed(c.Request.Context(), c.GetString("user_id"), cursorFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// GetPost returns a single enriched post.
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a post owned by the caller.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if !bindAndValidate(c, &input) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), posts.CreateInput{
		CreatorID: c.GetString("user_id"),
		Caption:   input.Caption,
		Location:  input.Location,
		Tags:      input.Tags,
		ImageURL:  input.ImageURL,
		ImageID:   input.ImageID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost rewrites a post the caller owns.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")
	if !h.requireOwnership(c, postID) {
		return
	}

	var input models.UpdatePostRequest
	if !bindAndValidate(c, &input) {
		return
	}

	post, err := h.posts.Update(c.Request.Context(), postID, posts.UpdateInput{
		Caption:  input.Caption,
		Location: input.Location,
		Tags:     input.Tags,
		ImageURL: input.ImageURL,
		ImageID:  input.ImageID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post the caller owns.
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")
	if !h.requireOwnership(c, postID) {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), postID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikePost records a like; liking twice is a conflict.
func (h *PostHandler) LikePost(c *gin.Context) {
	if err := h.posts.Like(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "liked"})
}

// UnlikePost removes a like; unliking a post never liked still succeeds.
func (h *PostHandler) UnlikePost(c *gin.Context) {
	if err := h.posts.Unlike(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SavePost bookmarks a post for the caller.
func (h *PostHandler) SavePost(c *gin.Context) {
	if err := h.posts.SavePost(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "saved"})
}

// UnsavePost removes a bookmark.
func (h *PostHandler) UnsavePost(c *gin.Context) {
	if err := h.posts.UnsavePost(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats returns the engagement snapshot for a post.
func (h *PostHandler) GetStats(c *gin.Context) {
	stats, err := h.posts.GetStats(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetLikes returns ids of users who liked the post.
func (h *PostHandler) GetLikes(c *gin.Context) {
	ids, err := h.posts.LikeUserIDs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": ids})
}

// GetSaves returns ids of users who saved the post.
func (h *PostHandler) GetSaves(c *gin.Context) {
	ids, err := h.posts.SaveUserIDs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saves": ids})
}

// GetTrendingTags returns the four most-used tags.
func (h *PostHandler) GetTrendingTags(c *gin.Context) {
	trending, err := h.search.TrendingTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trending)
}

// SearchPosts finds posts by tag, case-insensitively.
func (h *PostHandler) SearchPosts(c *gin.Context) {
	results, err := h.search.SearchPosts(c.Request.Context(), c.Query("q"), c.GetString("user_id"), cursorFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// requireOwnership rejects writes to posts the caller does not own. It
// writes the error response itself and reports whether to continue.
func (h *PostHandler) requireOwnership(c *gin.Context, postID string) bool {
	creatorID, err := h.posts.CreatorOf(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if creatorID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the post owner"})
		return false
	}
	return true
}
