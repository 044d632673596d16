package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapgram-app/backend/internal/models"
)

// GetComments lists a post's comments, newest first.
func (h *PostHandler) GetComments(c *gin.Context) {
	views, err := h.posts.GetComments(c.Request.Context(), c.Param("id"), cursorFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// CreateComment appends a comment by the caller.
func (h *PostHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if !bindAndValidate(c, &input) {
		return
	}

	view, err := h.posts.AddComment(c.Request.Context(), c.Param("id"), c.GetString("user_id"), input.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}
