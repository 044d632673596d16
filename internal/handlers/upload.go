package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/snapgram-app/backend/internal/media"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type UploadHandler struct {
	images media.ImageStore
	log    *zap.Logger
}

func NewUploadHandler(images media.ImageStore, log *zap.Logger) *UploadHandler {
	return &UploadHandler{images: images, log: log}
}

// UploadPostImage stages the multipart file on disk and pushes it to the
// image store.
func (h *UploadHandler) UploadPostImage(c *gin.Context) {
	h.upload(c, h.images.UploadPostImage)
}

// UploadProfileImage is the avatar variant; it lands in a different folder.
func (h *UploadHandler) UploadProfileImage(c *gin.Context) {
	h.upload(c, h.images.UploadProfileImage)
}

// DeleteImage removes a stored image by its id.
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	var input struct {
		ImageID string `json:"image_id" validate:"required"`
	}
	if !bindAndValidate(c, &input) {
		return
	}

	if err := h.images.Delete(c.Request.Context(), input.ImageID); err != nil {
		h.log.Error("image delete failed", zap.String("image_id", input.ImageID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UploadHandler) upload(c *gin.Context, store func(ctx context.Context, path string) (*media.Image, error)) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		h.log.Error("staging upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer os.Remove(tmpPath)

	img, err := store(c.Request.Context(), tmpPath)
	if err != nil {
		h.log.Error("image upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, img)
}
