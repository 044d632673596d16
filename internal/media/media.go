// Package media stores uploaded images. The rest of the app only sees the
// ImageStore interface; Cloudinary is the production implementation.
package media

import "context"

type Image struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	OptimizedURL string `json:"optimized_url"`
}

type ImageStore interface {
	UploadPostImage(ctx context.Context, filePath string) (*Image, error)
	UploadProfileImage(ctx context.Context, filePath string) (*Image, error)
	Delete(ctx context.Context, imageID string) error
}
