package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	postFolder    = "snapgram/posts"
	profileFolder = "snapgram/profiles"
)

// Cloudinary talks to the Cloudinary upload API with signed requests.
type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

func NewCloudinary(cloudName, apiKey, apiSecret string) *Cloudinary {
	return &Cloudinary{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   "https://api.cloudinary.com",
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func NewCloudinaryFromEnv() *Cloudinary {
	return NewCloudinary(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
}

// WithBaseURL points the client at a different API host.
func (c *Cloudinary) WithBaseURL(base string) *Cloudinary {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

func (c *Cloudinary) UploadPostImage(ctx context.Context, filePath string) (*Image, error) {
	return c.upload(ctx, filePath, postFolder)
}

func (c *Cloudinary) UploadProfileImage(ctx context.Context, filePath string) (*Image, error) {
	return c.upload(ctx, filePath, profileFolder)
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

func (c *Cloudinary) upload(ctx context.Context, filePath, folder string) (*Image, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening upload file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading upload file: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	fields := map[string]string{
		"api_key":   c.apiKey,
		"timestamp": timestamp,
		"folder":    folder,
		"signature": c.sign("folder=" + folder + "&timestamp=" + timestamp),
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("image upload returned %d: %s", resp.StatusCode, string(data))
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}

	return &Image{
		ID:           result.PublicID,
		URL:          result.SecureURL,
		OptimizedURL: OptimizeURL(result.SecureURL),
	}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, imageID string) error {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	form := url.Values{
		"public_id": {imageID},
		"api_key":   {c.apiKey},
		"timestamp": {timestamp},
		"signature": {c.sign("public_id=" + imageID + "&timestamp=" + timestamp)},
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("image destroy returned %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding destroy response: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("image destroy failed: %s", result.Result)
	}
	return nil
}

// sign produces the Cloudinary request signature: SHA-1 over the sorted
// parameter string with the API secret appended.
func (c *Cloudinary) sign(params string) string {
	sum := sha1.Sum([]byte(params + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

// OptimizeURL injects Cloudinary's automatic quality and format
// transformation into a delivery URL.
func OptimizeURL(deliveryURL string) string {
	return strings.Replace(deliveryURL, "/upload/", "/upload/q_auto,f_auto/", 1)
}
