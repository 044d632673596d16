package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snapgram-app/backend/internal/auth"
	"github.com/snapgram-app/backend/internal/database"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A second pooled connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))

	tokens := auth.NewManager("test-secret")
	h := NewHandler(db, nil, tokens, zap.NewNop())

	r := gin.New()
	api := r.Group("/api")
	api.POST("/login", h.Auth.Login)
	api.POST("/users", h.User.Register)

	protected := api.Group("", tokens.Middleware())
	protected.GET("/me", h.Auth.GetMe)
	protected.POST("/posts", h.Post.CreatePost)
	protected.GET("/posts/:id", h.Post.GetPost)
	protected.PUT("/posts/:id", h.Post.UpdatePost)
	protected.DELETE("/posts/:id", h.Post.DeletePost)
	protected.POST("/posts/:id/like", h.Post.LikePost)
	protected.DELETE("/posts/:id/like", h.Post.UnlikePost)
	protected.GET("/posts/:id/stats", h.Post.GetStats)
	protected.POST("/posts/:id/comments", h.Post.CreateComment)
	protected.POST("/users/:id/follow", h.User.FollowUser)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/users", "", gin.H{
		"name":     username,
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterLoginCreatePost(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "ansel")

	rec := doJSON(t, r, http.MethodPost, "/api/posts", token, gin.H{
		"caption": "golden hour",
		"tags":    "art,light",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var post struct {
		ID   string   `json:"id"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	require.NotEmpty(t, post.ID)
	require.Len(t, post.Tags, 2)

	rec = doJSON(t, r, http.MethodGet, "/api/posts/"+post.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCreatePostRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/posts", "", gin.H{"caption": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLikeStatusCodes(t *testing.T) {
	r := newTestRouter(t)
	author := registerAndLogin(t, r, "ansel")
	fan := registerAndLogin(t, r, "brook")

	rec := doJSON(t, r, http.MethodPost, "/api/posts", author, gin.H{"caption": "sunset"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))

	likeURL := fmt.Sprintf("/api/posts/%s/like", post.ID)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, likeURL, fan, nil).Code)
	require.Equal(t, http.StatusConflict, doJSON(t, r, http.MethodPost, likeURL, fan, nil).Code)

	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%s/stats", post.ID), fan, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		LikesCount int  `json:"likes_count"`
		HasLiked   bool `json:"has_liked"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 1, stats.LikesCount)
	require.True(t, stats.HasLiked)

	// Unliking twice succeeds both times.
	require.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, likeURL, fan, nil).Code)
	require.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, likeURL, fan, nil).Code)
}

func TestPostWritesRequireOwnership(t *testing.T) {
	r := newTestRouter(t)
	author := registerAndLogin(t, r, "ansel")
	intruder := registerAndLogin(t, r, "brook")

	rec := doJSON(t, r, http.MethodPost, "/api/posts", author, gin.H{"caption": "mine"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))

	postURL := "/api/posts/" + post.ID
	rec = doJSON(t, r, http.MethodPut, postURL, intruder, gin.H{"caption": "hijacked"})
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	require.Equal(t, http.StatusForbidden, doJSON(t, r, http.MethodDelete, postURL, intruder, nil).Code)

	// The owner can still write.
	rec = doJSON(t, r, http.MethodPut, postURL, author, gin.H{"caption": "still mine"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, postURL, author, nil).Code)
}

func TestValidationResponses(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/users", "", gin.H{
		"name":     "Ansel",
		"username": "ansel",
		"email":    "not-an-email",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	token := registerAndLogin(t, r, "brook")
	rec = doJSON(t, r, http.MethodPost, "/api/posts", token, gin.H{"caption": "x", "tags": ""})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Comment body is required.
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	rec = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/posts/%s/comments", post.ID), token, gin.H{"body": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelfFollowRejected(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "ansel")

	rec := doJSON(t, r, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))

	rec = doJSON(t, r, http.MethodPost, "/api/users/"+me.ID+"/follow", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
