package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapgram-app/backend/internal/auth"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/users"
)

type AuthHandler struct {
	users  *users.Service
	tokens *auth.Manager
}

func NewAuthHandler(userService *users.Service, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{users: userService, tokens: tokens}
}

// Login exchanges email/password for a signed token.
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if !bindAndValidate(c, &input) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.CreateToken(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: *user})
}

// GetMe returns the authenticated user's profile.
func (h *AuthHandler) GetMe(c *gin.Context) {
	profile, err := h.users.GetByID(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
