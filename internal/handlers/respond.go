package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/snapgram-app/backend/internal/apperror"
)

var validate = validator.New()

// bindAndValidate decodes the JSON body and checks the struct's validate
// tags, writing the 400 response itself on failure.
func bindAndValidate(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := validate.Struct(dest); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "validation failed",
				"field": fieldErrs[0].Field(),
				"rule":  fieldErrs[0].Tag(),
			})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed"})
		return false
	}
	return true
}

// respondError maps the service error taxonomy onto HTTP status codes.
// Anything outside the taxonomy is a 500 with a generic body; the services
// already logged the details.
func respondError(c *gin.Context, err error) {
	message := err.Error()
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
	case errors.Is(err, apperror.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": message})
	case errors.Is(err, apperror.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
