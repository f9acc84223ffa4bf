package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storyarc/narrative-backend/internal/apperr"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrDuplicateIdentity):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrInvalidCredentials), errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage renders a caller-safe message for an error. Validation and
// gating messages are written for the caller and pass through; everything
// else maps to a fixed string so wrapped internal or upstream detail never
// reaches the client.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, apperr.ErrDuplicateIdentity),
		errors.Is(err, apperr.ErrForbidden):
		return err.Error()
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return "invalid credentials"
	case errors.Is(err, apperr.ErrUnauthenticated):
		return "invalid or expired token"
	case errors.Is(err, apperr.ErrQuotaExceeded):
		return "Daily synthesis limit reached. Please upgrade."
	case errors.Is(err, apperr.ErrNotFound):
		return "not found"
	case errors.Is(err, apperr.ErrGenerationFailed):
		return "story generation failed, please try again"
	default:
		return "internal server error"
	}
}

// respondError maps a service error to its status code and public message.
func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": publicMessage(err)})
}
