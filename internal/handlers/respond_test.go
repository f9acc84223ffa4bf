package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/storyarc/narrative-backend/internal/apperr"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.ErrInvalidInput, http.StatusBadRequest},
		{apperr.ErrDuplicateIdentity, http.StatusBadRequest},
		{apperr.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperr.ErrUnauthenticated, http.StatusUnauthorized},
		{apperr.ErrForbidden, http.StatusForbidden},
		{apperr.ErrQuotaExceeded, http.StatusForbidden},
		{apperr.ErrNotFound, http.StatusNotFound},
		{apperr.ErrGenerationFailed, http.StatusBadGateway},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("context: %w", tc.err)
		if got := statusForError(wrapped); got != tc.want {
			t.Fatalf("status for %v = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestPublicMessageHidesUpstreamDetail(t *testing.T) {
	err := fmt.Errorf("%w: decode response: unexpected EOF", apperr.ErrGenerationFailed)
	msg := publicMessage(err)
	if strings.Contains(msg, "unexpected EOF") || strings.Contains(msg, "decode") {
		t.Fatalf("upstream detail leaked: %q", msg)
	}

	err = errors.New("dial tcp 10.0.0.4:5432: connect: connection refused")
	if msg := publicMessage(err); msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

func TestPublicMessageKeepsCallerFacingDetail(t *testing.T) {
	err := fmt.Errorf("%w: audience requires a non-empty answer", apperr.ErrInvalidInput)
	if msg := publicMessage(err); !strings.Contains(msg, "audience") {
		t.Fatalf("validation detail dropped: %q", msg)
	}
	if msg := publicMessage(apperr.ErrQuotaExceeded); msg != "Daily synthesis limit reached. Please upgrade." {
		t.Fatalf("quota message = %q", msg)
	}
}
