package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/otp-notify-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success    bool   `json:"success,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"` // diagnostic mode only
	MessageID  string `json:"messageId,omitempty"`
	Error      string `json:"error,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"` // seconds
}

// HistoryEnvelope wraps dispatch-log listings.
type HistoryEnvelope struct {
	Success bool                `json:"success"`
	Data    []domain.MessageLog `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeRateLimited emits the 429 response with the structured retry metadata
// clients use for backoff.
func writeRateLimited(w http.ResponseWriter, rle *domain.RateLimitError) {
	retryAfter := int(rle.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rle.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rle.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(rle.ResetAt.Unix(), 10))
	writeJSON(w, http.StatusTooManyRequests, MessageEnvelope{
		Error:      fmt.Sprintf("too many code requests, retry in %d seconds", retryAfter),
		RetryAfter: retryAfter,
	})
}

// httpError maps domain errors onto HTTP statuses with short human-readable
// messages. Handler-specific mappings (429 metadata, 502 vs 500 for delivery
// failures) run before this.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadPhone):
		writeError(w, http.StatusBadRequest, "invalid phone number format")
	case errors.Is(err, domain.ErrBadCode):
		writeError(w, http.StatusBadRequest, "verification code must be 6 digits")
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusBadRequest, "verification code expired, request a new one")
	case errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, "incorrect verification code")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusBadRequest, "no verification code found for this number")
	case errors.Is(err, domain.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "messaging provider not configured")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
