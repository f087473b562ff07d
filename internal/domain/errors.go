package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrBadPhone       = errors.New("invalid phone number")
	ErrBadCode        = errors.New("invalid code format")
	ErrCodeExpired    = errors.New("code expired")
	ErrCodeMismatch   = errors.New("code mismatch")
	ErrRateLimited    = errors.New("rate limited")
	ErrNotConfigured  = errors.New("provider not configured")
	ErrDeliveryFailed = errors.New("delivery failed")
)

// RateLimitError carries the retry metadata clients need for backoff.
// Unwraps to ErrRateLimited.
type RateLimitError struct {
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// DeliveryError carries the best-effort message extracted from a provider
// response. Unwraps to ErrDeliveryFailed.
type DeliveryError struct {
	Provider string
	Message  string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery via %s failed: %s", e.Provider, e.Message)
}

func (e *DeliveryError) Unwrap() error { return ErrDeliveryFailed }
