package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/otp-notify-api/internal/config"
	"github.com/otp-notify-api/internal/domain"
)

// Sender is the outbound messaging capability. Implementations differ only in
// wire format and authentication against their upstream API; none of them
// returns a Go error across this boundary — failures are folded into
// ProviderResult so callers handle configuration failure, upstream failure
// and success uniformly.
type Sender interface {
	Name() string
	// Configured reports whether required credentials are present. Send
	// fails fast without a network call when they are not.
	Configured() bool
	Send(ctx context.Context, to, body string) domain.ProviderResult
}

// FromConfig selects exactly one adapter. There is no failover between
// variants; a deployment picks one and sticks with it.
func FromConfig(cfg *config.Config) (Sender, error) {
	switch cfg.SMSProvider {
	case "winsms":
		return NewWinSMS(cfg), nil
	case "ultramsg":
		return NewUltraMsg(cfg), nil
	case "sns":
		// Return the concrete pointer only on success: a nil *SNS wrapped
		// in the interface would defeat the callers' nil checks.
		s, err := NewSNS(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown SMS_PROVIDER %q", cfg.SMSProvider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// readBody drains at most 64 KiB of a provider response.
func readBody(r io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	return b
}

// extractMessage pulls a human-readable error out of a provider response
// body, best effort. Falls back to the HTTP status text.
func extractMessage(body []byte, statusFallback string) string {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err == nil {
		for _, key := range []string{"message", "error", "description"} {
			if s, ok := m[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return statusFallback
}
