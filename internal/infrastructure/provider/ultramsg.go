package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/otp-notify-api/internal/config"
	"github.com/otp-notify-api/internal/domain"
)

// UltraMsg sends WhatsApp messages through the UltraMsg gateway. The API is
// JSON; authentication is an instance-scoped token in the payload.
type UltraMsg struct {
	baseURL    string
	instanceID string
	token      string
	client     *http.Client
}

func NewUltraMsg(cfg *config.Config) *UltraMsg {
	return &UltraMsg{
		baseURL:    cfg.UltraMsgAPIURL,
		instanceID: cfg.UltraMsgInstanceID,
		token:      cfg.UltraMsgToken,
		client:     newHTTPClient(cfg.ProviderTimeout),
	}
}

func (u *UltraMsg) Name() string { return "ultramsg" }

func (u *UltraMsg) Configured() bool {
	return u.baseURL != "" && u.instanceID != "" && u.token != ""
}

type ultraMsgResponse struct {
	Sent    string      `json:"sent"`
	Message string      `json:"message"`
	ID      json.Number `json:"id"`
}

func (u *UltraMsg) Send(ctx context.Context, to, body string) domain.ProviderResult {
	if !u.Configured() {
		return domain.ProviderResult{OK: false, ErrorMessage: "ultramsg instance or token not set"}
	}

	payload, err := json.Marshal(map[string]string{
		"token": u.token,
		"to":    to,
		"body":  body,
	})
	if err != nil {
		return domain.ProviderResult{OK: false, ErrorMessage: "ultramsg payload build failed"}
	}

	endpoint := fmt.Sprintf("%s/%s/messages/chat", u.baseURL, u.instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.ProviderResult{OK: false, ErrorMessage: "ultramsg request build failed"}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		slog.Error("ultramsg request failed", "err", err)
		return domain.ProviderResult{OK: false, ErrorMessage: "whatsapp gateway unreachable"}
	}
	defer resp.Body.Close()

	raw := readBody(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("ultramsg rejected message", "status", resp.StatusCode, "body", string(raw))
		return domain.ProviderResult{OK: false, ErrorMessage: extractMessage(raw, resp.Status)}
	}

	var out ultraMsgResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Warn("ultramsg response not parseable", "err", err)
		return domain.ProviderResult{OK: true}
	}
	if out.Sent != "true" {
		return domain.ProviderResult{OK: false, ErrorMessage: extractMessage(raw, "whatsapp gateway error")}
	}
	return domain.ProviderResult{OK: true, Reference: out.ID.String()}
}
