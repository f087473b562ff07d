package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/otp-notify-api/internal/config"
	"github.com/otp-notify-api/internal/domain"
)

// WinSMS sends SMS through the WinSMS regional gateway. The API is
// form-encoded; authentication is a single API key.
type WinSMS struct {
	baseURL  string
	apiKey   string
	senderID string
	client   *http.Client
}

func NewWinSMS(cfg *config.Config) *WinSMS {
	return &WinSMS{
		baseURL:  cfg.WinSMSAPIURL,
		apiKey:   cfg.WinSMSAPIKey,
		senderID: cfg.SMSSenderID,
		client:   newHTTPClient(cfg.ProviderTimeout),
	}
}

func (w *WinSMS) Name() string { return "winsms" }

func (w *WinSMS) Configured() bool {
	return w.baseURL != "" && w.apiKey != ""
}

type winSMSResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
}

func (w *WinSMS) Send(ctx context.Context, to, body string) domain.ProviderResult {
	if !w.Configured() {
		return domain.ProviderResult{OK: false, ErrorMessage: "winsms api key not set"}
	}

	form := url.Values{}
	form.Set("action", "send-sms")
	form.Set("api_key", w.apiKey)
	form.Set("to", to)
	form.Set("from", w.senderID)
	form.Set("sms", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.ProviderResult{OK: false, ErrorMessage: "winsms request build failed"}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.client.Do(req)
	if err != nil {
		slog.Error("winsms request failed", "err", err)
		return domain.ProviderResult{OK: false, ErrorMessage: "sms gateway unreachable"}
	}
	defer resp.Body.Close()

	raw := readBody(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("winsms rejected message", "status", resp.StatusCode, "body", string(raw))
		return domain.ProviderResult{OK: false, ErrorMessage: extractMessage(raw, resp.Status)}
	}

	var out winSMSResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Warn("winsms response not parseable", "err", err)
		// 2xx with an opaque body still counts as accepted.
		return domain.ProviderResult{OK: true}
	}
	if out.Code != 0 && out.Code != 200 {
		return domain.ProviderResult{OK: false, ErrorMessage: extractMessage(raw, "sms gateway error")}
	}
	return domain.ProviderResult{OK: true, Reference: out.MessageID}
}
