package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/otp-notify-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{ProviderTimeout: 2 * time.Second, SMSSenderID: "MYAPP"}
}

// --- WinSMS ---

func TestWinSMS_NotConfigured_FailsFastWithoutNetworkCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.WinSMSAPIURL = srv.URL
	w := NewWinSMS(cfg) // no API key

	res := w.Send(context.Background(), "+21699123456", "hello")
	assert.False(t, res.OK)
	assert.False(t, called)
	assert.NotEmpty(t, res.ErrorMessage)
}

func TestWinSMS_Success_ExtractsReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "send-sms", r.Form.Get("action"))
		assert.Equal(t, "secret", r.Form.Get("api_key"))
		assert.Equal(t, "+21699123456", r.Form.Get("to"))
		assert.Equal(t, "MYAPP", r.Form.Get("from"))
		assert.Equal(t, "hello", r.Form.Get("sms"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200, "message": "queued", "message_id": "msg-42",
		})
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.WinSMSAPIURL = srv.URL
	cfg.WinSMSAPIKey = "secret"

	res := NewWinSMS(cfg).Send(context.Background(), "+21699123456", "hello")
	assert.True(t, res.OK)
	assert.Equal(t, "msg-42", res.Reference)
}

func TestWinSMS_UpstreamError_ExtractsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "quota exceeded"})
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.WinSMSAPIURL = srv.URL
	cfg.WinSMSAPIKey = "secret"

	res := NewWinSMS(cfg).Send(context.Background(), "+21699123456", "hello")
	assert.False(t, res.OK)
	assert.Equal(t, "quota exceeded", res.ErrorMessage)
}

func TestWinSMS_GatewayCode_NonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 420, "message": "invalid sender",
		})
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.WinSMSAPIURL = srv.URL
	cfg.WinSMSAPIKey = "secret"

	res := NewWinSMS(cfg).Send(context.Background(), "+21699123456", "hello")
	assert.False(t, res.OK)
	assert.Equal(t, "invalid sender", res.ErrorMessage)
}

func TestWinSMS_Unreachable_NoRawTransportError(t *testing.T) {
	cfg := testConfig()
	cfg.WinSMSAPIURL = "http://127.0.0.1:1" // nothing listens here
	cfg.WinSMSAPIKey = "secret"
	cfg.ProviderTimeout = 200 * time.Millisecond

	res := NewWinSMS(cfg).Send(context.Background(), "+21699123456", "hello")
	assert.False(t, res.OK)
	assert.Equal(t, "sms gateway unreachable", res.ErrorMessage)
}

// --- UltraMsg ---

func TestUltraMsg_NotConfigured_FailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.UltraMsgAPIURL = "http://example.invalid"
	res := NewUltraMsg(cfg).Send(context.Background(), "+21699123456", "hello")
	assert.False(t, res.OK)
}

func TestUltraMsg_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inst42/messages/chat", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "tok", payload["token"])
		assert.Equal(t, "+21699123456", payload["to"])
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"sent": "true", "message": "ok", "id": 101,
		})
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.UltraMsgAPIURL = srv.URL
	cfg.UltraMsgInstanceID = "inst42"
	cfg.UltraMsgToken = "tok"

	res := NewUltraMsg(cfg).Send(context.Background(), "+21699123456", "hello")
	assert.True(t, res.OK)
	assert.Equal(t, "101", res.Reference)
}

func TestUltraMsg_NotSent_ReportsGatewayMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"sent": "false", "message": "token expired",
		})
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.UltraMsgAPIURL = srv.URL
	cfg.UltraMsgInstanceID = "inst42"
	cfg.UltraMsgToken = "tok"

	res := NewUltraMsg(cfg).Send(context.Background(), "+21699123456", "hello")
	assert.False(t, res.OK)
	assert.Equal(t, "token expired", res.ErrorMessage)
}

// --- selection ---

func TestFromConfig_SelectsAdapter(t *testing.T) {
	cfg := testConfig()
	cfg.SMSProvider = "winsms"
	s, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "winsms", s.Name())

	cfg.SMSProvider = "ultramsg"
	s, err = FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ultramsg", s.Name())

	cfg.SMSProvider = "carrier-pigeon"
	_, err = FromConfig(cfg)
	assert.Error(t, err)
}
