package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearAWSEnv makes the default credential chain come up empty: no env keys,
// no shared config, no container creds, IMDS disabled.
func clearAWSEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_CONTAINER_CREDENTIALS_RELATIVE_URI", "")
	t.Setenv("AWS_WEB_IDENTITY_TOKEN_FILE", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
}

func TestSNS_NoCredentials_FailsFastWithoutNetworkCall(t *testing.T) {
	clearAWSEnv(t)

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.SNSRegion = "us-east-1"
	cfg.AWSEndpointURL = srv.URL // would be hit if Send went through

	s, err := NewSNS(cfg)
	require.NoError(t, err)
	assert.False(t, s.Configured())

	res := s.Send(context.Background(), "+21699123456", "hello")
	assert.False(t, res.OK)
	assert.Equal(t, "aws credentials not resolved", res.ErrorMessage)
	assert.False(t, called)
}

func TestSNS_Success_ExtractsMessageID(t *testing.T) {
	clearAWSEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Publish", r.Form.Get("Action"))
		assert.Equal(t, "+21699123456", r.Form.Get("PhoneNumber"))
		assert.Equal(t, "hello", r.Form.Get("Message"))
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<PublishResponse xmlns="http://sns.amazonaws.com/doc/2010-03-31/">
  <PublishResult><MessageId>mid-123</MessageId></PublishResult>
  <ResponseMetadata><RequestId>rid-1</RequestId></ResponseMetadata>
</PublishResponse>`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.SNSRegion = "us-east-1"
	cfg.AWSAccessKeyID = "AKIATEST"
	cfg.AWSSecretKey = "secret"
	cfg.AWSEndpointURL = srv.URL

	s, err := NewSNS(cfg)
	require.NoError(t, err)
	require.True(t, s.Configured())

	res := s.Send(context.Background(), "+21699123456", "hello")
	assert.True(t, res.OK)
	assert.Equal(t, "mid-123", res.Reference)
}

func TestSNS_UpstreamError_NoRawSDKError(t *testing.T) {
	clearAWSEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<ErrorResponse xmlns="http://sns.amazonaws.com/doc/2010-03-31/">
  <Error><Type>Sender</Type><Code>InvalidParameter</Code><Message>Invalid parameter: PhoneNumber</Message></Error>
  <RequestId>rid-2</RequestId>
</ErrorResponse>`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.SNSRegion = "us-east-1"
	cfg.AWSAccessKeyID = "AKIATEST"
	cfg.AWSSecretKey = "secret"
	cfg.AWSEndpointURL = srv.URL

	s, err := NewSNS(cfg)
	require.NoError(t, err)

	res := s.Send(context.Background(), "+21699123456", "hello")
	assert.False(t, res.OK)
	// SDK error details stay in the logs, not in the result.
	assert.Equal(t, "sns publish rejected", res.ErrorMessage)
}

func TestFromConfig_SNSConstructError_NilInterface(t *testing.T) {
	clearAWSEnv(t)
	// An unparseable value makes LoadDefaultConfig fail inside NewSNS.
	t.Setenv("AWS_ENABLE_ENDPOINT_DISCOVERY", "bogus-value")

	cfg := testConfig()
	cfg.SMSProvider = "sns"
	cfg.SNSRegion = "us-east-1"

	s, err := FromConfig(cfg)
	require.Error(t, err)
	// Must be a nil interface, not a typed-nil *SNS hiding inside one:
	// callers guard with `sender == nil` before calling Configured.
	assert.True(t, s == nil)
}
