package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AllowedOrigins []string // CORS allowed origins

	// Regional numbering plan.
	PhoneCountryCode string
	PhoneLocalDigits int

	OTPTTL        time.Duration
	SweepInterval time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int

	// Delivery provider selection: "winsms" | "ultramsg" | "sns".
	SMSProvider     string
	ProviderTimeout time.Duration
	SMSSenderID     string

	WinSMSAPIURL string
	WinSMSAPIKey string

	UltraMsgAPIURL     string
	UltraMsgInstanceID string
	UltraMsgToken      string

	SNSRegion      string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	MessageLogEnabled bool
	MessageLogTable   string

	JWTPublicKeyPath  string
	JWTPrivateKeyPath string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		PhoneCountryCode: getEnv("PHONE_COUNTRY_CODE", "216"),
		PhoneLocalDigits: getEnvInt("PHONE_LOCAL_DIGITS", 8),

		OTPTTL:        time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		SweepInterval: time.Duration(getEnvInt("OTP_SWEEP_INTERVAL_SECONDS", 60)) * time.Second,

		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX_REQUESTS", 3),

		SMSProvider:     getEnv("SMS_PROVIDER", "winsms"),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,
		SMSSenderID:     getEnv("SMS_SENDER_ID", ""),

		WinSMSAPIURL: getEnv("WINSMS_API_URL", "https://www.winsmspro.com/sms/sms/api"),
		WinSMSAPIKey: getEnv("WINSMS_API_KEY", ""),

		UltraMsgAPIURL:     getEnv("ULTRAMSG_API_URL", "https://api.ultramsg.com"),
		UltraMsgInstanceID: getEnv("ULTRAMSG_INSTANCE_ID", ""),
		UltraMsgToken:      getEnv("ULTRAMSG_TOKEN", ""),

		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		MessageLogEnabled: getEnvBool("MESSAGE_LOG_ENABLED", false),
		MessageLogTable:   getEnv("DYNAMO_TABLE_MESSAGE_LOG", "message_log"),

		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
	}
}

// IsProduction reports whether diagnostic behavior (e.g. echoing issued
// codes) must be disabled.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
