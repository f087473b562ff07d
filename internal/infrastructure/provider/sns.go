package provider

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/otp-notify-api/internal/config"
	"github.com/otp-notify-api/internal/domain"
)

// SNS sends SMS through AWS SNS. Unlike the HTTP gateways it talks through
// the AWS SDK, so the bounded timeout lives in the SDK's HTTP client.
type SNS struct {
	client     *sns.Client
	configured bool
}

func NewSNS(cfg *config.Config) (*SNS, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SNSRegion),
		awsconfig.WithHTTPClient(&http.Client{Timeout: cfg.ProviderTimeout}),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	// Resolve credentials once, up front: LoadDefaultConfig succeeds even
	// when no credentials exist anywhere, so the client alone says nothing.
	// Credentials that appear after startup require a restart.
	rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	creds, credErr := awsCfg.Credentials.Retrieve(rctx)

	return &SNS{
		client:     sns.NewFromConfig(awsCfg, clientOpts...),
		configured: credErr == nil && creds.HasKeys(),
	}, nil
}

func (s *SNS) Name() string { return "sns" }

func (s *SNS) Configured() bool { return s.client != nil && s.configured }

func (s *SNS) Send(ctx context.Context, to, body string) domain.ProviderResult {
	if !s.Configured() {
		return domain.ProviderResult{OK: false, ErrorMessage: "aws credentials not resolved"}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(body),
	})
	if err != nil {
		slog.Error("sns publish failed", "err", err)
		return domain.ProviderResult{OK: false, ErrorMessage: "sns publish rejected"}
	}
	return domain.ProviderResult{OK: true, Reference: aws.ToString(out.MessageId)}
}
