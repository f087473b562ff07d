package otp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otp-notify-api/internal/domain"
	"github.com/otp-notify-api/internal/infrastructure/memory"
	"github.com/otp-notify-api/internal/infrastructure/provider"
	"github.com/otp-notify-api/internal/pkg/id"
	pkgotp "github.com/otp-notify-api/internal/pkg/otp"
	"github.com/otp-notify-api/internal/pkg/phone"
)

// VerificationStore is the minimal store interface the service requires.
type VerificationStore interface {
	Issue(phone, code string, ttl time.Duration) error
	Verify(phone, code string) domain.VerifyOutcome
}

// RateLimiter gates issuance per client key.
type RateLimiter interface {
	Check(key string) memory.Decision
}

// MessageLogger records dispatch outcomes; may be nil (audit disabled).
type MessageLogger interface {
	Put(ctx context.Context, entry *domain.MessageLog) error
}

// IssueResult is returned on successful issuance. Code is only populated in
// diagnostic (non-production) mode.
type IssueResult struct {
	Phone string
	Code  string
}

type Service interface {
	// IssueCode generates, stores and delivers a fresh code for rawPhone.
	// clientKey identifies the caller for rate limiting (source IP here).
	IssueCode(ctx context.Context, rawPhone, clientKey string) (*IssueResult, error)
	// VerifyCode consumes a previously issued code.
	VerifyCode(ctx context.Context, rawPhone, rawCode string) error
}

type ServiceDeps struct {
	Store      VerificationStore
	Limiter    RateLimiter
	Sender     provider.Sender
	Normalizer *phone.Normalizer
	MessageLog MessageLogger // optional
	TTL        time.Duration
	Diagnostic bool
}

type service struct {
	store      VerificationStore
	limiter    RateLimiter
	sender     provider.Sender
	normalizer *phone.Normalizer
	msgLog     MessageLogger
	ttl        time.Duration
	diagnostic bool
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:      deps.Store,
		limiter:    deps.Limiter,
		sender:     deps.Sender,
		normalizer: deps.Normalizer,
		msgLog:     deps.MessageLog,
		ttl:        deps.TTL,
		diagnostic: deps.Diagnostic,
	}
}

// IssueCode checks provider configuration before the rate limiter on purpose:
// a misconfigured deployment must not burn a client's quota on attempts that
// can never succeed.
func (s *service) IssueCode(ctx context.Context, rawPhone, clientKey string) (*IssueResult, error) {
	if s.sender == nil || !s.sender.Configured() {
		return nil, fmt.Errorf("sms delivery unavailable: %w", domain.ErrNotConfigured)
	}

	if d := s.limiter.Check(clientKey); !d.Allowed {
		return nil, &domain.RateLimitError{
			Limit:      d.Limit,
			Remaining:  d.Remaining,
			ResetAt:    d.ResetAt,
			RetryAfter: d.RetryAfter,
		}
	}

	canonical, err := s.normalizer.Normalize(rawPhone)
	if err != nil {
		return nil, fmt.Errorf("normalize %q: %w", rawPhone, domain.ErrBadPhone)
	}

	code, err := pkgotp.NewCode()
	if err != nil {
		return nil, err
	}
	if err := s.store.Issue(canonical, code, s.ttl); err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Votre code de vérification est %s. Il expire dans %d minutes.",
		code, int(s.ttl.Minutes()))

	res := s.sender.Send(ctx, canonical, body)
	s.audit("otp", canonical, res)
	if !res.OK {
		// The stored code stays valid: a manual resend or an alternate
		// channel can still deliver it before expiry.
		return nil, &domain.DeliveryError{Provider: s.sender.Name(), Message: res.ErrorMessage}
	}

	out := &IssueResult{Phone: canonical}
	if s.diagnostic {
		out.Code = code
	}
	return out, nil
}

func (s *service) VerifyCode(ctx context.Context, rawPhone, rawCode string) error {
	canonical, err := s.normalizer.Normalize(rawPhone)
	if err != nil {
		return fmt.Errorf("normalize %q: %w", rawPhone, domain.ErrBadPhone)
	}
	code, ok := pkgotp.SanitizeCode(rawCode)
	if !ok {
		return fmt.Errorf("code must be %d digits: %w", pkgotp.CodeLength, domain.ErrBadCode)
	}

	switch s.store.Verify(canonical, code) {
	case domain.OutcomeVerified:
		return nil
	case domain.OutcomeExpired:
		return fmt.Errorf("code for %s: %w", canonical, domain.ErrCodeExpired)
	case domain.OutcomeMismatch:
		return fmt.Errorf("code for %s: %w", canonical, domain.ErrCodeMismatch)
	default:
		return fmt.Errorf("no outstanding code for %s: %w", canonical, domain.ErrNotFound)
	}
}

// audit records the dispatch outcome off the request path. Codes and bodies
// are never logged.
func (s *service) audit(kind, canonical string, res domain.ProviderResult) {
	if s.msgLog == nil {
		return
	}
	entry := &domain.MessageLog{
		MessageID: id.New(),
		Kind:      kind,
		Phone:     canonical,
		Provider:  s.sender.Name(),
		Reference: res.Reference,
		Status:    statusOf(res),
		CreatedAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.msgLog.Put(ctx, entry); err != nil {
			slog.Warn("message log write failed", "message_id", entry.MessageID, "err", err)
		}
	}()
}

func statusOf(res domain.ProviderResult) string {
	if res.OK {
		return "sent"
	}
	return "failed"
}
