package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/otp-notify-api/internal/domain"
	"github.com/otp-notify-api/internal/infrastructure/provider"
	"github.com/otp-notify-api/internal/pkg/id"
	"github.com/otp-notify-api/internal/pkg/phone"
)

// MessageLogger records dispatch outcomes; may be nil (audit disabled).
type MessageLogger interface {
	Put(ctx context.Context, entry *domain.MessageLog) error
	ListByPhone(ctx context.Context, phone string, limit int32) ([]domain.MessageLog, error)
}

type Service interface {
	// Dispatch renders the template selected by req.Kind and sends it to
	// req.Phone through the configured provider.
	Dispatch(ctx context.Context, req domain.NotificationRequest) (*domain.ProviderResult, error)
	// History lists the dispatch audit log for one phone, newest first.
	History(ctx context.Context, rawPhone string, limit int32) ([]domain.MessageLog, error)
}

type service struct {
	sender     provider.Sender
	normalizer *phone.Normalizer
	msgLog     MessageLogger
}

func NewService(sender provider.Sender, normalizer *phone.Normalizer, msgLog MessageLogger) Service {
	return &service{sender: sender, normalizer: normalizer, msgLog: msgLog}
}

func (s *service) Dispatch(ctx context.Context, req domain.NotificationRequest) (*domain.ProviderResult, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unknown notification kind %q: %w", req.Kind, domain.ErrBadRequest)
	}

	canonical, err := s.normalizer.Normalize(req.Phone)
	if err != nil {
		return nil, fmt.Errorf("normalize %q: %w", req.Phone, domain.ErrBadPhone)
	}

	body, err := render(req)
	if err != nil {
		return nil, err
	}

	if s.sender == nil || !s.sender.Configured() {
		return nil, fmt.Errorf("message delivery unavailable: %w", domain.ErrNotConfigured)
	}

	res := s.sender.Send(ctx, canonical, body)
	s.audit(string(req.Kind), canonical, res)
	if !res.OK {
		return nil, &domain.DeliveryError{Provider: s.sender.Name(), Message: res.ErrorMessage}
	}
	return &res, nil
}

func (s *service) History(ctx context.Context, rawPhone string, limit int32) ([]domain.MessageLog, error) {
	if s.msgLog == nil {
		return nil, fmt.Errorf("message log disabled: %w", domain.ErrNotConfigured)
	}
	canonical, err := s.normalizer.Normalize(rawPhone)
	if err != nil {
		return nil, fmt.Errorf("normalize %q: %w", rawPhone, domain.ErrBadPhone)
	}
	return s.msgLog.ListByPhone(ctx, canonical, limit)
}

// render interpolates the caller-supplied fields into the fixed-language
// template for req.Kind.
func render(req domain.NotificationRequest) (string, error) {
	switch req.Kind {
	case domain.KindDocumentRejection:
		if req.DocumentName == "" || req.Reason == "" {
			return "", fmt.Errorf("document_name and reason are required: %w", domain.ErrBadRequest)
		}
		return fmt.Sprintf(
			"Votre document « %s » a été rejeté. Motif : %s. Merci de le soumettre à nouveau.",
			req.DocumentName, req.Reason), nil

	case domain.KindDocumentRequest:
		if len(req.RequestedDocs) == 0 {
			return "", fmt.Errorf("requested_docs is required: %w", domain.ErrBadRequest)
		}
		return fmt.Sprintf(
			"Des documents supplémentaires sont requis pour votre dossier : %s. Merci de les déposer dès que possible.",
			strings.Join(req.RequestedDocs, ", ")), nil

	case domain.KindApplicationApproved:
		if req.ApplicantName == "" || req.ApplicationID == "" {
			return "", fmt.Errorf("applicant_name and application_id are required: %w", domain.ErrBadRequest)
		}
		return fmt.Sprintf(
			"Bonjour %s, votre demande n° %s a été approuvée. Vous serez contacté pour la suite.",
			req.ApplicantName, shortID(req.ApplicationID)), nil

	case domain.KindApplicationRejected:
		if req.ApplicantName == "" || req.ApplicationID == "" || req.Reason == "" {
			return "", fmt.Errorf("applicant_name, application_id and reason are required: %w", domain.ErrBadRequest)
		}
		return fmt.Sprintf(
			"Bonjour %s, votre demande n° %s a été rejetée. Motif : %s.",
			req.ApplicantName, shortID(req.ApplicationID), req.Reason), nil

	case domain.KindFreeText:
		if req.Text == "" {
			return "", fmt.Errorf("text is required: %w", domain.ErrBadRequest)
		}
		return req.Text, nil
	}
	return "", fmt.Errorf("unknown notification kind %q: %w", req.Kind, domain.ErrBadRequest)
}

// shortID truncates an application identifier to its display form.
func shortID(appID string) string {
	if len(appID) <= 8 {
		return appID
	}
	return appID[:8]
}

func (s *service) audit(kind, canonical string, res domain.ProviderResult) {
	if s.msgLog == nil {
		return
	}
	status := "failed"
	if res.OK {
		status = "sent"
	}
	entry := &domain.MessageLog{
		MessageID: id.New(),
		Kind:      kind,
		Phone:     canonical,
		Provider:  s.sender.Name(),
		Reference: res.Reference,
		Status:    status,
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
