package domain

import "time"

// NotificationKind selects one of the fixed message templates.
type NotificationKind string

const (
	KindDocumentRejection   NotificationKind = "document_rejection"
	KindDocumentRequest     NotificationKind = "document_request"
	KindApplicationApproved NotificationKind = "application_approved"
	KindApplicationRejected NotificationKind = "application_rejected"
	KindFreeText            NotificationKind = "free_text"
)

// Valid reports whether k is one of the known template kinds.
func (k NotificationKind) Valid() bool {
	switch k {
	case KindDocumentRejection, KindDocumentRequest,
		KindApplicationApproved, KindApplicationRejected, KindFreeText:
		return true
	}
	return false
}

// NotificationRequest holds the template parameters for one outbound message.
// Which fields are required depends on Kind; the dispatcher enforces that.
type NotificationRequest struct {
	Kind          NotificationKind `json:"kind" validate:"required"`
	Phone         string           `json:"phone" validate:"required"`
	DocumentName  string           `json:"document_name,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	RequestedDocs []string         `json:"requested_docs,omitempty"`
	ApplicantName string           `json:"applicant_name,omitempty"`
	ApplicationID string           `json:"application_id,omitempty"`
	Text          string           `json:"text,omitempty"`
}

// ProviderResult is the uniform value every DeliveryProvider call returns.
// Provider and network failures are folded into OK=false; nothing below the
// provider boundary panics or returns a transport error.
type ProviderResult struct {
	OK           bool
	Reference    string
	ErrorMessage string
}

// MessageLog is one audit entry for a dispatched message. Codes and message
// bodies are deliberately not recorded.
type MessageLog struct {
	MessageID string    `json:"message_id" dynamodbav:"message_id"`
	Kind      string    `json:"kind" dynamodbav:"kind"`
	Phone     string    `json:"phone" dynamodbav:"phone"`
	Provider  string    `json:"provider" dynamodbav:"provider"`
	Reference string    `json:"reference,omitempty" dynamodbav:"reference"`
	Status    string    `json:"status" dynamodbav:"status"` // "sent" | "failed"
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
