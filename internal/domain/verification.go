package domain

import "time"

// VerificationRecord is one outstanding OTP bound to a phone number.
// At most one live record exists per phone; issuing again overwrites it.
// CodeHash holds a bcrypt hash of the 6-digit code — the plaintext is never
// stored.
type VerificationRecord struct {
	Phone     string
	CodeHash  []byte
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// VerifyOutcome is the result of consuming a code against the store.
type VerifyOutcome int

const (
	// OutcomeNotFound — no record: never issued, already consumed, or swept.
	OutcomeNotFound VerifyOutcome = iota
	// OutcomeExpired — record existed past its TTL; it has been deleted.
	OutcomeExpired
	// OutcomeMismatch — record is live but the code differs; record kept.
	OutcomeMismatch
	// OutcomeVerified — code matched; record deleted (single use).
	OutcomeVerified
)

func (o VerifyOutcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeExpired:
		return "expired"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeVerified:
		return "verified"
	default:
		return "unknown"
	}
}
