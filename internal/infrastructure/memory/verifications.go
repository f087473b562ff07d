package memory

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/otp-notify-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// VerificationStore keeps outstanding OTP records in memory, keyed by
// canonical phone. Codes are stored as bcrypt hashes only. A restart loses
// all records, which is acceptable given the short TTLs.
type VerificationStore struct {
	mu      sync.RWMutex
	records map[string]*domain.VerificationRecord
	now     Clock

	sweepDone chan struct{}
	sweepOnce sync.Once
}

// NewVerificationStore creates an empty store. clock may be nil (time.Now).
func NewVerificationStore(clock Clock) *VerificationStore {
	if clock == nil {
		clock = time.Now
	}
	return &VerificationStore{
		records:   make(map[string]*domain.VerificationRecord),
		now:       clock,
		sweepDone: make(chan struct{}),
	}
}

// Issue stores a new record for phone, overwriting any existing one — the
// previous code becomes permanently invalid.
func (s *VerificationStore) Issue(phone, code string, ttl time.Duration) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp code: %w", err)
	}
	now := s.now()
	s.mu.Lock()
	s.records[phone] = &domain.VerificationRecord{
		Phone:     phone,
		CodeHash:  hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Verify consumes a code for phone. Verified deletes the record (single use),
// Expired deletes it as a side effect, Mismatch keeps it so the caller may
// retry until expiry.
func (s *VerificationStore) Verify(phone, code string) domain.VerifyOutcome {
	s.mu.RLock()
	rec, ok := s.records[phone]
	s.mu.RUnlock()
	if !ok {
		return domain.OutcomeNotFound
	}

	if s.now().After(rec.ExpiresAt) {
		s.mu.Lock()
		// Another goroutine may have re-issued or swept meanwhile.
		if cur, ok := s.records[phone]; ok && cur == rec {
			delete(s.records, phone)
		}
		s.mu.Unlock()
		return domain.OutcomeExpired
	}

	// Compare outside the lock: bcrypt is slow and must not serialize
	// verifications for unrelated phones.
	if bcrypt.CompareHashAndPassword(rec.CodeHash, []byte(code)) != nil {
		return domain.OutcomeMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[phone]
	if !ok {
		// Consumed or swept while we were comparing.
		return domain.OutcomeNotFound
	}
	if !bytes.Equal(cur.CodeHash, rec.CodeHash) {
		// Re-issued mid-verify; the matched code is already invalid.
		return domain.OutcomeMismatch
	}
	delete(s.records, phone)
	return domain.OutcomeVerified
}

// Len reports the number of live records. Used by tests and diagnostics.
func (s *VerificationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// StartSweep launches the periodic reclamation of expired records. It runs
// until Stop is called. Bounds memory growth for codes that are never
// verified.
func (s *VerificationStore) StartSweep(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					slog.Debug("swept expired verification records", "count", n)
				}
			case <-s.sweepDone:
				return
			}
		}
	}()
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (s *VerificationStore) Stop() {
	s.sweepOnce.Do(func() { close(s.sweepDone) })
}

func (s *VerificationStore) sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for phone, rec := range s.records {
		if now.After(rec.ExpiresAt) {
			delete(s.records, phone)
			n++
		}
	}
	return n
}
