package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/otp-notify-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

const testPhone = "+21699123456"

func TestVerify_CorrectCode_SingleUse(t *testing.T) {
	s := NewVerificationStore(nil)
	require.NoError(t, s.Issue(testPhone, "123456", 10*time.Minute))

	assert.Equal(t, domain.OutcomeVerified, s.Verify(testPhone, "123456"))
	// Consumed: a second attempt with the same code finds nothing.
	assert.Equal(t, domain.OutcomeNotFound, s.Verify(testPhone, "123456"))
}

func TestVerify_WrongCode_KeepsRecord(t *testing.T) {
	s := NewVerificationStore(nil)
	require.NoError(t, s.Issue(testPhone, "123456", 10*time.Minute))

	assert.Equal(t, domain.OutcomeMismatch, s.Verify(testPhone, "654321"))
	assert.Equal(t, domain.OutcomeVerified, s.Verify(testPhone, "123456"))
}

func TestVerify_UnknownPhone(t *testing.T) {
	s := NewVerificationStore(nil)
	assert.Equal(t, domain.OutcomeNotFound, s.Verify(testPhone, "123456"))
}

func TestVerify_Expired_DeletesRecord(t *testing.T) {
	clock := newFakeClock()
	s := NewVerificationStore(clock.Now)
	require.NoError(t, s.Issue(testPhone, "123456", 10*time.Minute))

	clock.Advance(10*time.Minute + time.Second)

	assert.Equal(t, domain.OutcomeExpired, s.Verify(testPhone, "123456"))
	// Expiry is reported once; the record is gone afterwards.
	assert.Equal(t, domain.OutcomeNotFound, s.Verify(testPhone, "123456"))
}

func TestIssue_OverwritesPreviousCode(t *testing.T) {
	s := NewVerificationStore(nil)
	require.NoError(t, s.Issue(testPhone, "111111", 10*time.Minute))
	require.NoError(t, s.Issue(testPhone, "222222", 10*time.Minute))

	assert.Equal(t, domain.OutcomeMismatch, s.Verify(testPhone, "111111"))
	assert.Equal(t, domain.OutcomeVerified, s.Verify(testPhone, "222222"))
	assert.Equal(t, 0, s.Len())
}

func TestSweep_ReclaimsOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	s := NewVerificationStore(clock.Now)
	require.NoError(t, s.Issue("+21699111111", "111111", 5*time.Minute))
	require.NoError(t, s.Issue("+21699222222", "222222", 30*time.Minute))

	clock.Advance(10 * time.Minute)

	assert.Equal(t, 1, s.sweep())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, domain.OutcomeNotFound, s.Verify("+21699111111", "111111"))
	assert.Equal(t, domain.OutcomeVerified, s.Verify("+21699222222", "222222"))
}

func TestVerify_DifferentPhones_Independent(t *testing.T) {
	s := NewVerificationStore(nil)
	require.NoError(t, s.Issue("+21699111111", "111111", 10*time.Minute))
	require.NoError(t, s.Issue("+21699222222", "222222", 10*time.Minute))

	var wg sync.WaitGroup
	outcomes := make([]domain.VerifyOutcome, 2)
	wg.Add(2)
	go func() { defer wg.Done(); outcomes[0] = s.Verify("+21699111111", "111111") }()
	go func() { defer wg.Done(); outcomes[1] = s.Verify("+21699222222", "222222") }()
	wg.Wait()

	assert.Equal(t, domain.OutcomeVerified, outcomes[0])
	assert.Equal(t, domain.OutcomeVerified, outcomes[1])
}

func TestStartSweep_StopTerminates(t *testing.T) {
	s := NewVerificationStore(nil)
	s.StartSweep(10 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent
}
