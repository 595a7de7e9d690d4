package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloodbridge/backend/pkg/metrics"
)

// VerifyResult classifies one verification attempt.
type VerifyResult int

const (
	Verified VerifyResult = iota
	NotFound
	Expired
	Mismatch
)

func (r VerifyResult) String() string {
	switch r {
	case Verified:
		return "verified"
	case NotFound:
		return "not_found"
	case Expired:
		return "expired"
	default:
		return "mismatch"
	}
}

type record struct {
	code      string
	expiresAt time.Time
}

// Service owns the phone-to-code mapping used for phone verification.
// Nothing else reads or writes it. All access goes through the mutex so
// a verify can never observe a record mid-replacement by a concurrent
// issue for the same phone.
type Service struct {
	mu      sync.Mutex
	records map[string]record

	expiry  time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(expiry time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	return &Service{
		records: make(map[string]record),
		expiry:  expiry,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Issue generates a fresh 6-digit code for phone, unconditionally
// replacing any live code, and returns it for the caller to transport.
// Issuing never sends the SMS itself and is not rolled back if the
// send later fails.
func (s *Service) Issue(phone string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	s.mu.Lock()
	s.records[phone] = record{
		code:      code,
		expiresAt: s.now().Add(s.expiry),
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.OTPIssued.Inc()
	}
	return code, nil
}

// Verify checks code against the live record for phone. A match
// consumes the record (single use). An expired record is deleted on
// sight, so a repeat attempt reports NotFound. A mismatch keeps the
// record so the caller may retry.
func (s *Service) Verify(phone, code string) VerifyResult {
	s.mu.Lock()
	result := s.verifyLocked(phone, code)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.OTPVerified.WithLabelValues(result.String()).Inc()
	}
	return result
}

func (s *Service) verifyLocked(phone, code string) VerifyResult {
	rec, ok := s.records[phone]
	if !ok {
		return NotFound
	}
	if s.now().After(rec.expiresAt) {
		delete(s.records, phone)
		return Expired
	}
	if rec.code != code {
		return Mismatch
	}
	delete(s.records, phone)
	return Verified
}

// StartJanitor sweeps expired records every interval until ctx is
// cancelled, so abandoned codes do not accumulate.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.logger.Debug().Int("expired", n).Msg("swept expired otp records")
			}
		}
	}
}

func (s *Service) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for phone, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, phone)
			removed++
		}
	}
	return removed
}

// generateCode draws a uniform 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
