package otp

import (
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone = "+15550001111"

func newTestService() *Service {
	return NewService(5*time.Minute, nil, zerolog.Nop())
}

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	svc := newTestService()

	for i := 0; i < 50; i++ {
		code, err := svc.Issue(phone)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{5}$`), code)
	}
}

func TestVerifyHappyPath(t *testing.T) {
	svc := newTestService()

	code, err := svc.Issue(phone)
	require.NoError(t, err)

	assert.Equal(t, Verified, svc.Verify(phone, code))
	// Single use: the record is consumed on success.
	assert.Equal(t, NotFound, svc.Verify(phone, code))
}

func TestVerifyUnknownPhone(t *testing.T) {
	svc := newTestService()
	assert.Equal(t, NotFound, svc.Verify(phone, "123456"))
}

func TestVerifyMismatchKeepsRecord(t *testing.T) {
	svc := newTestService()

	code, err := svc.Issue(phone)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "999999"
	}

	assert.Equal(t, Mismatch, svc.Verify(phone, wrong))
	// The caller may retry with the right code.
	assert.Equal(t, Verified, svc.Verify(phone, code))
}

func TestVerifyExpiredThenNotFound(t *testing.T) {
	svc := newTestService()

	code, err := svc.Issue(phone)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }

	assert.Equal(t, Expired, svc.Verify(phone, code))
	// Expiry detection deletes the record.
	assert.Equal(t, NotFound, svc.Verify(phone, code))
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	svc := newTestService()

	first, err := svc.Issue(phone)
	require.NoError(t, err)

	var second string
	// Codes are random; draw until they differ.
	for {
		second, err = svc.Issue(phone)
		require.NoError(t, err)
		if second != first {
			break
		}
	}

	assert.Equal(t, Mismatch, svc.Verify(phone, first))
	assert.Equal(t, Verified, svc.Verify(phone, second))
}

func TestIssueIndependentPhones(t *testing.T) {
	svc := newTestService()

	codeA, err := svc.Issue("+15550001111")
	require.NoError(t, err)
	codeB, err := svc.Issue("+15550002222")
	require.NoError(t, err)

	assert.Equal(t, Verified, svc.Verify("+15550001111", codeA))
	assert.Equal(t, Verified, svc.Verify("+15550002222", codeB))
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	svc := newTestService()

	_, err := svc.Issue("+15550001111")
	require.NoError(t, err)

	base := time.Now()
	svc.now = func() time.Time { return base.Add(10 * time.Minute) }
	live, err := svc.Issue("+15550002222")
	require.NoError(t, err)

	removed := svc.sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, Verified, svc.Verify("+15550002222", live))
}
