package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/bloodbridge/backend/internal/model"
)

type fakeHistoryRepo struct {
	records []model.RateLimitRecord
	err     error
}

func (f *fakeHistoryRepo) History(_ context.Context, _ string, limit int) ([]model.RateLimitRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeHistoryRepo) Append(_ context.Context, _ *model.EmergencyAudit) error {
	return nil
}

func (f *fakeHistoryRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestService(repo *fakeHistoryRepo, now time.Time) *Service {
	svc := NewService(repo, DefaultConfig(), nil, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func recordsAt(times ...time.Time) []model.RateLimitRecord {
	records := make([]model.RateLimitRecord, 0, len(times))
	for _, t := range times {
		records = append(records, model.RateLimitRecord{RequesterID: "10.0.0.1", CreatedAt: t})
	}
	return records
}

func TestCheckNoHistoryAllowed(t *testing.T) {
	svc := newTestService(&fakeHistoryRepo{}, time.Now())

	decision := svc.Check(context.Background(), "10.0.0.1")
	assert.True(t, decision.Allowed)
}

func TestCheckCooldownThrottles(t *testing.T) {
	now := time.Now()
	repo := &fakeHistoryRepo{records: recordsAt(now.Add(-10 * time.Minute))}
	svc := newTestService(repo, now)

	decision := svc.Check(context.Background(), "10.0.0.1")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "Please wait 20 minutes before submitting another emergency request.", decision.Reason)
	assert.Equal(t, 20*time.Minute, decision.RetryAfter)
}

func TestCheckCooldownMinutesRoundUp(t *testing.T) {
	now := time.Now()
	// 10m30s elapsed leaves 19m30s, which reads as 20 minutes.
	repo := &fakeHistoryRepo{records: recordsAt(now.Add(-10*time.Minute - 30*time.Second))}
	svc := newTestService(repo, now)

	decision := svc.Check(context.Background(), "10.0.0.1")
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "wait 20 minutes")
}

func TestCheckHourlyCapThrottles(t *testing.T) {
	now := time.Now()
	// Three requests inside the hour, all past the cooldown window.
	repo := &fakeHistoryRepo{records: recordsAt(
		now.Add(-31*time.Minute),
		now.Add(-40*time.Minute),
		now.Add(-50*time.Minute),
	)}
	svc := newTestService(repo, now)

	decision := svc.Check(context.Background(), "10.0.0.1")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "Maximum 3 emergency requests per hour allowed.", decision.Reason)
}

func TestCheckCooldownWinsOverHourlyCap(t *testing.T) {
	now := time.Now()
	repo := &fakeHistoryRepo{records: recordsAt(
		now.Add(-5*time.Minute),
		now.Add(-20*time.Minute),
		now.Add(-40*time.Minute),
	)}
	svc := newTestService(repo, now)

	decision := svc.Check(context.Background(), "10.0.0.1")
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "Please wait")
}

func TestCheckOldHistoryAllowed(t *testing.T) {
	now := time.Now()
	repo := &fakeHistoryRepo{records: recordsAt(
		now.Add(-2*time.Hour),
		now.Add(-3*time.Hour),
		now.Add(-4*time.Hour),
	)}
	svc := newTestService(repo, now)

	decision := svc.Check(context.Background(), "10.0.0.1")
	assert.True(t, decision.Allowed)
}

func TestCheckFailsOpenOnStoreError(t *testing.T) {
	repo := &fakeHistoryRepo{err: errors.New("store unreachable")}
	svc := newTestService(repo, time.Now())

	decision := svc.Check(context.Background(), "10.0.0.1")
	assert.True(t, decision.Allowed, "a store outage must never block an emergency")
}
