package emergency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/service/dispatch"
	"github.com/bloodbridge/backend/internal/service/ratelimit"
	apperrors "github.com/bloodbridge/backend/pkg/errors"
)

type fakeDonorRepo struct {
	donors []*model.Donor
	err    error
}

func (f *fakeDonorRepo) Create(context.Context, *model.Donor) error { return nil }
func (f *fakeDonorRepo) FindByEmail(context.Context, string) (*model.Donor, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeDonorRepo) QueryEligible(_ context.Context, bloodGroup, city string) ([]*model.Donor, error) {
	if f.err != nil {
		return nil, f.err
	}
	var match []*model.Donor
	for _, d := range f.donors {
		if d.Verified && d.BloodGroup == bloodGroup && d.City == city {
			match = append(match, d)
		}
	}
	return match, nil
}
func (f *fakeDonorRepo) Search(ctx context.Context, bloodGroup, city string) ([]*model.Donor, error) {
	return f.QueryEligible(ctx, bloodGroup, city)
}
func (f *fakeDonorRepo) List(context.Context) ([]*model.Donor, error) { return f.donors, nil }
func (f *fakeDonorRepo) Verify(context.Context, uuid.UUID) error      { return nil }
func (f *fakeDonorRepo) Delete(context.Context, uuid.UUID) error      { return nil }

type fakeEmergencyRepo struct {
	mu      sync.Mutex
	history []model.RateLimitRecord
	appends []*model.EmergencyAudit
	histErr error
}

func (f *fakeEmergencyRepo) History(_ context.Context, _ string, limit int) ([]model.RateLimitRecord, error) {
	if f.histErr != nil {
		return nil, f.histErr
	}
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeEmergencyRepo) Append(_ context.Context, audit *model.EmergencyAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends = append(f.appends, audit)
	return nil
}

func (f *fakeEmergencyRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type countingTransport struct {
	mu   sync.Mutex
	sent map[string]int
}

func (t *countingTransport) Send(_ context.Context, to, _, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sent == nil {
		t.sent = make(map[string]int)
	}
	t.sent[to]++
	return nil
}

func makeDonors(n int, bloodGroup, city string) []*model.Donor {
	donors := make([]*model.Donor, 0, n)
	for i := 0; i < n; i++ {
		donors = append(donors, &model.Donor{
			ID:         uuid.New(),
			Name:       fmt.Sprintf("Donor %d", i),
			Email:      fmt.Sprintf("donor%d@example.com", i),
			BloodGroup: bloodGroup,
			City:       city,
			Verified:   true,
		})
	}
	return donors
}

func testRequest() *model.EmergencyRequest {
	return &model.EmergencyRequest{
		RequesterID:   "10.0.0.1",
		BloodGroup:    "O+",
		City:          "Pune",
		State:         "Maharashtra",
		HospitalName:  "City Hospital",
		Address:       "12 MG Road",
		RequesterName: "A. Kulkarni",
	}
}

func newTestService(donors *fakeDonorRepo, requests *fakeEmergencyRepo, transport *countingTransport) *Service {
	limiter := ratelimit.NewService(requests, ratelimit.DefaultConfig(), nil, zerolog.Nop())
	dispatcher := dispatch.NewService(transport, nil, zerolog.Nop())
	cfg := DefaultConfig()
	cfg.Dispatch = dispatch.Options{MaxWorkers: 5, SendDelay: time.Millisecond}
	return NewService(donors, requests, limiter, dispatcher, nil, cfg, zerolog.Nop())
}

func TestSendAlertsCapsRecipientsAtFifty(t *testing.T) {
	donors := &fakeDonorRepo{donors: makeDonors(62, "O+", "Pune")}
	requests := &fakeEmergencyRepo{}
	transport := &countingTransport{}
	svc := newTestService(donors, requests, transport)

	result, err := svc.SendAlerts(context.Background(), testRequest())
	require.NoError(t, err)
	require.True(t, result.Found)

	assert.Equal(t, 50, result.Stats.Total)
	assert.Equal(t, 50, result.Stats.Sent)
	assert.Len(t, transport.sent, 50)

	// Only the first 50 in supplied order are contacted.
	for i := 0; i < 50; i++ {
		addr := fmt.Sprintf("donor%d@example.com", i)
		assert.Equal(t, 1, transport.sent[addr])
	}
	for i := 50; i < 62; i++ {
		addr := fmt.Sprintf("donor%d@example.com", i)
		assert.NotContains(t, transport.sent, addr)
	}
}

func TestSendAlertsNoDonorsFound(t *testing.T) {
	donors := &fakeDonorRepo{}
	requests := &fakeEmergencyRepo{}
	transport := &countingTransport{}
	svc := newTestService(donors, requests, transport)

	result, err := svc.SendAlerts(context.Background(), testRequest())
	require.NoError(t, err)

	assert.False(t, result.Found)
	assert.Equal(t, "No verified O+ donors found in Pune.", result.Message)
	assert.Empty(t, transport.sent)
	assert.Empty(t, requests.appends, "nothing to audit when nothing was dispatched")
}

func TestSendAlertsThrottledByCooldown(t *testing.T) {
	donors := &fakeDonorRepo{donors: makeDonors(3, "O+", "Pune")}
	requests := &fakeEmergencyRepo{history: []model.RateLimitRecord{
		{RequesterID: "10.0.0.1", CreatedAt: time.Now().Add(-5 * time.Minute)},
	}}
	transport := &countingTransport{}
	svc := newTestService(donors, requests, transport)

	_, err := svc.SendAlerts(context.Background(), testRequest())
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrRateLimited, appErr.Code)
	assert.Empty(t, transport.sent, "no dispatch for a throttled request")
}

func TestSendAlertsProceedsWhenHistoryReadFails(t *testing.T) {
	donors := &fakeDonorRepo{donors: makeDonors(2, "O+", "Pune")}
	requests := &fakeEmergencyRepo{histErr: errors.New("store unreachable")}
	transport := &countingTransport{}
	svc := newTestService(donors, requests, transport)

	result, err := svc.SendAlerts(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, 2, result.Stats.Sent)
}

func TestSendAlertsFatalOnDonorLookupFailure(t *testing.T) {
	donors := &fakeDonorRepo{err: errors.New("store unreachable")}
	requests := &fakeEmergencyRepo{}
	transport := &countingTransport{}
	svc := newTestService(donors, requests, transport)

	_, err := svc.SendAlerts(context.Background(), testRequest())
	assert.Error(t, err)
	assert.Empty(t, transport.sent)
}

func TestSendAlertsRecordsAudit(t *testing.T) {
	donors := &fakeDonorRepo{donors: makeDonors(4, "O+", "Pune")}
	requests := &fakeEmergencyRepo{}
	transport := &countingTransport{}
	svc := newTestService(donors, requests, transport)

	result, err := svc.SendAlerts(context.Background(), testRequest())
	require.NoError(t, err)

	require.Len(t, requests.appends, 1)
	audit := requests.appends[0]
	assert.Equal(t, "10.0.0.1", audit.RequesterID)
	assert.Equal(t, "O+", audit.BloodGroup)
	assert.Equal(t, result.Stats.Sent, audit.AlertsSent)
	assert.Equal(t, result.Stats.Failed, audit.AlertsFailed)
}

func TestSendAlertsMessageRendering(t *testing.T) {
	req := testRequest()
	svc := newTestService(&fakeDonorRepo{}, &fakeEmergencyRepo{}, &countingTransport{})

	render := svc.renderFunc(req)
	subject, body := render(model.RecipientCandidate{Name: "Ravi", Email: "ravi@example.com"})

	assert.Equal(t, "URGENT: Blood Donation Request - O+", subject)
	assert.Contains(t, body, "Dear Ravi")
	assert.Contains(t, body, "City Hospital")
	assert.Contains(t, body, "12 MG Road, Pune, Maharashtra")
	assert.Contains(t, body, "A. Kulkarni")
}
