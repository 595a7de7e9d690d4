package donor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/repository/postgres"
	apperrors "github.com/bloodbridge/backend/pkg/errors"
	"github.com/bloodbridge/backend/pkg/security"
)

type fakeDonorRepo struct {
	donors      map[string]*model.Donor
	searchCalls int
}

func newFakeDonorRepo() *fakeDonorRepo {
	return &fakeDonorRepo{donors: make(map[string]*model.Donor)}
}

func (f *fakeDonorRepo) Create(_ context.Context, d *model.Donor) error {
	f.donors[d.Email] = d
	return nil
}

func (f *fakeDonorRepo) FindByEmail(_ context.Context, email string) (*model.Donor, error) {
	if d, ok := f.donors[email]; ok {
		return d, nil
	}
	return nil, postgres.ErrDonorNotFound
}

func (f *fakeDonorRepo) QueryEligible(_ context.Context, bloodGroup, city string) ([]*model.Donor, error) {
	f.searchCalls++
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

func (f *fakeDonorRepo) List(context.Context) ([]*model.Donor, error) {
	donors := make([]*model.Donor, 0, len(f.donors))
	for _, d := range f.donors {
		donors = append(donors, d)
	}
	return donors, nil
}

func (f *fakeDonorRepo) Verify(_ context.Context, id uuid.UUID) error {
	for _, d := range f.donors {
		if d.ID == id {
			d.Verified = true
			return nil
		}
	}
	return postgres.ErrDonorNotFound
}

func (f *fakeDonorRepo) Delete(_ context.Context, id uuid.UUID) error {
	for email, d := range f.donors {
		if d.ID == id {
			delete(f.donors, email)
			return nil
		}
	}
	return postgres.ErrDonorNotFound
}

func input() RegisterInput {
	return RegisterInput{
		Name:       "Ravi",
		Email:      "ravi@example.com",
		Password:   "s3cret-pass",
		BloodGroup: "O+",
		City:       "Pune",
		State:      "Maharashtra",
	}
}

func newTestService(repo *fakeDonorRepo) *Service {
	return NewService(repo, security.NewBcryptHasher(bcrypt.MinCost), zerolog.Nop())
}

func TestRegisterHashesPasswordAndStartsUnverified(t *testing.T) {
	repo := newFakeDonorRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Register(context.Background(), input()))

	d := repo.donors["ravi@example.com"]
	require.NotNil(t, d)
	assert.False(t, d.Verified)
	assert.NotEqual(t, "s3cret-pass", d.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeDonorRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Register(context.Background(), input()))

	err := svc.Register(context.Background(), input())
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestSearchCachesResults(t *testing.T) {
	repo := newFakeDonorRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Register(context.Background(), input()))
	d := repo.donors["ravi@example.com"]
	require.NoError(t, repo.Verify(context.Background(), d.ID))

	first, err := svc.Search(context.Background(), "O+", "Pune")
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "O+", "Pune")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.searchCalls, "second search served from cache")
}

func TestVerifyInvalidatesSearchCache(t *testing.T) {
	repo := newFakeDonorRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Register(context.Background(), input()))
	d := repo.donors["ravi@example.com"]

	// Cache the empty result, then verify through the service.
	empty, err := svc.Search(context.Background(), "O+", "Pune")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, svc.Verify(context.Background(), d.ID))

	found, err := svc.Search(context.Background(), "O+", "Pune")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestDeleteUnknownDonor(t *testing.T) {
	svc := newTestService(newFakeDonorRepo())

	err := svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
