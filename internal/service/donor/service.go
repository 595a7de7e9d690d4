package donor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/repository"
	"github.com/bloodbridge/backend/internal/repository/postgres"
	apperrors "github.com/bloodbridge/backend/pkg/errors"
	"github.com/bloodbridge/backend/pkg/security"
)

const (
	searchCacheTTL     = time.Minute
	searchCacheCleanup = 5 * time.Minute
)

// RegisterInput is what a new donor submits. The donor starts
// unverified; an admin verifies before they receive alerts.
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	BloodGroup    string
	Address       string
	City          string
	State         string
	Phone         string
	PhoneVerified bool
}

type Service struct {
	repo   repository.DonorRepository
	hasher security.PasswordHasher
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewService(repo repository.DonorRepository, hasher security.PasswordHasher, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		cache:  cache.New(searchCacheTTL, searchCacheCleanup),
		logger: logger,
	}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return apperrors.NewBadRequest("email is already registered", nil)
	} else if !errors.Is(err, postgres.ErrDonorNotFound) {
		return fmt.Errorf("failed to check existing donor: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return apperrors.NewBadRequest("invalid password", err)
	}

	donor := &model.Donor{
		ID:            uuid.New(),
		Name:          input.Name,
		Email:         input.Email,
		PasswordHash:  hash,
		BloodGroup:    input.BloodGroup,
		Address:       input.Address,
		City:          input.City,
		State:         input.State,
		Phone:         input.Phone,
		PhoneVerified: input.PhoneVerified,
	}

	if err := s.repo.Create(ctx, donor); err != nil {
		return fmt.Errorf("failed to register donor: %w", err)
	}
	return nil
}

// Search returns verified donors matching the blood group and city.
// Results are cached briefly: search is the public hot path and the
// donor pool changes slowly.
func (s *Service) Search(ctx context.Context, bloodGroup, city string) ([]*model.Donor, error) {
	key := bloodGroup + "|" + city
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Donor), nil
	}

	donors, err := s.repo.Search(ctx, bloodGroup, city)
	if err != nil {
		return nil, fmt.Errorf("donor search failed: %w", err)
	}

	s.cache.Set(key, donors, cache.DefaultExpiration)
	return donors, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Donor, error) {
	donors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	return donors, nil
}

func (s *Service) Verify(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Verify(ctx, id); err != nil {
		if errors.Is(err, postgres.ErrDonorNotFound) {
			return apperrors.NewNotFound("donor", err)
		}
		return fmt.Errorf("failed to verify donor: %w", err)
	}
	// Verification changes search visibility immediately.
	s.cache.Flush()
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, postgres.ErrDonorNotFound) {
			return apperrors.NewNotFound("donor", err)
		}
		return fmt.Errorf("failed to delete donor: %w", err)
	}
	s.cache.Flush()
	return nil
}
