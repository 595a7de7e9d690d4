package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bloodbridge/backend/internal/model"
)

// DonorRepository persists registered donors.
type DonorRepository interface {
	Create(ctx context.Context, donor *model.Donor) error
	FindByEmail(ctx context.Context, email string) (*model.Donor, error)
	// QueryEligible returns verified donors matching the blood group and
	// city, the population an emergency alert fans out to.
	QueryEligible(ctx context.Context, bloodGroup, city string) ([]*model.Donor, error)
	Search(ctx context.Context, bloodGroup, city string) ([]*model.Donor, error)
	List(ctx context.Context) ([]*model.Donor, error)
	Verify(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EmergencyRepository persists processed emergency requests. The rows
// double as the rate limiter's history: History reads them newest-first
// and never mutates them.
type EmergencyRepository interface {
	History(ctx context.Context, requesterID string, limit int) ([]model.RateLimitRecord, error)
	Append(ctx context.Context, audit *model.EmergencyAudit) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
