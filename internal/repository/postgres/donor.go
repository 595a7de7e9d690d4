package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/repository"
	"github.com/bloodbridge/backend/pkg/metrics"
)

var ErrDonorNotFound = errors.New("donor not found")

type donorRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

func NewDonorRepository(db *sqlx.DB, m *metrics.Metrics) repository.DonorRepository {
	return &donorRepository{db: db, metrics: m}
}

func (r *donorRepository) Create(ctx context.Context, donor *model.Donor) (err error) {
	defer observe(r.metrics, "donor_create", time.Now(), &err)

	query := `
		INSERT INTO donors (id, name, email, password_hash, blood_group, address, city, state, phone, phone_verified, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	donor.CreatedAt = time.Now()

	_, err = r.db.ExecContext(ctx, query,
		donor.ID,
		donor.Name,
		donor.Email,
		donor.PasswordHash,
		donor.BloodGroup,
		donor.Address,
		donor.City,
		donor.State,
		donor.Phone,
		donor.PhoneVerified,
		donor.Verified,
		donor.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create donor: %w", err)
	}
	return nil
}

func (r *donorRepository) FindByEmail(ctx context.Context, email string) (donor *model.Donor, err error) {
	defer observe(r.metrics, "donor_find_by_email", time.Now(), &err)

	query := `SELECT * FROM donors WHERE email = $1`
	var d model.Donor
	err = r.db.GetContext(ctx, &d, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDonorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find donor: %w", err)
	}
	return &d, nil
}

func (r *donorRepository) QueryEligible(ctx context.Context, bloodGroup, city string) (donors []*model.Donor, err error) {
	defer observe(r.metrics, "donor_query_eligible", time.Now(), &err)

	query := `
		SELECT * FROM donors
		WHERE verified = TRUE AND blood_group = $1 AND city = $2
		ORDER BY created_at
	`
	if err = r.db.SelectContext(ctx, &donors, query, bloodGroup, city); err != nil {
		return nil, fmt.Errorf("failed to query eligible donors: %w", err)
	}
	return donors, nil
}

func (r *donorRepository) Search(ctx context.Context, bloodGroup, city string) ([]*model.Donor, error) {
	return r.QueryEligible(ctx, bloodGroup, city)
}

func (r *donorRepository) List(ctx context.Context) (donors []*model.Donor, err error) {
	defer observe(r.metrics, "donor_list", time.Now(), &err)

	query := `SELECT * FROM donors ORDER BY created_at DESC`
	if err = r.db.SelectContext(ctx, &donors, query); err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	return donors, nil
}

func (r *donorRepository) Verify(ctx context.Context, id uuid.UUID) (err error) {
	defer observe(r.metrics, "donor_verify", time.Now(), &err)

	query := `UPDATE donors SET verified = TRUE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to verify donor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDonorNotFound
	}
	return nil
}

func (r *donorRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer observe(r.metrics, "donor_delete", time.Now(), &err)

	query := `DELETE FROM donors WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete donor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDonorNotFound
	}
	return nil
}
