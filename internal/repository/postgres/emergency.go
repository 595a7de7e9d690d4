package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/repository"
	"github.com/bloodbridge/backend/pkg/metrics"
)

type emergencyRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

func NewEmergencyRepository(db *sqlx.DB, m *metrics.Metrics) repository.EmergencyRepository {
	return &emergencyRepository{db: db, metrics: m}
}

func (r *emergencyRepository) History(ctx context.Context, requesterID string, limit int) (records []model.RateLimitRecord, err error) {
	defer observe(r.metrics, "emergency_history", time.Now(), &err)

	query := `
		SELECT requester_ip, created_at FROM emergency_requests
		WHERE requester_ip = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err = r.db.SelectContext(ctx, &records, query, requesterID, limit); err != nil {
		return nil, fmt.Errorf("failed to read request history: %w", err)
	}
	return records, nil
}

func (r *emergencyRepository) Append(ctx context.Context, audit *model.EmergencyAudit) (err error) {
	defer observe(r.metrics, "emergency_append", time.Now(), &err)

	query := `
		INSERT INTO emergency_requests
			(id, requester_ip, requester_name, hospital_name, blood_group, city, state, address, notes, alerts_sent, alerts_failed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	audit.CreatedAt = time.Now()

	_, err = r.db.ExecContext(ctx, query,
		audit.ID,
		audit.RequesterID,
		audit.RequesterName,
		audit.HospitalName,
		audit.BloodGroup,
		audit.City,
		audit.State,
		audit.Address,
		audit.Notes,
		audit.AlertsSent,
		audit.AlertsFailed,
		audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append emergency record: %w", err)
	}
	return nil
}

func (r *emergencyRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (deleted int64, err error) {
	defer observe(r.metrics, "emergency_prune", time.Now(), &err)

	query := `DELETE FROM emergency_requests WHERE created_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old emergency records: %w", err)
	}
	return res.RowsAffected()
}
