package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloodbridge/backend/internal/repository"
)

// RetentionWorker prunes old emergency request records. Only recent
// history matters for rate limiting; everything older is audit noise
// with personal data in it.
type RetentionWorker struct {
	repo          repository.EmergencyRepository
	retentionDays int
	interval      time.Duration
	logger        zerolog.Logger
}

func NewRetentionWorker(repo repository.EmergencyRepository, retentionDays int, interval time.Duration, logger zerolog.Logger) *RetentionWorker {
	return &RetentionWorker{
		repo:          repo,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

func (w *RetentionWorker) prune(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to prune emergency records")
		return
	}
	if rows > 0 {
		w.logger.Info().Int64("rows", rows).Time("cutoff", cutoff).Msg("pruned old emergency records")
	}
}
