package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloodbridge/backend/internal/repository"
	"github.com/bloodbridge/backend/pkg/metrics"
)

// Config controls the per-requester gate in front of emergency alerts.
type Config struct {
	Cooldown     time.Duration
	MaxPerHour   int
	HistoryDepth int
}

func DefaultConfig() Config {
	return Config{
		Cooldown:     30 * time.Minute,
		MaxPerHour:   3,
		HistoryDepth: 10,
	}
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	Reason     string
	RetryAfter time.Duration
}

var allowed = Decision{Allowed: true}

// Service decides whether a requester may trigger another emergency
// fan-out. It owns no state: every decision is a pure function of the
// history supplied by the repository.
type Service struct {
	repo    repository.EmergencyRepository
	cfg     Config
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(repo repository.EmergencyRepository, cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = DefaultConfig().HistoryDepth
	}
	return &Service{
		repo:    repo,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Check returns whether requesterID may proceed right now.
//
// A history read failure fails open: a backing-store outage must never
// block a genuine emergency.
func (s *Service) Check(ctx context.Context, requesterID string) Decision {
	decision := s.check(ctx, requesterID)
	if s.metrics != nil {
		label := "allowed"
		if !decision.Allowed {
			label = "throttled"
		}
		s.metrics.RateLimitDecisions.WithLabelValues(label).Inc()
	}
	return decision
}

func (s *Service) check(ctx context.Context, requesterID string) Decision {
	records, err := s.repo.History(ctx, requesterID, s.cfg.HistoryDepth)
	if err != nil {
		s.logger.Warn().Err(err).Str("requester", requesterID).
			Msg("rate limit history read failed, failing open")
		return allowed
	}

	if len(records) == 0 {
		return allowed
	}

	now := s.now()

	// Cooldown is checked first and wins over the hourly cap: its
	// message tells the requester exactly how long to wait.
	elapsed := now.Sub(records[0].CreatedAt)
	if elapsed < s.cfg.Cooldown {
		remaining := s.cfg.Cooldown - elapsed
		minutes := int((remaining + time.Minute - 1) / time.Minute)
		return Decision{
			Reason:     fmt.Sprintf("Please wait %d minutes before submitting another emergency request.", minutes),
			RetryAfter: remaining,
		}
	}

	hourAgo := now.Add(-time.Hour)
	inLastHour := 0
	for _, rec := range records {
		if rec.CreatedAt.After(hourAgo) {
			inLastHour++
		}
	}
	if inLastHour >= s.cfg.MaxPerHour {
		return Decision{
			Reason: fmt.Sprintf("Maximum %d emergency requests per hour allowed.", s.cfg.MaxPerHour),
		}
	}

	return allowed
}
