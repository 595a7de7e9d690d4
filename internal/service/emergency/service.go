package emergency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/repository"
	"github.com/bloodbridge/backend/internal/service/dispatch"
	"github.com/bloodbridge/backend/internal/service/ratelimit"
	apperrors "github.com/bloodbridge/backend/pkg/errors"
	"github.com/bloodbridge/backend/pkg/messaging"
)

// Config bounds one emergency fan-out.
type Config struct {
	MaxRecipients int
	Dispatch      dispatch.Options
}

func DefaultConfig() Config {
	return Config{
		MaxRecipients: 50,
		Dispatch:      dispatch.DefaultOptions(),
	}
}

// Result is the orchestrator's answer to one alert request. Found is
// false when no eligible donors matched; that is a normal outcome, not
// an error.
type Result struct {
	Found   bool
	Message string
	Stats   model.AlertResult
}

// Service runs the full emergency flow: rate-limit gate, eligible donor
// lookup, bounded fan-out, audit append.
type Service struct {
	donors     repository.DonorRepository
	requests   repository.EmergencyRepository
	limiter    *ratelimit.Service
	dispatcher *dispatch.Service
	broker     messaging.Broker
	cfg        Config
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(
	donors repository.DonorRepository,
	requests repository.EmergencyRepository,
	limiter *ratelimit.Service,
	dispatcher *dispatch.Service,
	broker messaging.Broker,
	cfg Config,
	logger zerolog.Logger,
) *Service {
	if cfg.MaxRecipients <= 0 {
		cfg.MaxRecipients = DefaultConfig().MaxRecipients
	}
	return &Service{
		donors:     donors,
		requests:   requests,
		limiter:    limiter,
		dispatcher: dispatcher,
		broker:     broker,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// SendAlerts processes one emergency request end to end. A throttled
// requester gets an ErrRateLimited AppError; donor lookup and audit
// append failures are fatal for the request.
func (s *Service) SendAlerts(ctx context.Context, req *model.EmergencyRequest) (*Result, error) {
	if decision := s.limiter.Check(ctx, req.RequesterID); !decision.Allowed {
		return nil, apperrors.NewRateLimited(decision.Reason)
	}

	donors, err := s.donors.QueryEligible(ctx, req.BloodGroup, req.City)
	if err != nil {
		return nil, fmt.Errorf("failed to look up eligible donors: %w", err)
	}

	if len(donors) == 0 {
		return &Result{
			Message: fmt.Sprintf("No verified %s donors found in %s.", req.BloodGroup, req.City),
		}, nil
	}

	if len(donors) > s.cfg.MaxRecipients {
		donors = donors[:s.cfg.MaxRecipients]
	}

	recipients := make([]model.RecipientCandidate, 0, len(donors))
	for _, d := range donors {
		recipients = append(recipients, d.Recipient())
	}

	result := s.dispatcher.Dispatch(ctx, recipients, s.renderFunc(req), s.cfg.Dispatch)

	audit := &model.EmergencyAudit{
		ID:            uuid.New(),
		RequesterID:   req.RequesterID,
		RequesterName: req.RequesterName,
		HospitalName:  req.HospitalName,
		BloodGroup:    req.BloodGroup,
		City:          req.City,
		State:         req.State,
		Address:       req.Address,
		Notes:         req.Notes,
		AlertsSent:    result.Sent,
		AlertsFailed:  result.Failed,
	}
	if err := s.requests.Append(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to record emergency request: %w", err)
	}

	s.publishEvent(ctx, req, result)

	return &Result{
		Found:   true,
		Message: fmt.Sprintf("Emergency alert sent to %d verified %s donors in %s!", result.Sent, req.BloodGroup, req.City),
		Stats:   result,
	}, nil
}

// renderFunc binds the request to the alert template. Rendering is pure
// so the dispatcher can run it up front for every recipient.
func (s *Service) renderFunc(req *model.EmergencyRequest) dispatch.RenderFunc {
	alertTime := s.now().Format("3:04 PM, 02 Jan 2006")
	subject := fmt.Sprintf("URGENT: Blood Donation Request - %s", req.BloodGroup)

	return func(r model.RecipientCandidate) (string, string) {
		var body strings.Builder
		err := alertTemplate.Execute(&body, alertTemplateData{
			DonorName:     r.Name,
			BloodGroup:    req.BloodGroup,
			HospitalName:  req.HospitalName,
			Address:       req.Address,
			City:          req.City,
			State:         req.State,
			RequesterName: req.RequesterName,
			AlertTime:     alertTime,
			Notes:         req.Notes,
		})
		if err != nil {
			// The template is static and the data plain strings; an
			// execute error here means a programming bug.
			s.logger.Error().Err(err).Msg("alert template render failed")
		}
		return subject, body.String()
	}
}

// publishEvent is best effort: a broker outage never fails the request.
func (s *Service) publishEvent(ctx context.Context, req *model.EmergencyRequest, result model.AlertResult) {
	if s.broker == nil {
		return
	}
	event := messaging.AlertEvent{
		BloodGroup: req.BloodGroup,
		City:       req.City,
		Total:      result.Total,
		Sent:       result.Sent,
		Failed:     result.Failed,
		DurationMS: float64(result.Duration.Milliseconds()),
	}
	if err := s.broker.Publish(ctx, messaging.ChannelAlerts, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish alert event")
	}
}
