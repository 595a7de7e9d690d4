package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/notify"
	"github.com/bloodbridge/backend/pkg/metrics"
)

// RenderFunc produces the subject and HTML body for one recipient.
// It must be pure: rendering happens before any worker starts.
type RenderFunc func(model.RecipientCandidate) (subject, body string)

// Options bound a single fan-out.
type Options struct {
	// MaxWorkers caps concurrent in-flight sends.
	MaxWorkers int
	// SendDelay is the pause each worker takes after a send, success or
	// not, before accepting its next task. It throttles outbound rate
	// for the mail provider, not CPU.
	SendDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxWorkers: 5,
		SendDelay:  500 * time.Millisecond,
	}
}

// Service fans one alert out to many recipients over a bounded worker
// pool and aggregates per-recipient outcomes.
type Service struct {
	mail    notify.MailTransport
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(mail notify.MailTransport, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		mail:    mail,
		metrics: m,
		logger:  logger,
	}
}

type task struct {
	recipient model.RecipientCandidate
	subject   string
	body      string
}

// Dispatch sends the rendered message to every recipient and blocks
// until the whole batch completes. Individual transport failures are
// recorded, never retried, and never abort the batch; there is no
// overall deadline and no cancellation of a started batch. The caller
// is responsible for capping the recipient list.
func (s *Service) Dispatch(ctx context.Context, recipients []model.RecipientCandidate, render RenderFunc, opts Options) model.AlertResult {
	if len(recipients) == 0 {
		return model.AlertResult{}
	}

	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultOptions().MaxWorkers
	}

	// A started batch always runs to completion: a request deadline or
	// client disconnect must not strand half the recipients unalerted.
	ctx = context.WithoutCancel(ctx)

	tasks := make([]task, 0, len(recipients))
	for _, r := range recipients {
		subject, body := render(r)
		tasks = append(tasks, task{recipient: r, subject: subject, body: body})
	}

	workers := opts.MaxWorkers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = model.AlertResult{
			Total:    len(tasks),
			Outcomes: make([]model.DispatchOutcome, 0, len(tasks)),
		}
	)

	start := time.Now()
	queue := make(chan task)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for t := range queue {
				outcome := s.send(ctx, t)

				mu.Lock()
				if outcome.OK {
					result.Sent++
				} else {
					result.Failed++
				}
				result.Outcomes = append(result.Outcomes, outcome)
				mu.Unlock()

				// Provider rate throttle, paid whether or not the send
				// succeeded.
				time.Sleep(opts.SendDelay)
			}
		}()
	}

	for _, t := range tasks {
		queue <- t
	}
	close(queue)
	wg.Wait()

	result.Duration = time.Since(start)

	if s.metrics != nil {
		s.metrics.DispatchBatches.Inc()
		s.metrics.DispatchDuration.Observe(result.Duration.Seconds())
		s.metrics.AlertsDispatched.WithLabelValues("sent").Add(float64(result.Sent))
		s.metrics.AlertsDispatched.WithLabelValues("failed").Add(float64(result.Failed))
	}

	s.logger.Info().
		Int("total", result.Total).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("alert dispatch complete")

	return result
}

func (s *Service) send(ctx context.Context, t task) model.DispatchOutcome {
	outcome := model.DispatchOutcome{
		RecipientID: t.recipient.ID,
		Name:        t.recipient.Name,
		Address:     t.recipient.Email,
	}

	if err := s.mail.Send(ctx, t.recipient.Email, t.subject, t.body); err != nil {
		s.logger.Warn().Err(err).Str("recipient", t.recipient.Email).Msg("alert send failed")
		outcome.Error = err.Error()
		return outcome
	}

	outcome.OK = true
	return outcome
}
