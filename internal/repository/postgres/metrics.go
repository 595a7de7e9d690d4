package postgres

import (
	"time"

	"github.com/bloodbridge/backend/pkg/metrics"
)

// observe records one repository call. Call it deferred with the start
// time; the error pointer is read after the method body has run.
func observe(m *metrics.Metrics, op string, start time.Time, err *error) {
	if m == nil {
		return
	}
	status := "ok"
	if *err != nil {
		status = "error"
	}
	m.DatabaseOperations.WithLabelValues(op, status).Inc()
	m.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
