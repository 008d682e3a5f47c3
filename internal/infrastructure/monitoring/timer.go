package monitoring

import "time"

// Timer measures the unit of work
type Timer struct {
	metrics *Metrics
	start   time.Time
}

// NewTimer starts a work timer
func NewTimer(metrics *Metrics) *Timer {
	return &Timer{
		metrics: metrics,
		start:   time.Now(),
	}
}

// Stop records the elapsed time under outcome and returns it
func (t *Timer) Stop(outcome string) time.Duration {
	elapsed := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.WorkDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
	return elapsed
}
