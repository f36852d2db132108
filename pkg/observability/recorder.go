package observability

import (
	"time"

	"github.com/cactus/go-statsd-client/v5/statsd"

	"github.com/piarcha/piarka/pkg/auth"
)

// Recorder fans one guard outcome out to every configured sink. It
// implements auth.Recorder: each call counts the total plus exactly one
// outcome category. Statsd send errors are discarded so counter emission
// can never fail or slow a request.
type Recorder struct {
	statsd statsd.Statter // nil disables the statsd sink
}

// Ensure Recorder implements auth.Recorder at compile time.
var _ auth.Recorder = (*Recorder)(nil)

// NewRecorder creates a recorder. A nil statter leaves only the Prometheus
// sink active.
func NewRecorder(st statsd.Statter) *Recorder {
	return &Recorder{statsd: st}
}

// Record counts one guard invocation and observes its pipeline duration.
func (r *Recorder) Record(o auth.Outcome, elapsed time.Duration) {
	AuthRequestsTotal.WithLabelValues(string(o)).Inc()
	AuthDuration.WithLabelValues(string(o)).Observe(elapsed.Seconds())

	if r.statsd != nil {
		_ = r.statsd.Inc("requests.total", 1, 1.0)
		_ = r.statsd.Inc("requests."+string(o), 1, 1.0)
	}
}
