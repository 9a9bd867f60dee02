package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bgricker/cite-runner/internal/result"
)

// Namespace prefixes every metric name.
const Namespace = "cite_runner"

// Recorder collects the outcome of one CLI invocation into its own registry,
// so nothing leaks between runs or tests.
type Recorder struct {
	registry *prometheus.Registry

	suitePassed     *prometheus.GaugeVec
	tests           *prometheus.GaugeVec
	readinessProbes *prometheus.CounterVec
	duration        *prometheus.GaugeVec
}

// NewRecorder registers the cite-runner metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		suitePassed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "suite_passed",
			Help:      "1 when the suite verdict is PASSED, 0 otherwise",
		}, []string{"suite", "source"}),
		tests: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "tests",
			Help:      "Number of test leaves per status",
		}, []string{"suite", "source", "status"}),
		readinessProbes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "readiness_probes_total",
			Help:      "Count of TeamEngine readiness probes",
		}, []string{"outcome"}),
		duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "execution_duration_seconds",
			Help:      "Wall time of the suite execution request",
		}, []string{"suite"}),
	}
}

// RecordProbe counts one readiness probe.
func (r *Recorder) RecordProbe(ready bool) {
	outcome := "not_ready"
	if ready {
		outcome = "ready"
	}
	r.readinessProbes.WithLabelValues(outcome).Inc()
}

// RecordExecution stores how long the engine took to run suite.
func (r *Recorder) RecordExecution(suite string, elapsed time.Duration) {
	r.duration.WithLabelValues(suite).Set(elapsed.Seconds())
}

// RecordResult stores the verdict and per-status leaf counts of res. source
// names where the result came from (a file path or an engine URL), so two
// documents for the same suite keep separate series.
func (r *Recorder) RecordResult(source string, res result.TestSuiteResult) {
	suite := res.Suite.Name
	passed := 0.0
	if res.Passed() {
		passed = 1
	}
	r.suitePassed.WithLabelValues(suite, source).Set(passed)

	r.tests.WithLabelValues(suite, source, result.StatusPassed.String()).Set(float64(res.Summary.Passed))
	r.tests.WithLabelValues(suite, source, result.StatusFailed.String()).Set(float64(res.Summary.Failed))
	r.tests.WithLabelValues(suite, source, result.StatusSkipped.String()).Set(float64(res.Summary.Skipped))
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the collected metrics in the node exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %q: %w", path, err)
	}
	return nil
}
