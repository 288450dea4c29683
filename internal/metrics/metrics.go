// Package metrics counts conversions on a private Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/graph-to-compose/composer/internal/result"
)

// Conversion directions.
const (
	DirectionAssemble   = "assemble"
	DirectionSynthesize = "synthesize"
	DirectionTerraform  = "terraform"
)

// Conversion outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeWarnings = "warnings"
	OutcomeError    = "error"
)

// Recorder holds the conversion metrics.
type Recorder struct {
	Registry *prometheus.Registry

	conversions *prometheus.CounterVec
	entities    *prometheus.CounterVec
	warnings    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New returns a Recorder with its metrics registered on a new registry.
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "composer_conversions_total",
				Help: "Number of conversions by direction and outcome.",
			},
			[]string{"direction", "outcome"},
		),
		entities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "composer_entities_total",
				Help: "Number of document entities produced or consumed, by section.",
			},
			[]string{"section"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "composer_warnings_total",
				Help: "Number of conversion warnings by type.",
			},
			[]string{"type"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "composer_conversion_duration_seconds",
				Help:    "Time taken by a conversion.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),
	}
	r.Registry.MustRegister(r.conversions, r.entities, r.warnings, r.duration)
	return r
}

// Observe records one conversion. counts is the per-section entity count of the
// document involved (nil when the conversion failed before one existed).
func (r *Recorder) Observe(direction string, started time.Time, counts map[string]int, warns []result.Warning, err error) {
	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
	case len(warns) > 0:
		outcome = OutcomeWarnings
	}
	r.conversions.WithLabelValues(direction, outcome).Inc()
	r.duration.WithLabelValues(direction).Observe(time.Since(started).Seconds())
	for section, n := range counts {
		r.entities.WithLabelValues(section).Add(float64(n))
	}
	for typ, n := range result.CountByType(warns) {
		r.warnings.WithLabelValues(typ).Add(float64(n))
	}
}

// WriteTextfile writes the metrics in the text exposition format, for the node
// exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
