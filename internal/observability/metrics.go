package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the upload-to-decks flow.
type Metrics struct {
	UploadsTotal       prometheus.Counter
	UploadFailures     prometheus.Counter
	DecksGenerated     prometheus.Counter
	GenerationDuration prometheus.Histogram
}

// NewMetrics creates and registers the service metrics with the given
// registerer; pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "acbgen",
			Name:      "uploads_total",
			Help:      "Total forecast spreadsheets received for processing.",
		}),
		UploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "acbgen",
			Name:      "upload_failures_total",
			Help:      "Total uploads that failed to produce a full archive.",
		}),
		DecksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "acbgen",
			Name:      "decks_generated_total",
			Help:      "Total per-district decks written.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "acbgen",
			Name:      "generation_duration_seconds",
			Help:      "Duration of a complete sheet-to-archive run.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	reg.MustRegister(m.UploadsTotal, m.UploadFailures, m.DecksGenerated, m.GenerationDuration)
	return m
}
