package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vancomm/wfc-server/internal/wfc"
)

const namespace = "wfc"

// Metrics collects generation statistics. A nil *Metrics records nothing.
type Metrics struct {
	gatherer       prometheus.Gatherer
	generations    *prometheus.CounterVec
	collapses      prometheus.Counter
	contradictions prometheus.Counter
	backtracks     prometheus.Counter
	duration       *prometheus.HistogramVec
	catalogs       prometheus.Counter
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Finished generations by final state.",
			},
			[]string{"state"},
		),
		collapses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collapses_total",
			Help:      "Cells collapsed over all generations.",
		}),
		contradictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contradictions_total",
			Help:      "Contradictions met over all generations.",
		}),
		backtracks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backtracks_total",
			Help:      "Snapshot rollbacks over all generations.",
		}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time spent in a single generation.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
			},
			[]string{"state"},
		),
		catalogs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalogs_extracted_total",
			Help:      "Pattern catalogs extracted from uploaded samples.",
		}),
	}

	reg.MustRegister(
		m.generations,
		m.collapses,
		m.contradictions,
		m.backtracks,
		m.duration,
		m.catalogs,
	)

	return m
}

func (m *Metrics) ObserveResult(res wfc.Result) {
	if m == nil {
		return
	}
	state := res.State.String()
	m.generations.WithLabelValues(state).Inc()
	m.collapses.Add(float64(res.Collapses))
	m.contradictions.Add(float64(res.Contradictions))
	m.backtracks.Add(float64(res.Backtracks))
	m.duration.WithLabelValues(state).Observe(res.Elapsed.Seconds())
}

func (m *Metrics) CatalogExtracted() {
	if m == nil {
		return
	}
	m.catalogs.Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
