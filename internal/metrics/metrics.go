package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider records interview metrics. A nil *Provider is valid and records
// nothing, so components can take one unconditionally.
type Provider struct {
	events              *prometheus.CounterVec
	inputRejections     *prometheus.CounterVec
	collaboratorFailure *prometheus.CounterVec
	collaboratorLatency *prometheus.HistogramVec
	nameFallbacks       prometheus.Counter
	activeInterviews    prometheus.Gauge
}

func NewProvider(registry *prometheus.Registry) *Provider {
	if registry == nil {
		return nil
	}

	p := &Provider{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specifythat_events_total",
				Help: "Interview events by kind and whether they were applied",
			},
			[]string{"event", "applied"},
		),
		inputRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specifythat_input_rejections_total",
				Help: "Answers refused before reaching the interview, by reason",
			},
			[]string{"reason"},
		),
		collaboratorFailure: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specifythat_collaborator_failures_total",
				Help: "Failed calls to language services, by service",
			},
			[]string{"service"},
		),
		collaboratorLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specifythat_collaborator_duration_seconds",
				Help:    "Latency of language service calls",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"service"},
		),
		nameFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "specifythat_name_fallbacks_total",
			Help: "Deferred project names that fell back to the default name",
		}),
		activeInterviews: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "specifythat_active_interviews",
			Help: "Interviews currently held in memory",
		}),
	}

	registry.MustRegister(
		p.events,
		p.inputRejections,
		p.collaboratorFailure,
		p.collaboratorLatency,
		p.nameFallbacks,
		p.activeInterviews,
	)

	return p
}

func (p *Provider) Event(kind string, applied bool) {
	if p == nil {
		return
	}
	label := "false"
	if applied {
		label = "true"
	}
	p.events.WithLabelValues(kind, label).Inc()
}

func (p *Provider) InputRejected(reason string) {
	if p != nil {
		p.inputRejections.WithLabelValues(reason).Inc()
	}
}

// ObserveCall records one collaborator call and whether it failed.
func (p *Provider) ObserveCall(service string, started time.Time, err error) {
	if p == nil {
		return
	}
	p.collaboratorLatency.WithLabelValues(service).Observe(time.Since(started).Seconds())
	if err != nil {
		p.collaboratorFailure.WithLabelValues(service).Inc()
	}
}

func (p *Provider) NameFallback() {
	if p != nil {
		p.nameFallbacks.Inc()
	}
}

func (p *Provider) SetActiveInterviews(n int) {
	if p != nil {
		p.activeInterviews.Set(float64(n))
	}
}
