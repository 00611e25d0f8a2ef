package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - счётчики снимков и исходов генерации подсказок.
type Metrics struct {
	reg      *prometheus.Registry
	captures *prometheus.CounterVec
	hints    *prometheus.CounterVec
	sessions prometheus.GaugeFunc
}

// New registers collectors on a private registry. sessions may be nil.
func New(sessions func() float64) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "code_mentor",
			Name:      "captures_total",
			Help:      "Capture attempts by result (added, skipped).",
		}, []string{"result"}),
		hints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "code_mentor",
			Name:      "hint_requests_total",
			Help:      "Hint generations by outcome.",
		}, []string{"outcome"}),
	}
	m.reg.MustRegister(m.captures, m.hints)
	if sessions != nil {
		m.sessions = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "code_mentor",
			Name:      "capture_sessions",
			Help:      "Live capture sessions.",
		}, sessions)
		m.reg.MustRegister(m.sessions)
	}
	return m
}

func (m *Metrics) CaptureRecorded(added bool) {
	result := "skipped"
	if added {
		result = "added"
	}
	m.captures.WithLabelValues(result).Inc()
}

func (m *Metrics) HintOutcome(outcome string) {
	m.hints.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
