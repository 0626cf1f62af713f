package csp

import "github.com/prometheus/client_golang/prometheus"

// Metrics — счётчики сборки политики. Нулевой *Metrics ничего не считает.
type Metrics struct {
	Warnings *prometheus.CounterVec
	Builds   *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует счётчики в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csp_warnings_total",
			Help: "Warnings emitted while building Content-Security-Policy values.",
		}, []string{"kind"}),
		Builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csp_policies_built_total",
			Help: "Content-Security-Policy values built, by build mode.",
		}, []string{"mode"}),
	}
	if reg != nil {
		reg.MustRegister(m.Warnings, m.Builds)
	}
	return m
}

func (m *Metrics) warn(kind WarningKind) {
	if m == nil {
		return
	}
	m.Warnings.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) built(mode BuildMode) {
	if m == nil {
		return
	}
	m.Builds.WithLabelValues(mode.String()).Inc()
}
