package permission

import "github.com/prometheus/client_golang/prometheus"

const outcomeNoCountry = "no_country"

// Metrics counts ads permission checks by outcome.
type Metrics struct {
	decisions *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg unless reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "events7",
			Subsystem: "permission",
			Name:      "ads_checks_total",
			Help:      "Ads permission checks by outcome (granted, denied, indeterminate, no_country).",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.decisions)
	}
	return m
}

func (m *Metrics) observe(outcome string) {
	m.decisions.WithLabelValues(outcome).Inc()
}
