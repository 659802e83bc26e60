package infra

import (
	"context"

	"pos-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe decisões como contador com labels policy/decision.
//
// Chave e path ficam de fora dos labels para não explodir cardinalidade.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

// NewPrometheusStatsStore cria e registra o contador em reg.
// Se reg for nil usa prometheus.DefaultRegisterer.
func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "admission",
			Name:      "decisions_total",
			Help:      "Rate limit admission decisions by policy and outcome",
		},
		[]string{"policy", "decision"},
	)
	if err := reg.Register(decisions); err != nil {
		return nil, err
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	policy := ev.Policy
	if policy == "" {
		policy = "default"
	}
	s.decisions.WithLabelValues(policy, ev.Decision()).Inc()
	return nil
}
