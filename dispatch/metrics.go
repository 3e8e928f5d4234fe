package dispatch

import (
	"entity-rpc/entity"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK        = "ok"
	outcomeFailed    = "failed"
	outcomeUnmatched = "unmatched"
	outcomeRejected  = "rejected"
)

// Metrics counts dispatch outcomes and decode failures. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Dispatched     *prometheus.CounterVec
	DecodeFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "entity_rpc",
			Name:      "dispatch_total",
			Help:      "Requests dispatched to the store, by method and outcome",
		}, []string{"family", "method", "outcome"}),
		DecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "entity_rpc",
			Name:      "decode_failures_total",
			Help:      "Inbound request payloads that could not be decoded",
		}, []string{"codec"}),
	}
	if reg != nil {
		reg.MustRegister(m.Dispatched, m.DecodeFailures)
	}
	return m
}

// DecodeFailed records a request that was dropped before dispatch.
func (m *Metrics) DecodeFailed(codecName string) {
	if m == nil {
		return
	}
	m.DecodeFailures.WithLabelValues(codecName).Inc()
}

func (m *Metrics) observe(req *entity.RequestSchema, outcome string) {
	if m == nil {
		return
	}
	family, method := "", ""
	if req != nil && req.Method != nil {
		family, method = string(req.Method.Family()), req.Method.String()
	}
	m.Dispatched.WithLabelValues(family, method, outcome).Inc()
}
