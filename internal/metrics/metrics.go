// Package metrics exposes the engine's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Settlements counts settlement attempts by strategy and outcome.
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_settlements_total",
		Help: "Settlement attempts by strategy (single_merchant, multi_merchant) and outcome.",
	}, []string{"strategy", "outcome"})

	// GatewayCalls counts payment gateway calls by operation and outcome.
	GatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_gateway_calls_total",
		Help: "Payment gateway calls by operation (charge, transfer, customer, account) and outcome.",
	}, []string{"call", "outcome"})
)

// Outcome converts an error into the label used on the outcome dimension.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
