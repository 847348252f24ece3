package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	orderSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_submissions_total",
			Help: "Order submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

// Mutation outcomes.
const (
	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)
