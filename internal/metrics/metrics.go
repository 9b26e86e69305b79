package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BridgeInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_requests_initiated_total",
			Help: "Total number of bridge requests initiated",
		},
		[]string{"token", "dest_chain"},
	)

	BridgeCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_requests_completed_total",
			Help: "Total number of bridge requests completed",
		},
		[]string{"token"},
	)

	BridgeCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_requests_cancelled_total",
			Help: "Total number of bridge requests cancelled after timeout",
		},
		[]string{"token"},
	)

	BridgeRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_requests_rejected_total",
			Help: "Total number of bridge requests rejected at validation",
		},
		[]string{"reason"},
	)

	PendingRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_requests_pending",
		Help: "Number of bridge requests currently awaiting settlement",
	})

	FeeQuoteBps = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_dynamic_fee_bps",
			Help: "Current committed dynamic fee per chain in basis points",
		},
		[]string{"chain_id"},
	)

	FeeAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_fee_adjustments_total",
			Help: "Total number of committed dynamic fee adjustments",
		},
		[]string{"chain_id"},
	)

	SignatureVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_signature_verifications_total",
			Help: "Total number of threshold signature verification attempts",
		},
		[]string{"result"},
	)

	SettlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_settlement_duration_seconds",
			Help:    "Duration of settlement operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
