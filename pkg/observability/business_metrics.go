package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Balance and aggregation metrics
	balanceQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_queries_total",
			Help: "Total number of seller balance computations",
		},
		[]string{"outcome"},
	)

	commissionStatsQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commission_stats_queries_total",
			Help: "Total number of commission stat aggregations",
		},
		[]string{"period", "outcome"},
	)

	// Payout workflow metrics
	payoutRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_requests_total",
			Help: "Total number of payment request transitions",
		},
		[]string{"transition", "outcome"},
	)

	// Document proxy metrics
	documentFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_fetches_total",
			Help: "Total number of document proxy fetches",
		},
		[]string{"grant", "outcome"},
	)

	invariantViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commission_invariant_violations_total",
			Help: "Detected withdrawn+reserved > amount violations; should stay at zero",
		},
	)
)

// RecordBalanceQuery records the outcome of a balance computation
func RecordBalanceQuery(outcome string) {
	balanceQueriesTotal.WithLabelValues(outcome).Inc()
}

// RecordCommissionStatsQuery records the outcome of a stats aggregation
func RecordCommissionStatsQuery(period, outcome string) {
	commissionStatsQueriesTotal.WithLabelValues(period, outcome).Inc()
}

// RecordPayoutTransition records a payment request transition attempt
func RecordPayoutTransition(transition, outcome string) {
	payoutRequestsTotal.WithLabelValues(transition, outcome).Inc()
}

// RecordDocumentFetch records a document proxy fetch by grant type
func RecordDocumentFetch(grant, outcome string) {
	documentFetchesTotal.WithLabelValues(grant, outcome).Inc()
}

// RecordInvariantViolation counts a detected commission invariant violation
func RecordInvariantViolation() {
	invariantViolationsTotal.Inc()
}
