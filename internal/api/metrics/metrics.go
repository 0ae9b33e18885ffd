// Package metrics defines and registers all custom Prometheus metrics for the
// drop-off location reporter and its HTTP endpoint. It is the single source of
// truth for metric names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dropoff"

// ── Endpoint metrics ──────────────────────────────────────────────────────────

// LocationsReceivedTotal counts positions handled by POST /api/location.
// Label:
//   - result: "stored" or "error"
var LocationsReceivedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "locations_received_total",
		Help:      "Total number of positions received by the location endpoint.",
	},
	[]string{"result"},
)

// LocationDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new position, stored)
var LocationDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Reporter metrics ──────────────────────────────────────────────────────────

// AcquisitionsTotal counts settled location requests.
// Label:
//   - result: "resolved", "permission_denied", "timeout", "unsupported" or "error"
var AcquisitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "acquisitions_total",
		Help:      "Total number of location requests, by outcome.",
	},
	[]string{"result"},
)

// SubmissionsTotal counts consumed armings.
// Label:
//   - result: "succeeded", "failed" or "abandoned" (acquisition failed while armed)
var SubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of location submissions, by outcome.",
	},
	[]string{"result"},
)

// SubmissionDuration measures one persistence write.
var SubmissionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submission_duration_seconds",
		Help:      "Duration of a single location write to the persistence backend.",
		Buckets:   prometheus.DefBuckets,
	},
)
