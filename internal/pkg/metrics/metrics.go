// Package metrics defines and registers all custom Prometheus metrics for the
// inspection API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is imported; HTTP request metrics come from the
// echoprometheus middleware wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inspection"

// ── Sync metrics ──────────────────────────────────────────────────────────────

// SyncOperationsProcessedTotal counts offline operations by final outcome.
// Labels:
//   - entity: "inspection" or "property"
//   - result: "completed", "failed", "retried"
var SyncOperationsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_operations_processed_total",
		Help:      "Total number of offline sync operations processed, by entity and result.",
	},
	[]string{"entity", "result"},
)

// SyncDuplicatesTotal counts operations skipped because the device already
// submitted them.
var SyncDuplicatesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_duplicates_total",
		Help:      "Total number of duplicate sync operations skipped.",
	},
)

// SyncQueueDepth tracks the current number of operations waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SyncQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sync_queue_depth",
		Help:      "Current number of sync operations pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// SyncProcessingDuration measures how long one operation takes to apply.
// Label:
//   - result: "completed" or "error"
var SyncProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_processing_duration_seconds",
		Help:      "Duration of sync operation processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Resource metrics ──────────────────────────────────────────────────────────

// InspectionsCreatedTotal counts newly scheduled inspections.
// Label:
//   - type: "entry", "exit", "periodic", "maintenance"
var InspectionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inspections_created_total",
		Help:      "Total number of inspections created, by inspection type.",
	},
	[]string{"type"},
)

// UploadsTotal counts stored files.
// Label:
//   - result: "stored" or "rejected"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of uploaded files, by result.",
	},
	[]string{"result"},
)

// UploadCleanupFailuresTotal counts orphaned objects whose compensating delete
// gave up.
var UploadCleanupFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_cleanup_failures_total",
		Help:      "Total number of stored objects left orphaned after a failed metadata write.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected credentials and tokens.
// Label:
//   - reason: error code (e.g. "TOKEN_INVALID", "SESSION_EXPIRED")
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of authentication failures, by reason.",
	},
	[]string{"reason"},
)
