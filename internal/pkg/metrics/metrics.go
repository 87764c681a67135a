// Package metrics defines and registers the custom Prometheus metrics of the
// CMS API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cms"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts identity operations.
// Labels:
//   - event: "register", "login", "refresh", "logout" or "change_password"
//   - result: "success" or "failure"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication operations, by event and result.",
	},
	[]string{"event", "result"},
)

// AuthorizationDeniedTotal counts requests refused by the access policy.
// Label:
//   - action: the denied action (e.g. "post:delete")
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of actions denied by the authorization policy.",
	},
	[]string{"action"},
)

// RateLimitedTotal counts requests rejected by the API rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// ContentOperationsTotal counts successful writes to content resources.
// Labels:
//   - resource: "post", "page", "category", "comment", "media" or "user"
//   - action: "create", "update" or "delete"
var ContentOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_operations_total",
		Help:      "Total number of successful content writes, by resource and action.",
	},
	[]string{"resource", "action"},
)

// MediaUploadedBytes observes the size of accepted uploads.
// Label:
//   - type: the media type ("image", "video", "audio", "document")
var MediaUploadedBytes = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "media_uploaded_bytes",
		Help:      "Size of accepted uploads in bytes.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
	},
	[]string{"type"},
)

// ── Search index metrics ──────────────────────────────────────────────────────

// IndexJobsTotal counts processed search index jobs.
// Labels:
//   - op: "upsert" or "delete"
//   - result: "success", "error" or "dropped"
var IndexJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "index_jobs_total",
		Help:      "Total number of search index jobs, by operation and result.",
	},
	[]string{"op", "result"},
)

// IndexQueueDepth tracks the number of jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var IndexQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "index_queue_depth",
		Help:      "Current number of index jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// IndexJobDuration measures how long one index job takes.
// Label:
//   - op: "upsert" or "delete"
var IndexJobDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "index_job_duration_seconds",
		Help:      "Duration of a search index job from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)
