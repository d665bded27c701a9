// Package metrics defines the Prometheus metrics the shop exports. All
// metrics register with the default registry on package init and are
// served by promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shopfront"

// ── HTTP ─────────────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: the matched gin route template (e.g. "/products/:id"), "unmatched" otherwise
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Auth ─────────────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts signups and logins.
// Labels:
//   - action: "signup" or "login"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of signup and login attempts.",
	},
	[]string{"action", "result"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"prefix"},
)

// ── Cart & orders ────────────────────────────────────────────────────────────

// CartMutationsTotal counts cart writes.
// Label:
//   - op: "add", "remove" or "clear"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations.",
	},
	[]string{"op"},
)

// OrdersPlacedTotal counts persisted orders.
// Label:
//   - source: "request" for explicit item lists, "cart" for checkout
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed.",
	},
	[]string{"source"},
)

// OrderValueTotal sums the total price of placed orders.
var OrderValueTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_value_total",
		Help:      "Sum of total_price over all placed orders.",
	},
)

// ── Catalog ──────────────────────────────────────────────────────────────────

// CatalogProducts is the number of products, refreshed by the scheduler.
var CatalogProducts = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_products",
		Help:      "Current number of products in the catalog.",
	},
)

// CatalogLowStockProducts is the number of products at or below the low-stock level.
var CatalogLowStockProducts = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_low_stock_products",
		Help:      "Current number of products at or below the low-stock threshold.",
	},
)

// ImageUploadsTotal counts product image uploads by backend and result.
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of product image uploads.",
	},
	[]string{"backend", "result"},
)
