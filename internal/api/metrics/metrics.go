// Package metrics defines and registers all custom Prometheus metrics for
// the catalog API. It is the single source of truth for metric names, labels,
// and help strings. Registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cineapp"

// RegistrationsTotal counts created accounts, labelled by assigned role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered accounts, by assigned role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// PasswordResetsTotal counts password-reset flow milestones.
// Label:
//   - stage: "requested" or "completed"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset requests and completions.",
	},
	[]string{"stage"},
)

// CatalogQueriesTotal counts catalog list queries.
// Label:
//   - scope: "public", "profile", "search", "dashboard", or "report"
var CatalogQueriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_queries_total",
		Help:      "Total number of catalog queries, by scope.",
	},
	[]string{"scope"},
)

// WatchlistTogglesTotal counts watchlist toggles.
// Label:
//   - action: "added" or "removed"
var WatchlistTogglesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watchlist_toggles_total",
		Help:      "Total number of watchlist toggles, by resulting action.",
	},
	[]string{"action"},
)

// ImportsTotal counts external import requests.
// Label:
//   - mode: "single" (persisted) or "preview" (search results only)
var ImportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imports_total",
		Help:      "Total number of external catalog imports, by mode.",
	},
	[]string{"mode"},
)

// MailQueueDepth tracks pending messages per mail-dispatcher worker.
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each mail dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
