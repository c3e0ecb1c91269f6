package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchaseSyncs counts orchestrator outcomes (synced, skipped, failed).
	PurchaseSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_sync_total",
		Help: "Purchase sync attempts by outcome.",
	}, []string{"outcome"})

	MailchimpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailchimp_requests_total",
		Help: "Mailchimp API requests by endpoint and transport result.",
	}, []string{"endpoint", "result"})

	ResyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resync_runs_total",
		Help: "Bulk resync runs by mode.",
	}, []string{"mode"})
)
