package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Archive Prometheus metrics.
var (
	RelatedRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lightarchive",
			Name:      "related_requests_total",
			Help:      "Related-content requests by scoring mode",
		},
		[]string{"mode"}, // "scored" / "fallback"
	)

	ViewIncrementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lightarchive",
			Name:      "view_increments_total",
			Help:      "View counter increments by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)

	SearchRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lightarchive",
			Name:      "search_requests_total",
			Help:      "Total keyword search requests",
		},
	)

	AttachmentBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lightarchive",
			Name:      "attachment_upload_bytes_total",
			Help:      "Total bytes of uploaded attachments",
		},
	)
)

var registerArchive sync.Once

// RegisterArchiveMetrics registers the archive metrics. Safe to call more than once.
func RegisterArchiveMetrics() {
	registerArchive.Do(func() {
		prometheus.MustRegister(
			RelatedRequestsTotal,
			ViewIncrementsTotal,
			SearchRequestsTotal,
			AttachmentBytesTotal,
		)
	})
}
