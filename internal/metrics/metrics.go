package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "http_requests_total",
			Help:      "Count of admin API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	relocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "relocations_total",
			Help:      "Count of relocation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	integrityWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "integrity_warnings_total",
			Help:      "Count of duplicate-slot anomalies found while indexing.",
		},
	)

	priceOverrides = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "price_overrides_total",
			Help:      "Count of dynamic price overrides upserted.",
		},
	)

	snapshotRebuilds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "snapshot_rebuilds_total",
			Help:      "Count of booking snapshot rebuilds from fresh fetches.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, relocations, integrityWarnings, priceOverrides, snapshotRebuilds)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncRelocation(outcome string) {
	relocations.WithLabelValues(outcome).Inc()
}

func IncIntegrityWarning() {
	integrityWarnings.Inc()
}

func IncPriceOverride() {
	priceOverrides.Inc()
}

func IncSnapshotRebuild() {
	snapshotRebuilds.Inc()
}
