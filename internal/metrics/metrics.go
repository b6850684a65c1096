// Package metrics exposes Prometheus metrics for the attendance bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the custom prometheus registry for the bot.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Surface labels.
const (
	SurfaceDetailed = "detailed"
	SurfaceCompact  = "compact"
)

// OverrideUpsertsTotal counts override writes by editor and outcome.
var OverrideUpsertsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "attendance",
	Name:      "override_upserts_total",
	Help:      "Attendance override upserts by editor surface and outcome",
}, []string{"surface", "outcome"})

// BulkSaveRows tracks how many rows a detailed save wrote before finishing or stopping.
var BulkSaveRows = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "attendance",
	Name:      "bulk_save_rows",
	Help:      "Rows written per detailed editor save",
	Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
})

// BulkSavesPartialTotal counts detailed saves that stopped midway.
var BulkSavesPartialTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "attendance",
	Name:      "bulk_saves_partial_total",
	Help:      "Detailed editor saves that stopped after a failed row",
})

// ToggleRevertsTotal counts compact grid toggles rolled back after a failed write.
var ToggleRevertsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "attendance",
	Name:      "toggle_reverts_total",
	Help:      "Compact grid toggles reverted after a failed write",
})

// SessionRolloversTotal counts detailed saves where the active holiday moved after load.
var SessionRolloversTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "attendance",
	Name:      "session_rollovers_total",
	Help:      "Detailed editor saves issued after the active holiday rolled over",
})

// ActiveHolidayTimestamp is the date of the last resolved holiday per strategy, as unix seconds.
var ActiveHolidayTimestamp = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "holiday",
	Name:      "active_date_timestamp_seconds",
	Help:      "Date of the holiday most recently resolved for editing",
}, []string{"strategy"})

// StoreDurationSeconds tracks round trips to the override table.
var StoreDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "store",
	Name:      "duration_seconds",
	Help:      "Time spent in attendance override store operations",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
}, []string{"operation"})

// ReportRows tracks rows returned per report query.
var ReportRows = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "report",
	Name:      "rows",
	Help:      "Rows returned per attendance report query",
	Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000},
})

// Handler serves the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
