package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)

	SharesReaped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "harbor_shares_reaped_total", Help: "Expired shares deleted by the reaper"},
	)
	ExpiryNotices = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "harbor_expiry_notices_total", Help: "Expiry notices handed to the delivery queue"},
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "harbor_realtime_events_total", Help: "Realtime events published to the harbor channel"},
		[]string{"event"},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		RequestsTotal, ReqDuration, InFlight,
		SharesReaped, ExpiryNotices, EventsPublished,
	)
}
