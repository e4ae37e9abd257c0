package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	JobsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_jobs_published_total",
			Help: "Number of write jobs published to the queue",
		},
		[]string{"type"},
	)
	JobsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_jobs_consumed_total",
			Help: "Number of messages fetched from the queue",
		},
		[]string{"topic"},
	)
	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_jobs_processed_total",
			Help: "Number of jobs applied to the store",
		},
		[]string{"type"},
	)
	JobsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_jobs_failed_total",
			Help: "Number of jobs that failed processing",
		},
		[]string{"topic"},
	)
	JobsDeadLettered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_jobs_dead_lettered_total",
			Help: "Number of poison messages routed to the DLQ topic",
		},
		[]string{"topic"},
	)
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|overlay_hit|write|invalidate|error
	)
	ListVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "order_list_cache_version",
			Help: "Current list cache version counter",
		},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		JobsPublished, JobsConsumed, JobsProcessed, JobsFailed, JobsDeadLettered,
		CacheOps, ListVersion,
	)
}
