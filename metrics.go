// Prometheus metrics for pool occupancy and partition sizing. Observability
// only: no testable property in the engine's contract depends on these, and
// Run is fully correct for a caller that never scrapes them.
package mapreduce

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	partitionBytesGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mapreduce_partition_bytes",
		Help: "Current byte accumulator of a partition in the active run.",
	}, []string{"run_id", "partition"})

	queueDepthGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mapreduce_queue_depth",
		Help: "Number of queued, not-yet-dequeued jobs in a pool.",
	}, []string{"run_id"})

	activeWorkersGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mapreduce_active_workers",
		Help: "Number of workers currently executing a job in a pool.",
	}, []string{"run_id"})

	jobsSubmittedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapreduce_jobs_submitted_total",
		Help: "Total number of jobs submitted to a pool.",
	}, []string{"run_id"})

	jobsCompletedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapreduce_jobs_completed_total",
		Help: "Total number of jobs a pool finished executing.",
	}, []string{"run_id"})

	jobsPanickedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapreduce_jobs_panicked_total",
		Help: "Total number of jobs whose function panicked and was recovered.",
	}, []string{"run_id"})
)

func init() {
	prometheus.MustRegister(
		partitionBytesGauge,
		queueDepthGauge,
		activeWorkersGauge,
		jobsSubmittedCounter,
		jobsCompletedCounter,
		jobsPanickedCounter,
	)
}

// unregisterRunMetrics drops the per-run label series once a run tears its
// pool down, so long-lived processes that call Run repeatedly don't leak
// label cardinality.
func unregisterRunMetrics(runID string, numPartitions uint32) {
	queueDepthGauge.DeleteLabelValues(runID)
	activeWorkersGauge.DeleteLabelValues(runID)
	jobsSubmittedCounter.DeleteLabelValues(runID)
	jobsCompletedCounter.DeleteLabelValues(runID)
	jobsPanickedCounter.DeleteLabelValues(runID)
	for i := uint32(0); i < numPartitions; i++ {
		partitionBytesGauge.DeleteLabelValues(runID, strconv.FormatUint(uint64(i), 10))
	}
}
