package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, reportMissingFieldsTotal) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_processed_total",
		Help: "Total number of estimation jobs, labeled by prompt version and outcome.",
	},
	[]string{"prompt_version", "outcome"}, // 'success' or an error kind
)

var reportMissingFieldsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "report_missing_fields_total",
		Help: "Expected report fields the model left out, per prompt version.",
	},
	[]string{"prompt_version", "field"},
)

func IncJob(promptVersion, outcome string) {
	jobsProcessedTotal.WithLabelValues(norm(promptVersion), norm(outcome)).Inc()
}

func IncMissingField(promptVersion, field string) {
	reportMissingFieldsTotal.WithLabelValues(norm(promptVersion), field).Inc()
}
