package planmetrics

import "github.com/prometheus/client_golang/prometheus"

// PrometheusRecorder exports execution summaries as Prometheus counters.
//
// Use Callback as the StatsCallback of an execution:
//
//	rec, _ := planmetrics.NewPrometheusRecorder(prometheus.DefaultRegisterer, "vecflow")
//	opts.StatsCallback = rec.Callback()
type PrometheusRecorder struct {
	runs             prometheus.Counter
	iops             prometheus.Counter
	requests         prometheus.Counter
	bytesRead        prometheus.Counter
	indicesLoaded    prometheus.Counter
	partsLoaded      prometheus.Counter
	indexComparisons prometheus.Counter
}

// NewPrometheusRecorder creates the counters under namespace and registers them with reg.
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      name,
			Help:      help,
		})
	}

	r := &PrometheusRecorder{
		runs:             counter("plan_runs_total", "Number of completed plan executions."),
		iops:             counter("iops_total", "I/O operations issued by executed plans."),
		requests:         counter("requests_total", "Storage requests issued by executed plans."),
		bytesRead:        counter("bytes_read_total", "Bytes read by executed plans."),
		indicesLoaded:    counter("indices_loaded_total", "Indices loaded by executed plans."),
		partsLoaded:      counter("parts_loaded_total", "Index parts loaded by executed plans."),
		indexComparisons: counter("index_comparisons_total", "Index comparisons performed by executed plans."),
	}

	for _, c := range []prometheus.Collector{
		r.runs, r.iops, r.requests, r.bytesRead, r.indicesLoaded, r.partsLoaded, r.indexComparisons,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Record adds one execution summary.
func (r *PrometheusRecorder) Record(counts *ExecutionSummaryCounts) {
	r.runs.Inc()
	r.iops.Add(float64(counts.IOPS))
	r.requests.Add(float64(counts.Requests))
	r.bytesRead.Add(float64(counts.BytesRead))
	r.indicesLoaded.Add(float64(counts.IndicesLoaded))
	r.partsLoaded.Add(float64(counts.PartsLoaded))
	r.indexComparisons.Add(float64(counts.IndexComparisons))
}

// Callback returns Record as a StatsCallback.
func (r *PrometheusRecorder) Callback() StatsCallback {
	return r.Record
}
