package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chainmerge"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	merges           *prom.CounterVec
	mergeDuration    *prom.HistogramVec
	cacheLookups     *prom.CounterVec
	assemblyDuration prom.Histogram
	assembledChains  prom.Gauge
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		merges: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "merges_total",
			Help:      "Chain merges by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		mergeDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Duration of individual chain merges",
			Buckets:   prom.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"strategy"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_cache_lookups_total",
			Help:      "Placeholder cache lookups by result",
		}, []string{"result"}),
		assemblyDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "assembly_duration_seconds",
			Help:      "Duration of whole menu assemblies",
			Buckets:   prom.DefBuckets,
		}),
		assembledChains: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "assembled_chains",
			Help:      "Number of chains in the last assembled menu",
		}),
	}
	reg.MustRegister(pr.merges, pr.mergeDuration, pr.cacheLookups, pr.assemblyDuration, pr.assembledChains)
	return pr
}

func (p *PrometheusRecorder) IncMerge(strategy string, outcome Outcome) {
	if p == nil {
		return
	}
	p.merges.WithLabelValues(strategy, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveMergeDuration(strategy string, d time.Duration) {
	if p == nil {
		return
	}
	p.mergeDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPlaceholderCache(hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveAssembly(chains int, d time.Duration) {
	if p == nil {
		return
	}
	p.assembledChains.Set(float64(chains))
	p.assemblyDuration.Observe(d.Seconds())
}

// HTTPHandler serves the metrics registered with reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
