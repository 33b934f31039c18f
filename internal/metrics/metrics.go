package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg             *prometheus.Registry
	Searches        *prometheus.CounterVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	Degraded        *prometheus.CounterVec
	AdapterFailures *prometheus.CounterVec
	AdapterLatency  *prometheus.HistogramVec
	CartMutations   *prometheus.CounterVec
}

func New() *Registry {
	r := prometheus.NewRegistry()
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "companyhouse_searches_total"}, []string{"op"})
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "companyhouse_search_cache_hits_total"}, []string{"op"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "companyhouse_search_cache_misses_total"}, []string{"op"})
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "companyhouse_search_degraded_total"}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "companyhouse_adapter_failures_total"}, []string{"country", "op"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "companyhouse_adapter_latency_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"country", "op"})
	cart := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "companyhouse_cart_mutations_total"}, []string{"op"})

	r.MustRegister(searches, hits, misses, degraded, failures, latency, cart)
	return &Registry{
		reg:             r,
		Searches:        searches,
		CacheHits:       hits,
		CacheMisses:     misses,
		Degraded:        degraded,
		AdapterFailures: failures,
		AdapterLatency:  latency,
		CartMutations:   cart,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
