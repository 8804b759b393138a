package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type CacheMetrics struct {
	LookupsTotal *prometheus.CounterVec
	ErrorsTotal  *prometheus.CounterVec
}

var (
	cacheOnce sync.Once
	cache     *CacheMetrics
)

func Cache() *CacheMetrics {
	cacheOnce.Do(func() {
		r := Registerer()
		cache = &CacheMetrics{
			LookupsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{
					Name: "block_cache_lookups_total",
					Help: "block cache lookups by backend and result (hit/miss)",
				},
				[]string{"backend", "result"},
			),
			ErrorsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{
					Name: "block_cache_errors_total",
					Help: "block cache errors by backend and operation",
				},
				[]string{"backend", "op"},
			),
		}
	})
	return cache
}
