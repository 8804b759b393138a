package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type RPCMetrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestLatencyMS  *prometheus.HistogramVec
	InFlight          prometheus.Gauge
	BackendLockWaitMS *prometheus.HistogramVec
}

var (
	rpcOnce sync.Once
	rpcm    *RPCMetrics
)

func RPC() *RPCMetrics {
	rpcOnce.Do(func() {
		r := Registerer()
		rpcm = &RPCMetrics{
			RequestsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{
					Name: "rpc_requests_total",
					Help: "json-rpc requests handled by method and outcome",
				},
				[]string{"method", "outcome"},
			),
			RequestLatencyMS: promauto.With(r).NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "rpc_request_latency_ms",
					Help:    "json-rpc request latency including decode, backend call and encode (ms)",
					Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
				},
				[]string{"method"},
			),
			InFlight: promauto.With(r).NewGauge(prometheus.GaugeOpts{
				Name: "rpc_in_flight",
				Help: "json-rpc requests currently being dispatched",
			}),
			BackendLockWaitMS: promauto.With(r).NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "rpc_backend_lock_wait_ms",
					Help:    "time spent waiting for the light client read lock (ms)",
					Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
				},
				[]string{"backend"},
			),
		}
	})
	return rpcm
}
