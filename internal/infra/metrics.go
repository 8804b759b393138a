package infra

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
)

var promRegistry *prometheus.Registry

// Build metadata, set with -ldflags at release time.
var (
	Version  = "dev"
	Revision = "unknown"
)

// InitMetrics registers the collectors on a dedicated registry and mounts
// GET /metrics. It must run before any component touches imetrics.
func InitMetrics(app *fiber.App) {
	if app == nil {
		return
	}
	if promRegistry == nil {
		promRegistry = prometheus.NewRegistry()
		promRegistry.MustRegister(collectors.NewGoCollector())
		promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		svc := viper.GetString("service.name")
		inst := viper.GetString("service.instance")
		bi := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "service_build_info",
			Help:        "build info",
			ConstLabels: prometheus.Labels{"service": svc, "instance": inst},
		}, []string{"version", "rev"})
		promRegistry.MustRegister(bi)
		bi.WithLabelValues(Version, Revision).Set(1)
		imetrics.UseRegisterer(promRegistry)
		_ = imetrics.App()
		_ = imetrics.RPC()
		_ = imetrics.Cache()
		_ = imetrics.Kafka()
		_ = imetrics.Process()
	}
	h := promhttp.InstrumentMetricHandler(promRegistry, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	app.Get("/metrics", adaptor.HTTPHandler(h))
}
