package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "internhub"

// Registry is the Prometheus registry served on /metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels; the value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// ReadinessStatus is 1 while the store answers pings and 0 otherwise.
var ReadinessStatus = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ready",
		Help:      "Whether the server can reach its store (1=ready, 0=not ready)",
	},
)

var initOnce sync.Once

// Init registers runtime collectors and records build information. Repeated
// calls only update AppInfo.
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
