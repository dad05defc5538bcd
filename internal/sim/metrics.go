package sim

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics are the simulation's Prometheus instruments.
type Metrics struct {
	ticks       prometheus.Counter
	frames      prometheus.Counter
	stalls      prometheus.Counter
	activations *prometheus.CounterVec
	thinkers    prometheus.Gauge
	machines    prometheus.Gauge
}

// NewMetrics creates the instruments and registers them on reg. Tests pass a
// fresh prometheus.NewRegistry(); the host passes the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "levelsim",
			Name:      "ticks_total",
			Help:      "Logical ticks executed.",
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "levelsim",
			Name:      "frames_total",
			Help:      "Host frames delivered to the tick loop.",
		}),
		stalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "levelsim",
			Name:      "stall_resets_total",
			Help:      "Times the accumulator was dropped after a host stall.",
		}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "levelsim",
			Name:      "activations_total",
			Help:      "Line special activation attempts by class and result.",
		}, []string{"class", "result"}),
		thinkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "levelsim",
			Name:      "thinkers",
			Help:      "Registered thinkers.",
		}),
		machines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "levelsim",
			Name:      "sector_machines",
			Help:      "Running door and platform machines.",
		}),
	}
	reg.MustRegister(m.ticks, m.frames, m.stalls, m.activations, m.thinkers, m.machines)
	return m
}

// Activation counts one line special attempt.
func (m *Metrics) Activation(class string, accepted bool) {
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.activations.WithLabelValues(class, result).Inc()
}

// Population records the current thinker and machine counts.
func (m *Metrics) Population(thinkers, machines int) {
	m.thinkers.Set(float64(thinkers))
	m.machines.Set(float64(machines))
}

// ServeMetrics exposes g on addr under /metrics. It does not block; a failing
// listener is logged and the simulation keeps running.
func ServeMetrics(addr string, g prometheus.Gatherer, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics listener stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}
