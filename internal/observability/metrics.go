// Package observability holds the Prometheus generation metrics and the
// OpenTelemetry tracer setup.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/planetgen/internal/builder"
	"github.com/talgya/planetgen/internal/system"
)

// GenCollector bundles the generation metrics.
type GenCollector struct {
	gatherer prometheus.Gatherer

	SystemsGenerated   prometheus.Counter
	BodiesGenerated    *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	DeadEnds           prometheus.Counter
	SystemsLive        prometheus.Gauge
}

// NewGenCollector registers the metrics against reg, defaulting to the
// global registry when nil. Registering twice returns the existing metrics.
func NewGenCollector(reg prometheus.Registerer) (*GenCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	systems, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planetgen_systems_generated_total",
		Help: "Total number of planetary systems generated.",
	}), "planetgen_systems_generated_total")
	if err != nil {
		return nil, err
	}
	bodies, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planetgen_bodies_generated_total",
		Help: "Total number of bodies generated, labeled by kind.",
	}, []string{"kind"}), "planetgen_bodies_generated_total")
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planetgen_generation_seconds",
		Help:    "Time to generate one planetary system.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	}), "planetgen_generation_seconds")
	if err != nil {
		return nil, err
	}
	deadEnds, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planetgen_dead_ends_total",
		Help: "Bodies that formed but fit no kind, or could not be placed.",
	}), "planetgen_dead_ends_total")
	if err != nil {
		return nil, err
	}
	live, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planetgen_systems_live",
		Help: "Systems currently held by the animation engine.",
	}), "planetgen_systems_live")
	if err != nil {
		return nil, err
	}

	return &GenCollector{
		gatherer:           gatherer,
		SystemsGenerated:   systems,
		BodiesGenerated:    bodies,
		GenerationDuration: duration,
		DeadEnds:           deadEnds,
		SystemsLive:        live,
	}, nil
}

// Observe records one generation run.
func (c *GenCollector) Observe(sys *system.System, stats builder.Stats, dur time.Duration) {
	if c == nil {
		return
	}
	c.SystemsGenerated.Inc()
	c.GenerationDuration.Observe(dur.Seconds())
	c.DeadEnds.Add(float64(stats.DeadEnds))
	for _, b := range sys.Bodies() {
		c.BodiesGenerated.WithLabelValues(b.Kind.String()).Inc()
	}
}

// SetLive sets the number of animated systems.
func (c *GenCollector) SetLive(n int) {
	if c == nil {
		return
	}
	c.SystemsLive.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *GenCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
