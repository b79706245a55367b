// Package telemetry exports live session state as Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/focusdrift/internal/session"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Collector is a session.Observer that mirrors the meters into gauges and
// counts ticks, clears and outcomes.
type Collector struct {
	namespace    string
	subsystem    string
	focusBuckets []float64
	constLabels  map[string]string
	registry     *prometheus.Registry

	running      prometheus.Gauge
	stress       prometheus.Gauge
	focus        prometheus.Gauge
	combo        prometheus.Gauge
	remaining    prometheus.Gauge
	distractions prometheus.Gauge
	locked       prometheus.Gauge
	ticks        prometheus.Counter
	cleared      prometheus.Counter
	sessions     *prometheus.CounterVec
	finalFocus   prometheus.Histogram

	lastCleared int
}

func New(opts ...Option) *Collector {
	c := &Collector{
		namespace:    "focusdrift",
		subsystem:    "session",
		focusBuckets: prometheus.LinearBuckets(10, 10, 10),
		constLabels:  map[string]string{},
		registry:     prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.initializeMetrics()
	return c
}

func (c *Collector) initializeMetrics() {
	auto := promauto.With(c.registry)
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace:   c.namespace,
			Subsystem:   c.subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: c.constLabels,
		})
	}

	c.running = gauge("running", "1 while a session is running")
	c.stress = gauge("stress", "Current stress meter (0-100)")
	c.focus = gauge("focus", "Current focus meter (0-100)")
	c.combo = gauge("combo", "Current combo count")
	c.remaining = gauge("remaining_seconds", "Seconds left on the session clock")
	c.distractions = gauge("distractions_live", "Distractions currently on screen")
	c.locked = gauge("locked", "1 while the tether is locked onto the target")

	c.ticks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   c.namespace,
		Subsystem:   c.subsystem,
		Name:        "ticks_total",
		Help:        "Frames simulated across all sessions",
		ConstLabels: c.constLabels,
	})
	c.cleared = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   c.namespace,
		Subsystem:   c.subsystem,
		Name:        "distractions_cleared_total",
		Help:        "Distractions cleared across all sessions",
		ConstLabels: c.constLabels,
	})
	c.sessions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.namespace,
		Subsystem:   c.subsystem,
		Name:        "ended_total",
		Help:        "Sessions ended, by status and reason",
		ConstLabels: c.constLabels,
	}, []string{"status", "reason"})
	c.finalFocus = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   c.namespace,
		Subsystem:   c.subsystem,
		Name:        "final_focus_percent",
		Help:        "Focus percentage at session end",
		Buckets:     c.focusBuckets,
		ConstLabels: c.constLabels,
	})
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) OnStart(s session.Snapshot) {
	c.lastCleared = 0
	c.running.Set(1)
	c.OnTick(s)
}

func (c *Collector) OnTick(s session.Snapshot) {
	c.stress.Set(s.Stress)
	c.focus.Set(s.Focus)
	c.combo.Set(float64(s.Combo))
	c.remaining.Set(max(s.Remaining, 0))
	c.distractions.Set(float64(len(s.Distractions)))
	c.locked.Set(boolToFloat(s.Locked))

	if s.Ticks > 0 {
		c.ticks.Inc()
	}
	if d := s.Cleared - c.lastCleared; d > 0 {
		c.cleared.Add(float64(d))
	}
	c.lastCleared = s.Cleared
}

func (c *Collector) OnEnd(sum session.Summary) {
	if d := sum.Cleared - c.lastCleared; d > 0 {
		c.cleared.Add(float64(d))
	}
	c.lastCleared = sum.Cleared
	c.running.Set(0)
	c.distractions.Set(0)
	c.sessions.WithLabelValues(string(sum.Status), string(sum.Reason)).Inc()
	c.finalFocus.Observe(float64(sum.FocusPercent))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting metrics server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "err", err)
		return err
	}
	log.Info("metrics server stopped")
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
