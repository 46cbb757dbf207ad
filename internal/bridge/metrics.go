package bridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the bridge's counters on a Prometheus registry of
// its own, so tests and multiple bridges never fight over the default
// one.
type Metrics struct {
	registry *prometheus.Registry

	Frames *prometheus.CounterVec
	Bytes  *prometheus.CounterVec
	Faults *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sframe",
			Subsystem: "bridge",
			Name:      "frames_total",
			Help:      "Frames forwarded per direction.",
		}, []string{"direction"}),
		Bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sframe",
			Subsystem: "bridge",
			Name:      "bytes_total",
			Help:      "Frame bytes forwarded per direction.",
		}, []string{"direction"}),
		Faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sframe",
			Subsystem: "bridge",
			Name:      "faults_total",
			Help:      "Transport failures per direction.",
		}, []string{"direction"}),
	}
	m.registry.MustRegister(m.Frames, m.Bytes, m.Faults)
	return m
}

// Serve runs the metrics HTTP listener until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}),
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
