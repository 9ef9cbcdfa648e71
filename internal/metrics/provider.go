package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "tfevents"

// Provider owns the meter provider and the Prometheus registry it exports to.
type Provider struct {
	provider *sdkmetric.MeterProvider
	registry *promclient.Registry
}

// Setup creates a meter provider backed by a Prometheus exporter on a
// private registry and installs it as the global provider.
func Setup() (*Provider, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return &Provider{provider: provider, registry: registry}, nil
}

// Meter returns the meter the Recorder should use.
func (p *Provider) Meter() metric.Meter {
	return p.provider.Meter(meterName)
}

// Handler serves the registry on /metrics.
func (p *Provider) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	return mux
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

// Server serves the metrics endpoint until Stop is called.
type Server struct {
	listener net.Listener
	server   *http.Server
}

// Listen binds addr. Use ":0" for an ephemeral port.
func (p *Provider) Listen(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &Server{
		listener: listener,
		server: &http.Server{
			Handler:           p.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks until the server is stopped.
func (s *Server) Serve() error {
	log.Info().Str("addr", s.Addr()).Msg("starting metrics server")
	if err := s.server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server error: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting up to a second for open scrapes.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("metrics server shutdown")
	}
}
