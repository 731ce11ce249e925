package cli

import (
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/logger"
)

// metricsServer serves /metrics for one registry.
type metricsServer struct {
	srv *http.Server
	ln  net.Listener
}

// startMetricsServer listens on addr and serves reg in the background.
func startMetricsServer(addr string, reg *prometheus.Registry, log logger.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't listen on %s for metrics", addr),
			"Pick a free port with --metrics-addr, or leave it empty to disable.")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	s := &metricsServer{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server: %v", err)
		}
	}()
	return s, nil
}

// Addr returns the address actually bound, useful with port 0.
func (s *metricsServer) Addr() string {
	return s.ln.Addr().String()
}

// Close stops the server.
func (s *metricsServer) Close() error {
	return s.srv.Close()
}
