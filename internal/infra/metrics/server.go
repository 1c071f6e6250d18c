package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spoken-answer/pkg/logx"
)

const httpServerReadHeaderTimeout = 5 * time.Second

type Server struct {
	listenAddress string
	gatherer      prometheus.Gatherer
	logger        *slog.Logger
}

func NewServer(listenAddress string, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	return &Server{
		listenAddress: listenAddress,
		gatherer:      gatherer,
		logger:        logger,
	}
}

// Run serves /metrics until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:              s.listenAddress,
		Handler:           mux,
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		if err := httpServer.Shutdown(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("metrics server shutdown", logx.Error(err))
		}
	}()

	s.logger.Info("metrics server started", slog.String("address", s.listenAddress))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}

	s.logger.Info("metrics server stopped")

	return nil
}
