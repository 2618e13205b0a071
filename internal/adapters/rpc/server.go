// Package rpc exposes the core command surface as JSON-RPC 2.0 over HTTP,
// with token auth, per-client rate limiting, and Prometheus metrics.
package rpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propnet/go-core/internal/app"
	"propnet/go-core/internal/config"
)

const authHeader = "X-Propnet-RPC-Token"

type Server struct {
	addr    string
	token   string
	service app.CoreAPI
	limiter *rateLimiter
	logger  *slog.Logger
}

func NewServer(cfg config.ServerConfig, rl config.RateLimitConfig, service app.CoreAPI, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    cfg.ListenAddr,
		token:   strings.TrimSpace(cfg.RPCToken),
		service: service,
		limiter: newRateLimiter(rl),
		logger:  logger,
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("rpc server listening", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// authorize checks the configured token. An empty configured token leaves
// the surface open, which is the local-development default.
func (s *Server) authorize(r *http.Request) bool {
	if s.token == "" {
		return true
	}
	presented := strings.TrimSpace(r.Header.Get(authHeader))
	if presented == "" {
		if bearer := strings.TrimSpace(r.Header.Get("Authorization")); strings.HasPrefix(bearer, "Bearer ") {
			presented = strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))
		}
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.token)) == 1
}
