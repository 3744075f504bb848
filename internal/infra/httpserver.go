package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer runs the dashboard facade: one listener in front of the chi
// router, with the read/write/idle timeouts taken from Config so a slow
// record-service proxy hop cannot pin connections open indefinitely.
type HTTPServer struct {
	server *http.Server
	logger Logger
}

// NewHTTPServer builds the facade listener on the configured port.
func NewHTTPServer(cfg *Config, logger Logger, handler http.Handler) *HTTPServer {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	return &HTTPServer{server: srv, logger: logger}
}

// Start serves until Shutdown or a listener error. It blocks the calling
// goroutine.
func (s *HTTPServer) Start() error {
	if s.server == nil {
		return nil
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("dashboard gateway listening")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info().Msg("dashboard gateway shutting down")
	return s.server.Shutdown(ctx)
}
