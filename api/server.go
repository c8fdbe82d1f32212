package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/quickcart-app/quickcart-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logg       *logger.Logger
	cleanups   []func() error
}

// NewServer builds the server on the given address and handler. Cleanup
// functions run after the listener drains, in the order provided.
func NewServer(addr string, handler http.Handler, logg *logger.Logger, cleanups ...func() error) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logg:     logg,
		cleanups: cleanups,
	}
}

// Run serves until the context is cancelled, then drains in-flight requests
// and runs the cleanups. All shutdown errors are collected.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return multierr.Append(err, s.cleanup())
	case <-ctx.Done():
	}

	if s.logg != nil {
		s.logg.Info(context.Background(), "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	err = multierr.Append(err, <-errCh)
	return multierr.Append(err, s.cleanup())
}

func (s *Server) cleanup() error {
	var err error
	for _, fn := range s.cleanups {
		if fn != nil {
			err = multierr.Append(err, fn())
		}
	}
	return err
}
