package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
)

type Server struct {
	srv             *http.Server
	log             logger.Logger
	timeoutGraceful time.Duration
}

func NewServer(
	log logger.Logger,
	port string,
	handler http.Handler,
	readTimeout, writeTimeout, idleTimeout, timeoutGraceful time.Duration,
) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		log:             log,
		timeoutGraceful: timeoutGraceful,
	}
}

func (s *Server) Start() error {
	s.log.Infof("HTTP server is starting on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop waits for in-flight requests up to the graceful timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server is stopping gracefully")
	ctx, cancel := context.WithTimeout(ctx, s.timeoutGraceful)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn("graceful shutdown timed out, forcing close")
		return s.srv.Close()
	}
	return nil
}
