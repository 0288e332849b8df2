package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/buscador/config"
	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	config       *config.Config
	router       *gin.Engine
	httpServer   *http.Server
	dependencies *Dependencies
	validator    *validation.Validator
	logger       logger.Logger
}

// Run serves the API until ctx is cancelled or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := &server{
		config: cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()

	return s.serve(ctx)
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.dependencies, err = NewDependencies(ctx, s.logger, s.config, true)
	if err != nil {
		s.logger.Error("error creating search dependencies", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.dependencies.Close()
		return err
	}

	return nil
}

func (s *server) setupRouter() {
	router := newRouter(s.logger)

	setupRoutes(router, s.logger, s.dependencies.Search, s.validator, s.dependencies.Registry)

	s.router = router
}

func (s *server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", s.config.GetPort()),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serve blocks until the listener fails or ctx is done, then shuts down
// gracefully and closes the database pool.
func (s *server) serve(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err, ok := <-listenErr:
		s.dependencies.Close()
		if ok {
			s.logger.Error("http server failed", "err", err.Error())
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer s.dependencies.Close()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err)
		return err
	}
	s.logger.Info("shut down http server successfully")
	return nil
}
