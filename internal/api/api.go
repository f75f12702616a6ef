package api

import (
	"context"
	"errors"
	"github.com/rs/zerolog/log"
	"github.com/skybi/chaincache/internal/api/kv"
	"github.com/skybi/chaincache/internal/config"
	"golang.org/x/sync/errgroup"
	"net/http"
	"time"
)

// shutdownTimeout is the time in-flight requests are given to finish on shutdown
const shutdownTimeout = 5 * time.Second

// Service represents the key-value API service
type Service struct {
	Config *config.Config
	Store  kv.Store
}

// Run starts up the key-value API and blocks until ctx is done or the server fails.
// On cancellation the server is shut down gracefully.
func (service *Service) Run(ctx context.Context) error {
	kvService := &kv.Service{
		Config: service.Config,
		Store:  service.Store,
	}
	server := &http.Server{
		Addr:    service.Config.ListenAddress,
		Handler: kvService.Handler(),
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("address", server.Addr).Msg("serving the key-value API")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down the key-value API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
