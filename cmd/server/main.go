package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/chaincache/internal/api"
	"github.com/skybi/chaincache/internal/api/kv"
	"github.com/skybi/chaincache/internal/config"
	"github.com/skybi/chaincache/internal/hashmap"
	"github.com/skybi/chaincache/internal/hashtable"
	"github.com/skybi/chaincache/internal/task"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("config", fmt.Sprintf("%+v", cfg)).Msg("")

	// Create the store backing the key-value API
	options := []func(*hashtable.Config){
		hashtable.WithBuckets(cfg.InitialBuckets),
		hashtable.WithLogger(log.With().Str("component", "store").Logger()),
	}
	var store kv.Store
	if cfg.EntryLifetime > 0 {
		log.Info().Dur("lifetime", cfg.EntryLifetime).Dur("cleanup_interval", cfg.CleanupInterval).Msg("using an expiring store")
		expiring := hashmap.NewExpiring[string, json.RawMessage](cfg.EntryLifetime, options...)
		expiring.ScheduleCleanupTask(cfg.CleanupInterval)
		defer expiring.StopCleanupTask()
		store = expiring
	} else {
		store = hashmap.NewNormal[string, json.RawMessage](options...)
	}

	// Schedule a task that periodically reports the shape of the store
	statsTask := task.NewRepeating(func() {
		stats := store.Stats()
		log.Info().
			Int("entries", stats.Size).
			Int("buckets", stats.Buckets).
			Float32("load_factor", stats.LoadFactor).
			Int("max_chain", stats.MaxChain).
			Int("growths", stats.Growths).
			Msg("store statistics")
	}, cfg.StatsInterval)
	statsTask.Start()
	defer statsTask.Stop(false)

	// Run the API until the application is terminated
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := &api.Service{
		Config: cfg,
		Store:  store,
	}
	log.Info().Msg("done!")
	if err := service.Run(ctx); err != nil {
		log.Error().Err(err).Msg("the API service raised an unexpected error")
	}
	log.Info().Msg("shutting down...")
}
