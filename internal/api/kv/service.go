package kv

import (
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/skybi/chaincache/internal/api/schema"
	"github.com/skybi/chaincache/internal/config"
	"github.com/skybi/chaincache/internal/function"
	"github.com/skybi/chaincache/internal/hashmap"
	"net/http"
)

// Store is the map the key-value API operates on
type Store = hashmap.Map[string, json.RawMessage]

// Service represents the key-value API service
type Service struct {
	Config *config.Config
	Store  Store

	writer *schema.Writer
}

// Handler builds the HTTP handler serving the key-value API
func (service *Service) Handler() http.Handler {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the key-value API experienced an unexpected error")
		},
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RedirectSlashes)
	router.Use(service.middlewareLogRequests)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{service.Config.AllowedOrigin},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	// Register the API endpoint handlers
	service.registerEndpoints(router)
	return router
}

func (service *Service) registerEndpoints(router chi.Router) {
	// Register the entry controller endpoints
	router.Get("/v1/entries", service.EndpointGetEntries)
	router.Post("/v1/entries", service.EndpointCreateEntry)
	router.Get("/v1/entries/{key}", function.Nest[http.HandlerFunc](
		service.EndpointGetEntry,
		service.MiddlewareExtractKey,
	))
	router.Put("/v1/entries/{key}", function.Nest[http.HandlerFunc](
		service.EndpointPutEntry,
		service.MiddlewareExtractKey,
	))
	router.Delete("/v1/entries/{key}", function.Nest[http.HandlerFunc](
		service.EndpointDeleteEntry,
		service.MiddlewareExtractKey,
	))

	// Register the table maintenance endpoints
	router.Get("/v1/stats", service.EndpointGetStats)
	router.Post("/v1/rehash", service.EndpointRehash)
}
