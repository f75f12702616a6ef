package kv

import (
	"context"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/skybi/chaincache/internal/api/schema"
	"net/http"
	"time"
)

type contextKey string

const contextValueKey contextKey = "key"

var errKeyLengthOutOfRange = func(length, max int) *schema.Error {
	return schema.NewError("kv.key.lengthOutOfRange", fmt.Sprintf("The entry key has to be between 1 and %d bytes long (given: %d).", max, length), map[string]any{
		"length": length,
		"max":    max,
	})
}

// validateKey returns a validation error if key is not an acceptable entry key
func (service *Service) validateKey(key string) *schema.Error {
	if len(key) == 0 || len(key) > service.Config.MaxKeyLength {
		return errKeyLengthOutOfRange(len(key), service.Config.MaxKeyLength)
	}
	return nil
}

// MiddlewareExtractKey validates the '{key}' URL parameter and stores it in the request context
func (service *Service) MiddlewareExtractKey(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		key := chi.URLParam(request, "key")
		if validationErr := service.validateKey(key); validationErr != nil {
			service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
			return
		}
		next.ServeHTTP(writer, request.WithContext(context.WithValue(request.Context(), contextValueKey, key)))
	}
}

// middlewareLogRequests logs every handled request on debug level
func (service *Service) middlewareLogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(wrapped, request)
		log.Debug().
			Str("request_id", middleware.GetReqID(request.Context())).
			Str("method", request.Method).
			Str("path", request.URL.Path).
			Int("status", wrapped.Status()).
			Dur("took", time.Since(start)).
			Msg("handled request")
	})
}
