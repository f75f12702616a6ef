package kv

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/skybi/chaincache/internal/api/schema"
	"github.com/skybi/chaincache/internal/api/validation"
	"github.com/skybi/chaincache/internal/dynarray"
	"math"
	"net/http"
	"slices"
)

var (
	errEntryAlreadyExists = func(key string) *schema.Error {
		return schema.NewError("kv.entry.alreadyExists", fmt.Sprintf("An entry with the key '%s' already exists.", key), map[string]any{
			"key": key,
		})
	}
	errEntryNotFound = func(key string) *schema.Error {
		return schema.NewError("kv.entry.notFound", fmt.Sprintf("There is no entry with the key '%s'.", key), map[string]any{
			"key": key,
		})
	}
)

// Entry represents a single key-value pair as exposed by the API
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// EndpointGetEntries handles the 'GET /v1/entries?offset={number?:0}&limit={number?:100}' endpoint
func (service *Service) EndpointGetEntries(writer http.ResponseWriter, request *http.Request) {
	var validationErrs []*schema.Error

	offset, validationErr := validation.QueryNumber[int64](request, "offset", false, 0, 0, math.MaxInt64)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	limit, validationErr := validation.QueryNumber[int64](request, "limit", false, min(100, service.Config.MaxListLimit), 1, service.Config.MaxListLimit)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	// The table does not define an order, so keys are sorted to keep pages stable
	keys := dynarray.New[string](0)
	service.Store.Keys(keys)
	sorted := keys.Slice()
	slices.Sort(sorted)

	service.writer.WriteJSON(writer, schema.Paginate(sorted, offset, limit))
}

// EndpointGetEntry handles the 'GET /v1/entries/{key}' endpoint
func (service *Service) EndpointGetEntry(writer http.ResponseWriter, request *http.Request) {
	key := request.Context().Value(contextValueKey).(string)

	value, ok := service.Store.Lookup(key)
	if !ok {
		service.writer.WriteErrors(writer, http.StatusNotFound, errEntryNotFound(key))
		return
	}

	service.writer.WriteJSON(writer, &Entry{
		Key:   key,
		Value: value,
	})
}

type endpointPutEntryRequestPayload struct {
	Value *json.RawMessage `json:"value" required:"true"`
}

// EndpointPutEntry handles the 'PUT /v1/entries/{key}' endpoint
func (service *Service) EndpointPutEntry(writer http.ResponseWriter, request *http.Request) {
	key := request.Context().Value(contextValueKey).(string)

	payload, validationErrs, err := schema.UnmarshalBody[endpointPutEntryRequestPayload](request, service.Config.MaxBodySize)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	code := http.StatusOK
	if service.Store.Set(key, *payload.Value) {
		code = http.StatusCreated
	}
	service.writer.WriteJSONCode(writer, code, &Entry{
		Key:   key,
		Value: *payload.Value,
	})
}

type endpointCreateEntryRequestPayload struct {
	Key   *string          `json:"key"`
	Value *json.RawMessage `json:"value" required:"true"`
}

// EndpointCreateEntry handles the 'POST /v1/entries' endpoint.
// A random UUID is used as the key if the payload does not contain one.
func (service *Service) EndpointCreateEntry(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := schema.UnmarshalBody[endpointCreateEntryRequestPayload](request, service.Config.MaxBodySize)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	key := uuid.NewString()
	if payload.Key != nil {
		key = *payload.Key
		if validationErr := service.validateKey(key); validationErr != nil {
			service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
			return
		}
	}

	if !service.Store.Add(key, *payload.Value) {
		service.writer.WriteErrors(writer, http.StatusConflict, errEntryAlreadyExists(key))
		return
	}
	service.writer.WriteJSONCode(writer, http.StatusCreated, &Entry{
		Key:   key,
		Value: *payload.Value,
	})
}

// EndpointDeleteEntry handles the 'DELETE /v1/entries/{key}' endpoint
func (service *Service) EndpointDeleteEntry(writer http.ResponseWriter, request *http.Request) {
	key := request.Context().Value(contextValueKey).(string)

	if !service.Store.Unset(key) {
		service.writer.WriteErrors(writer, http.StatusNotFound, errEntryNotFound(key))
		return
	}
	service.writer.WriteNoContent(writer)
}
