package kv

import (
	"github.com/skybi/chaincache/internal/api/validation"
	"net/http"
)

// maxRehashBuckets is the largest bucket count a client may request
const maxRehashBuckets = 1 << 24

// EndpointGetStats handles the 'GET /v1/stats' endpoint
func (service *Service) EndpointGetStats(writer http.ResponseWriter, _ *http.Request) {
	service.writer.WriteJSON(writer, service.Store.Stats())
}

// EndpointRehash handles the 'POST /v1/rehash?buckets={number}' endpoint
func (service *Service) EndpointRehash(writer http.ResponseWriter, request *http.Request) {
	buckets, validationErr := validation.QueryNumber[int](request, "buckets", true, 0, 1, maxRehashBuckets)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	service.Store.Rehash(buckets)
	service.writer.WriteJSON(writer, service.Store.Stats())
}
