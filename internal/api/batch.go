package api

import (
	stderrors "errors"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"batchkit/internal/batch"
	"batchkit/internal/codec"
	"batchkit/internal/errors"
	"batchkit/internal/logging"
)

// Defaults applied when BatchOptions leaves a limit unset
const (
	DefaultMaxOperations = 1024
	DefaultMaxBodyBytes  = 10 << 20
)

// BatchOptions limits the size of a single batch request
type BatchOptions struct {
	MaxOperations int
	MaxBodyBytes  int64
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.MaxOperations <= 0 {
		o.MaxOperations = DefaultMaxOperations
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return o
}

// OperationsResponse is returned by GET on a batch route
type OperationsResponse struct {
	Resource   string   `json:"resource"`
	Operations []string `json:"operations"`
}

// BatchHandler serves one batch resource over HTTP
type BatchHandler[In, Id any] struct {
	dispatcher *batch.Dispatcher[In, Id]
	basePath   string
	opts       BatchOptions
	logger     *logging.Logger
}

// NewBatchHandler creates a handler that runs batches through d
func NewBatchHandler[In, Id any](d *batch.Dispatcher[In, Id], basePath string, opts BatchOptions, logger *logging.Logger) *BatchHandler[In, Id] {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BatchHandler[In, Id]{
		dispatcher: d,
		basePath:   basePath,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// ServeHTTP handles GET (operation discovery) and POST (batch execution)
func (h *BatchHandler[In, Id]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleOperations(w)
	case http.MethodPost:
		h.handleBatch(w, r)
	default:
		MethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *BatchHandler[In, Id]) handleOperations(w http.ResponseWriter) {
	w.Header().Set("Allow", "GET, POST")
	WriteJSON(w, OperationsResponse{
		Resource:   h.basePath,
		Operations: operationNames(h.dispatcher.Operations()),
	}, http.StatusOK)
}

func (h *BatchHandler[In, Id]) handleBatch(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r.Header.Get("Content-Type")) {
		WriteError(w, errors.New(errors.Invalid, "content type must be application/json", nil),
			http.StatusUnsupportedMediaType)
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	req, err := codec.DecodeRequest[In, Id](codec.JSON, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			WriteError(w, errors.Newf(errors.Invalid, "request body exceeds %d bytes", h.opts.MaxBodyBytes),
				http.StatusRequestEntityTooLarge)
			return
		}
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if len(req.Requests) > h.opts.MaxOperations {
		WriteError(w, errors.Newf(errors.Invalid, "batch has %d operations, limit is %d",
			len(req.Requests), h.opts.MaxOperations), http.StatusRequestEntityTooLarge)
		return
	}

	batchID := uuid.New().String()
	w.Header().Set("X-Batch-ID", batchID)
	h.logger.Debug("Batch received", map[string]interface{}{
		"batchID":   batchID,
		"requestID": GetRequestID(r.Context()),
		"resource":  h.basePath,
		"elements":  len(req.Requests),
	})

	resp := h.dispatcher.Process(r.Context(), h.basePath, req)
	if resp.Responses == nil {
		resp.Responses = []batch.ResponseElement{}
	}

	if acceptsProtobuf(r.Header.Get("Accept")) {
		data, err := codec.MarshalProto(resp)
		if err != nil {
			InternalError(w, "failed to encode response", err)
			return
		}
		w.Header().Set("Content-Type", codec.ContentTypeProtobuf)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	WriteJSON(w, resp, http.StatusOK)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == codec.ContentTypeJSON
}

// acceptsProtobuf reports whether protobuf is listed in an Accept header
func acceptsProtobuf(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == codec.ContentTypeProtobuf {
			return true
		}
	}
	return false
}

func operationNames(ops []batch.Operation) []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return names
}
