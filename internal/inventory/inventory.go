// Package inventory exposes the SQLite item store as a batch resource.
package inventory

import (
	"net/http"

	"batchkit/internal/batch"
	"batchkit/internal/errors"
	"batchkit/internal/logging"
	"batchkit/internal/storage"
)

// ResourceName is the path segment the items resource is mounted under
const ResourceName = "items"

type (
	// Dispatcher processes item batches
	Dispatcher = batch.Dispatcher[storage.ItemInput, int64]
	// Request is a batch of item operations
	Request = batch.Request[storage.ItemInput, int64]
	// Element is a single item operation
	Element = batch.RequestElement[storage.ItemInput, int64]
)

// readErrors applies to every handler
var readErrors = errors.StatusTable{
	errors.NotFound:    http.StatusNotFound,
	errors.Unavailable: http.StatusServiceUnavailable,
	errors.Timeout:     http.StatusGatewayTimeout,
}

// writeErrors adds the failures only mutations can hit
var writeErrors = errors.StatusTable{
	errors.Invalid:  http.StatusUnprocessableEntity,
	errors.Conflict: http.StatusConflict,
}

// NewDispatcher registers all six item handlers backed by store
func NewDispatcher(store *storage.ItemStore, logger *logging.Logger) (*Dispatcher, error) {
	return batch.NewBuilder[storage.ItemInput, storage.Item, int64]().
		WithLogger(logger).
		ForList(store.List).WithErrors(readErrors).
		And().ForFetch(store.Get).WithErrors(readErrors).
		And().ForCreate(store.Create).WithErrors(readErrors).WithErrors(writeErrors).
		And().ForReplace(store.Replace).WithErrors(readErrors).WithErrors(writeErrors).
		And().ForPatch(store.Patch).WithErrors(readErrors).WithErrors(writeErrors).
		And().ForDelete(store.Delete).WithErrors(readErrors).
		Build()
}
