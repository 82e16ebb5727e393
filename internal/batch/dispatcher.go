package batch

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"batchkit/internal/logging"
)

// Dispatcher resolves batch requests against the handlers in its registry.
//
// Elements are validated before the registry is consulted: a missing body or id
// is reported as 400 even when no handler is registered for the operation, and
// only a well-formed element can produce 405.
type Dispatcher[In, Id any] struct {
	registry *Registry[In, Id]
	logger   *logging.Logger
}

// NewDispatcher creates a dispatcher over registry. A nil logger discards output.
func NewDispatcher[In, Id any](registry *Registry[In, Id], logger *logging.Logger) *Dispatcher[In, Id] {
	if registry == nil {
		registry = NewRegistry[In, Id]()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Dispatcher[In, Id]{registry: registry, logger: logger}
}

// Registry returns the underlying handler registry
func (d *Dispatcher[In, Id]) Registry() *Registry[In, Id] {
	return d.registry
}

// Supports reports whether op has a handler
func (d *Dispatcher[In, Id]) Supports(op Operation) bool {
	return d.registry.Supports(op)
}

// Operations lists the operations with a handler
func (d *Dispatcher[In, Id]) Operations() []Operation {
	return d.registry.Operations()
}

// Process runs every element of req in order and returns one response element
// per request element. A failing element never affects its siblings.
func (d *Dispatcher[In, Id]) Process(ctx context.Context, basePath string, req Request[In, Id]) Response {
	start := time.Now()
	responses := make([]ResponseElement, len(req.Requests))
	failed := 0

	for i, element := range req.Requests {
		responses[i] = d.resolve(ctx, basePath, element)
		if responses[i].Status >= http.StatusBadRequest {
			failed++
		}
		d.logger.Debug("Batch element processed", map[string]interface{}{
			"index":        i,
			"operation":    element.Operation.String(),
			"status":       responses[i].Status,
			"resourcePath": responses[i].ResourcePath,
		})
	}

	d.logger.Info("Batch processed", map[string]interface{}{
		"basePath":   basePath,
		"elements":   len(req.Requests),
		"failed":     failed,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return Response{Responses: responses}
}

// resolve turns one request element into its response element
func (d *Dispatcher[In, Id]) resolve(ctx context.Context, basePath string, element RequestElement[In, Id]) ResponseElement {
	result := d.call(ctx, element)
	response := ResponseElement{
		Status:       result.Status,
		ResourcePath: basePath,
		Message:      result.Message,
	}

	switch element.Operation {
	case List:
		response.Body = result.Value
	case Fetch:
		response.ResourcePath = resourcePath(basePath, element.ID)
		response.Body = result.Value
	case Create:
		if !isNil(result.Value) {
			response.ResourcePath = basePath + "/" + fmt.Sprint(result.Value)
		}
	case Replace, PartialUpdate, Delete:
		response.ResourcePath = resourcePath(basePath, element.ID)
	}

	return response
}

// call checks the element's preconditions and invokes the registry
func (d *Dispatcher[In, Id]) call(ctx context.Context, element RequestElement[In, Id]) CallResult {
	var (
		noID   Id
		noBody In
	)

	switch element.Operation {
	case List:
		return d.registry.Invoke(ctx, List, noID, noBody)

	case Fetch:
		if element.ID == nil {
			return nullIDResult
		}
		return d.registry.Invoke(ctx, Fetch, *element.ID, noBody)

	case Create:
		if element.Body == nil {
			return emptyBodyResult
		}
		return d.registry.Invoke(ctx, Create, noID, *element.Body)

	case Replace, PartialUpdate:
		if element.Body == nil {
			return emptyBodyResult
		}
		if element.ID == nil {
			return nullIDResult
		}
		return d.registry.Invoke(ctx, element.Operation, *element.ID, *element.Body)

	case Delete:
		if element.ID == nil {
			return nullIDResult
		}
		return d.registry.Invoke(ctx, Delete, *element.ID, noBody)
	}

	return CallResult{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("unknown operation %s", element.Operation),
	}
}

// resourcePath appends the id when present; a missing id leaves basePath as is.
func resourcePath[Id any](basePath string, id *Id) string {
	if id == nil {
		return basePath
	}
	return basePath + "/" + fmt.Sprint(*id)
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
