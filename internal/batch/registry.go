package batch

import (
	"context"
	"fmt"
	"net/http"

	"batchkit/internal/errors"
)

// InvokeFunc is the uniform handler shape stored in the registry. Arguments an
// operation doesn't use arrive as zero values.
type InvokeFunc[In, Id any] func(ctx context.Context, id Id, body In) (interface{}, error)

// HandlerEntry is a registered handler plus its status metadata
type HandlerEntry[In, Id any] struct {
	Invoke        InvokeFunc[In, Id]
	SuccessStatus int
	Errors        errors.StatusTable
}

// DefaultSuccessStatus returns the status used when a handler doesn't set one
func DefaultSuccessStatus(op Operation) int {
	if op == Create {
		return http.StatusCreated
	}
	return http.StatusOK
}

// Registry holds at most one handler per operation. Registration is meant to
// happen during setup; once built, concurrent Invoke calls are safe.
type Registry[In, Id any] struct {
	entries [numOperations]*HandlerEntry[In, Id]
}

// NewRegistry creates an empty registry where every operation is unsupported
func NewRegistry[In, Id any]() *Registry[In, Id] {
	return &Registry[In, Id]{}
}

// Register stores the handler for op, replacing any earlier registration.
// A zero successStatus selects DefaultSuccessStatus(op).
func (r *Registry[In, Id]) Register(op Operation, invoke InvokeFunc[In, Id], successStatus int, table errors.StatusTable) error {
	if !op.Valid() {
		return fmt.Errorf("register: invalid operation %d", int(op))
	}
	if invoke == nil {
		return fmt.Errorf("register %s: nil handler", op)
	}
	if successStatus == 0 {
		successStatus = DefaultSuccessStatus(op)
	}
	r.entries[op] = &HandlerEntry[In, Id]{
		Invoke:        invoke,
		SuccessStatus: successStatus,
		Errors:        table.Clone(),
	}
	return nil
}

// Entry returns the handler registered for op, or nil
func (r *Registry[In, Id]) Entry(op Operation) *HandlerEntry[In, Id] {
	if !op.Valid() {
		return nil
	}
	return r.entries[op]
}

// Supports reports whether a handler is registered for op
func (r *Registry[In, Id]) Supports(op Operation) bool {
	return r.Entry(op) != nil
}

// Operations lists the registered operations in declaration order
func (r *Registry[In, Id]) Operations() []Operation {
	var ops []Operation
	for op, entry := range r.entries {
		if entry != nil {
			ops = append(ops, Operation(op))
		}
	}
	return ops
}

// Invoke runs the handler for op and converts the outcome into a CallResult.
// A missing handler yields 405. Handler errors and panics never escape.
func (r *Registry[In, Id]) Invoke(ctx context.Context, op Operation, id Id, body In) CallResult {
	entry := r.Entry(op)
	if entry == nil {
		return notAllowedResult
	}

	value, err := entry.call(ctx, id, body)
	if err != nil {
		return entry.failure(err)
	}
	return CallResult{Status: entry.SuccessStatus, Value: value}
}

func (e *HandlerEntry[In, Id]) call(ctx context.Context, id Id, body In) (value interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			value = nil
			if perr, ok := p.(error); ok {
				err = errors.New(errors.Panic, "", perr)
				return
			}
			err = errors.Newf(errors.Panic, "%v", p)
		}
	}()
	return e.Invoke(ctx, id, body)
}

// failure maps err through the entry's table; unmapped categories are 500.
func (e *HandlerEntry[In, Id]) failure(err error) CallResult {
	status, ok := e.Errors.Lookup(errors.CategoryOf(err))
	if !ok {
		status = http.StatusInternalServerError
	}
	return CallResult{Status: status, Message: err.Error()}
}
