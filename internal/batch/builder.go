package batch

import (
	"context"

	"batchkit/internal/errors"
	"batchkit/internal/logging"
)

// Typed handler shapes accepted by the Builder
type (
	// ListFunc returns the whole collection
	ListFunc[Out any] func(ctx context.Context) ([]Out, error)
	// FetchFunc returns one resource by id
	FetchFunc[Out, Id any] func(ctx context.Context, id Id) (Out, error)
	// CreateFunc stores a new resource and returns its id
	CreateFunc[In, Id any] func(ctx context.Context, body In) (Id, error)
	// UpdateFunc replaces or patches the resource with the given id
	UpdateFunc[In, Id any] func(ctx context.Context, id Id, body In) error
	// DeleteFunc removes the resource with the given id
	DeleteFunc[Id any] func(ctx context.Context, id Id) error
)

// Builder registers handlers fluently and produces a Dispatcher:
//
//	d, err := batch.NewBuilder[ItemInput, Item, int64]().
//		ForList(store.List).WithError(errors.Unavailable, 503).
//		And().ForCreate(store.Create).
//		Build()
type Builder[In, Out, Id any] struct {
	registry *Registry[In, Id]
	logger   *logging.Logger
	err      error
}

// NewBuilder starts with an empty registry
func NewBuilder[In, Out, Id any]() *Builder[In, Out, Id] {
	return &Builder[In, Out, Id]{registry: NewRegistry[In, Id]()}
}

// WithLogger sets the logger handed to the dispatcher
func (b *Builder[In, Out, Id]) WithLogger(logger *logging.Logger) *Builder[In, Out, Id] {
	b.logger = logger
	return b
}

// ForList registers the collection handler
func (b *Builder[In, Out, Id]) ForList(f ListFunc[Out]) *MethodBuilder[In, Out, Id] {
	if f == nil {
		return b.register(List, nil)
	}
	return b.register(List, func(ctx context.Context, _ Id, _ In) (interface{}, error) {
		items, err := f(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []Out{}
		}
		return items, nil
	})
}

// ForFetch registers the single-resource read handler
func (b *Builder[In, Out, Id]) ForFetch(f FetchFunc[Out, Id]) *MethodBuilder[In, Out, Id] {
	if f == nil {
		return b.register(Fetch, nil)
	}
	return b.register(Fetch, func(ctx context.Context, id Id, _ In) (interface{}, error) {
		item, err := f(ctx, id)
		if err != nil {
			return nil, err
		}
		return item, nil
	})
}

// ForCreate registers the create handler; the returned id becomes part of the resource path
func (b *Builder[In, Out, Id]) ForCreate(f CreateFunc[In, Id]) *MethodBuilder[In, Out, Id] {
	if f == nil {
		return b.register(Create, nil)
	}
	return b.register(Create, func(ctx context.Context, _ Id, body In) (interface{}, error) {
		id, err := f(ctx, body)
		if err != nil {
			return nil, err
		}
		return id, nil
	})
}

// ForReplace registers the full update handler
func (b *Builder[In, Out, Id]) ForReplace(f UpdateFunc[In, Id]) *MethodBuilder[In, Out, Id] {
	return b.register(Replace, updateInvoker(f))
}

// ForPatch registers the partial update handler
func (b *Builder[In, Out, Id]) ForPatch(f UpdateFunc[In, Id]) *MethodBuilder[In, Out, Id] {
	return b.register(PartialUpdate, updateInvoker(f))
}

// ForDelete registers the delete handler
func (b *Builder[In, Out, Id]) ForDelete(f DeleteFunc[Id]) *MethodBuilder[In, Out, Id] {
	if f == nil {
		return b.register(Delete, nil)
	}
	return b.register(Delete, func(ctx context.Context, id Id, _ In) (interface{}, error) {
		return nil, f(ctx, id)
	})
}

// Build returns the dispatcher, or the first registration error
func (b *Builder[In, Out, Id]) Build() (*Dispatcher[In, Id], error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewDispatcher(b.registry, b.logger), nil
}

func (b *Builder[In, Out, Id]) register(op Operation, invoke InvokeFunc[In, Id]) *MethodBuilder[In, Out, Id] {
	if err := b.registry.Register(op, invoke, 0, nil); err != nil {
		if b.err == nil {
			b.err = err
		}
		return &MethodBuilder[In, Out, Id]{parent: b}
	}
	return &MethodBuilder[In, Out, Id]{parent: b, entry: b.registry.Entry(op)}
}

func updateInvoker[In, Id any](f UpdateFunc[In, Id]) InvokeFunc[In, Id] {
	if f == nil {
		return nil
	}
	return func(ctx context.Context, id Id, body In) (interface{}, error) {
		return nil, f(ctx, id, body)
	}
}

// MethodBuilder configures the handler that was just registered
type MethodBuilder[In, Out, Id any] struct {
	parent *Builder[In, Out, Id]
	entry  *HandlerEntry[In, Id] // nil when registration failed
}

// WithError maps failures of category (and its descendants) to status
func (m *MethodBuilder[In, Out, Id]) WithError(category *errors.Category, status int) *MethodBuilder[In, Out, Id] {
	if m.entry != nil {
		m.entry.Errors[category] = status
	}
	return m
}

// WithErrors adds every mapping in table
func (m *MethodBuilder[In, Out, Id]) WithErrors(table errors.StatusTable) *MethodBuilder[In, Out, Id] {
	for category, status := range table {
		m.WithError(category, status)
	}
	return m
}

// WithSuccessStatus overrides the status reported when the handler succeeds
func (m *MethodBuilder[In, Out, Id]) WithSuccessStatus(status int) *MethodBuilder[In, Out, Id] {
	if m.entry != nil {
		m.entry.SuccessStatus = status
	}
	return m
}

// And returns to the top-level builder
func (m *MethodBuilder[In, Out, Id]) And() *Builder[In, Out, Id] {
	return m.parent
}

// Build is shorthand for And().Build()
func (m *MethodBuilder[In, Out, Id]) Build() (*Dispatcher[In, Id], error) {
	return m.parent.Build()
}
