package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Category is a caller-declared failure tag. Categories form a tree through
// their parent links; a status table keyed by a category also covers every
// descendant that has no entry of its own.
type Category struct {
	name   string
	parent *Category
}

// NewCategory declares a category. A nil parent makes it a direct child of Failure.
func NewCategory(name string, parent *Category) *Category {
	if parent == nil {
		parent = Failure
	}
	return &Category{name: name, parent: parent}
}

// Name returns the category name
func (c *Category) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Parent returns the parent category, nil for the root
func (c *Category) Parent() *Category {
	if c == nil {
		return nil
	}
	return c.parent
}

// Within reports whether c is ancestor or c itself.
func (c *Category) Within(ancestor *Category) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (c *Category) String() string {
	return c.Name()
}

// Failure is the root category. Errors that carry no category belong here.
var Failure = &Category{name: "FAILURE"}

var (
	// Invalid indicates the input was rejected
	Invalid = NewCategory("INVALID", nil)
	// NotFound indicates the addressed resource doesn't exist
	NotFound = NewCategory("NOT_FOUND", nil)
	// Conflict indicates the change clashes with current state
	Conflict = NewCategory("CONFLICT", nil)
	// Unauthorized indicates missing or bad credentials
	Unauthorized = NewCategory("UNAUTHORIZED", nil)
	// Forbidden indicates the caller may not perform the operation
	Forbidden = NewCategory("FORBIDDEN", nil)
	// Unavailable indicates a dependency is not reachable
	Unavailable = NewCategory("UNAVAILABLE", nil)
	// Timeout indicates a deadline was exceeded
	Timeout = NewCategory("TIMEOUT", nil)
	// Canceled indicates the caller went away
	Canceled = NewCategory("CANCELED", nil)
	// Panic indicates a handler panicked
	Panic = NewCategory("PANIC", nil)
	// Internal indicates an unexpected error
	Internal = NewCategory("INTERNAL", nil)
)

// Error is a failure with a category, message and optional details
type Error struct {
	Category *Category   `json:"-"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	cause    error       // Underlying error (not exported to JSON)
}

// New creates a new Error
func New(category *Category, message string, cause error) *Error {
	if category == nil {
		category = Failure
	}
	return &Error{
		Category: category,
		Message:  message,
		cause:    cause,
	}
}

// Newf creates a new Error with a formatted message and no cause
func Newf(category *Category, format string, args ...interface{}) *Error {
	return New(category, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		if e.Message == "" {
			return e.cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the category name, used as the stable error code on the wire
func (e *Error) Code() string {
	return e.Category.Name()
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CategoryOf classifies err. The first *Error in the chain decides; context
// errors map to Timeout and Canceled; anything else is Failure.
func CategoryOf(err error) *Category {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) && e.Category != nil {
		return e.Category
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return Timeout
	case stderrors.Is(err, context.Canceled):
		return Canceled
	}
	return Failure
}

// StatusTable maps categories to HTTP-like status codes
type StatusTable map[*Category]int

// Lookup returns the status for category, walking up through its ancestors.
func (t StatusTable) Lookup(category *Category) (int, bool) {
	for c := category; c != nil; c = c.parent {
		if status, ok := t[c]; ok {
			return status, true
		}
	}
	return 0, false
}

// Clone returns a copy that can be mutated independently
func (t StatusTable) Clone() StatusTable {
	out := make(StatusTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// defaultStatuses is the transport-level mapping used when no table applies
var defaultStatuses = StatusTable{
	Invalid:      http.StatusBadRequest,
	NotFound:     http.StatusNotFound,
	Conflict:     http.StatusConflict,
	Unauthorized: http.StatusUnauthorized,
	Forbidden:    http.StatusForbidden,
	Unavailable:  http.StatusServiceUnavailable,
	Timeout:      http.StatusGatewayTimeout,
}

// StatusFor maps a category to a status code using the default mapping
func StatusFor(category *Category) int {
	if status, ok := defaultStatuses.Lookup(category); ok {
		return status
	}
	return http.StatusInternalServerError
}
