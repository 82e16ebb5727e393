package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(NotFound, "item 7 not found", cause)

	if err.Category != NotFound {
		t.Errorf("Category = %v, want %v", err.Category, NotFound)
	}
	if err.Message != "item 7 not found" {
		t.Errorf("Message = %q, want %q", err.Message, "item 7 not found")
	}
	if err.Code() != "NOT_FOUND" {
		t.Errorf("Code() = %q, want NOT_FOUND", err.Code())
	}

	if New(nil, "x", nil).Category != Failure {
		t.Error("nil category should default to Failure")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			message:   "store unavailable",
			cause:     errors.New("connection refused"),
			wantParts: []string{"store unavailable", "connection refused"},
		},
		{
			name:      "without cause",
			message:   "name is required",
			wantParts: []string{"name is required"},
		},
		{
			name:      "cause only",
			cause:     errors.New("disk full"),
			wantParts: []string{"disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(Internal, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(Internal, "something went wrong", cause)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if New(Timeout, "request timed out", nil).Unwrap() != nil {
		t.Error("Unwrap() on error without cause should return nil")
	}
}

func TestCategoryWithin(t *testing.T) {
	stale := NewCategory("STALE", Conflict)

	if !stale.Within(Conflict) {
		t.Error("STALE should be within CONFLICT")
	}
	if !stale.Within(Failure) {
		t.Error("every category should be within FAILURE")
	}
	if stale.Within(NotFound) {
		t.Error("STALE should not be within NOT_FOUND")
	}
	if NotFound.Parent() != Failure {
		t.Errorf("NotFound.Parent() = %v, want FAILURE", NotFound.Parent())
	}
	if Failure.Parent() != nil {
		t.Error("root category should have no parent")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *Category
	}{
		{"nil", nil, nil},
		{"plain error", errors.New("boom"), Failure},
		{"categorized", New(Invalid, "bad", nil), Invalid},
		{"wrapped categorized", fmt.Errorf("replace: %w", New(NotFound, "missing", nil)), NotFound},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), Timeout},
		{"canceled", context.Canceled, Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.want {
				t.Errorf("CategoryOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusTableLookup(t *testing.T) {
	stale := NewCategory("STALE", Conflict)
	table := StatusTable{
		Conflict: http.StatusConflict,
		Invalid:  http.StatusUnprocessableEntity,
	}

	tests := []struct {
		name     string
		category *Category
		want     int
		wantOK   bool
	}{
		{"exact", Invalid, http.StatusUnprocessableEntity, true},
		{"ancestor", stale, http.StatusConflict, true},
		{"unmapped", NotFound, 0, false},
		{"root unmapped", Failure, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Lookup(tt.category)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Lookup(%v) = (%d, %v), want (%d, %v)", tt.category, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	t.Run("root catches all", func(t *testing.T) {
		all := StatusTable{Failure: http.StatusBadRequest}
		if got, _ := all.Lookup(stale); got != http.StatusBadRequest {
			t.Errorf("Lookup(STALE) = %d, want 400", got)
		}
	})

	t.Run("exact beats ancestor", func(t *testing.T) {
		both := StatusTable{Conflict: 409, stale: 412}
		if got, _ := both.Lookup(stale); got != 412 {
			t.Errorf("Lookup(STALE) = %d, want 412", got)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		category *Category
		want     int
	}{
		{Invalid, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Conflict, http.StatusConflict},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{Unavailable, http.StatusServiceUnavailable},
		{Timeout, http.StatusGatewayTimeout},
		{Panic, http.StatusInternalServerError},
		{Failure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.category.Name(), func(t *testing.T) {
			if got := StatusFor(tt.category); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.category, got, tt.want)
			}
		})
	}
}
