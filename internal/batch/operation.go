package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operation is the action a request element performs against the resource
type Operation int

const (
	// List returns the whole collection
	List Operation = iota
	// Fetch returns a single resource by id
	Fetch
	// Create adds a resource and reports its new id
	Create
	// Replace overwrites a resource by id
	Replace
	// PartialUpdate modifies some fields of a resource by id
	PartialUpdate
	// Delete removes a resource by id
	Delete

	numOperations
)

var operationNames = [numOperations]string{
	List:          "list",
	Fetch:         "fetch",
	Create:        "create",
	Replace:       "replace",
	PartialUpdate: "patch",
	Delete:        "delete",
}

// operationAliases accepts the HTTP verbs clients tend to send
var operationAliases = map[string]Operation{
	"get_all": List,
	"post":    Create,
	"put":     Replace,
	"patch":   PartialUpdate,
	"delete":  Delete,
}

// Operations returns every operation kind in declaration order
func Operations() []Operation {
	ops := make([]Operation, 0, numOperations)
	for op := List; op < numOperations; op++ {
		ops = append(ops, op)
	}
	return ops
}

// ParseOperation converts a wire name to an Operation (case-insensitive)
func ParseOperation(s string) (Operation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for op, n := range operationNames {
		if n == name {
			return Operation(op), nil
		}
	}
	if op, ok := operationAliases[name]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// Valid reports whether op is one of the declared kinds
func (op Operation) Valid() bool {
	return op >= List && op < numOperations
}

func (op Operation) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Operation(%d)", int(op))
	}
	return operationNames[op]
}

// MarshalJSON encodes the operation by its wire name
func (op Operation) MarshalJSON() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("invalid operation %d", int(op))
	}
	return json.Marshal(op.String())
}

// UnmarshalJSON decodes the operation from its wire name
func (op *Operation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("operation must be a string: %w", err)
	}
	parsed, err := ParseOperation(s)
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// MarshalText lets YAML and TOML encoders use the wire name
func (op Operation) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("invalid operation %d", int(op))
	}
	return []byte(op.String()), nil
}

// UnmarshalText lets YAML and TOML decoders read the wire name
func (op *Operation) UnmarshalText(text []byte) error {
	parsed, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
