package user

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no user has the requested id.
	ErrNotFound = errors.New("user not found")
	// ErrNoEmailAddresses is returned when a welcome email is requested for a user without addresses.
	ErrNoEmailAddresses = errors.New("user has no email addresses")
)

// ValidationError collects messages keyed by request field, e.g. "emails.1.email".
// No store mutation happens when one is returned.
type ValidationError struct {
	Fields map[string][]string
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no message has been added.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Merge copies every message of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other.Empty() {
		return
	}
	for field, msgs := range other.Fields {
		for _, m := range msgs {
			e.Add(field, m)
		}
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// PersistenceError wraps an unexpected store failure. The surrounding transaction was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// OperationError wraps a dispatcher failure. Jobs queued before the failure stay queued.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *OperationError) Unwrap() error { return e.Err }
