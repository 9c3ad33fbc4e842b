package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not_found")
	ErrDuplicateRequest = errors.New("duplicate_request")
	ErrNoJoinableServer = errors.New("no_joinable_server")
	ErrValidation       = errors.New("validation")
)

// NotFoundError names the missing entity. It matches ErrNotFound via errors.Is.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func ServerNotFound(id string) error  { return &NotFoundError{Entity: "server", ID: id} }
func ChannelNotFound(id string) error { return &NotFoundError{Entity: "channel", ID: id} }
func UserNotFound(id string) error    { return &NotFoundError{Entity: "user", ID: id} }

// IsNotFound reports whether err is a NotFoundError for entity.
func IsNotFound(err error, entity string) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Entity == entity
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}
