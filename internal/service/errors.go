package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nhle/taskboard/internal/store"
)

// ValidationError reports every violated field of a rejected request at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// NotFoundError indicates the resource id has no matching record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AccessDeniedError indicates the caller is authenticated but not authorized.
// It is always distinct from NotFoundError: a caller with no access to a
// project is told so, never silently filtered.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	if e.Reason == "" {
		return "access denied"
	}
	return "access denied: " + e.Reason
}

// ConflictError indicates the request contradicts current state, such as
// adding a duplicate member or removing the project owner.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// notFound converts a store lookup error into a NotFoundError when the
// record is missing, passing other errors through untouched.
func notFound(err error, resource, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}
