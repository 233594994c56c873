// Package response maps service errors onto HTTP responses. Client-facing
// errors (validation, not-found, access-denied, conflict) are precise;
// anything else is returned as an opaque internal error so no store or
// infrastructure detail leaks to the caller.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an HTTP-ready error envelope.
type Error struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewValidationError reports every violated field at once.
func NewValidationError(fields map[string]string) Error {
	return Error{Status: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(message string) Error {
	return Error{Status: http.StatusNotFound, Message: message}
}

// NewAccessDeniedError reports an authenticated but unauthorized caller.
func NewAccessDeniedError(message string) Error {
	return Error{Status: http.StatusForbidden, Message: message}
}

// NewConflictError reports a request contradicting current state.
func NewConflictError(message string) Error {
	return Error{Status: http.StatusConflict, Message: message}
}

// NewUnauthorizedError reports a missing or invalid credential.
func NewUnauthorizedError() Error {
	return Error{Status: http.StatusUnauthorized, Message: "unauthorized"}
}

// NewInternalError reports an unexpected failure without detail.
func NewInternalError() Error {
	return Error{Status: http.StatusInternalServerError, Message: "internal server error"}
}

// HandleError writes the HTTP response for an error and aborts the request.
func HandleError(err Error, c *gin.Context) {
	c.AbortWithStatusJSON(err.Status, err)
}
