package response

import (
	"errors"

	"github.com/nhle/taskboard/internal/service"
)

// ResolveError maps a service error onto its HTTP envelope. Unrecognized
// errors resolve to an opaque internal error; the caller is expected to log
// the original before resolving.
func ResolveError(err error) Error {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		denied     *service.AccessDeniedError
		conflict   *service.ConflictError
	)

	switch {
	case errors.As(err, &validation):
		return NewValidationError(validation.Fields)
	case errors.As(err, &notFound):
		return NewNotFoundError(notFound.Error())
	case errors.As(err, &denied):
		return NewAccessDeniedError(denied.Error())
	case errors.As(err, &conflict):
		return NewConflictError(conflict.Error())
	default:
		return NewInternalError()
	}
}
