package endpoint

import (
	"errors"
	"net/http"

	e "github.com/datastax/query-plan-apis/rest/errors"
)

// statusCode returns the status an error is reported with. Messages of unexpected errors are
// not shown to clients.
func statusCode(err error) (int, string) {
	var notFound *e.NotFoundError
	var unauthorized *e.UnauthorizedError
	var internal *e.InternalError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, unauthorized.Error()
	case errors.As(err, &internal):
		return http.StatusInternalServerError, internal.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
