package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/tflmgen/internal/scan"
	"github.com/samcharles93/tflmgen/internal/tmpl"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps stage errors to a status code and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, tmpl.ErrUnknownTemplate):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, scan.ErrIdentifierNotFound), errors.Is(err, scan.ErrArrayMarkerNotFound):
		return http.StatusUnprocessableEntity, "extraction_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
