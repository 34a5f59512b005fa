package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tflmgen/internal/metrics"
)

func writeJSON(c *echo.Context, route string, status int, body any) error {
	metrics.ObserveRequest(route, status)
	return c.JSON(status, body)
}

func writeStageError(c *echo.Context, route string, err error) error {
	status, typ := classify(err)
	return writeError(c, route, status, typ, err.Error())
}

func writeError(c *echo.Context, route string, status int, errType, msg string) error {
	return writeJSON(c, route, status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return out, newInvalidRequest("request body too large")
		}
		if errors.Is(err, io.EOF) {
			return out, newInvalidRequest("request body is empty")
		}
		return out, newInvalidRequest("invalid JSON: " + err.Error())
	}
	return out, nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return newInvalidRequest(name + " is required")
	}
	return nil
}
