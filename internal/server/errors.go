package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/KaramelBytes/smartbiz-cli/internal/analysis"
	"github.com/KaramelBytes/smartbiz-cli/internal/logger"
	"github.com/KaramelBytes/smartbiz-cli/internal/parser"
	"github.com/KaramelBytes/smartbiz-cli/internal/schema"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	RequestID string            `json:"request_id,omitempty"`
	Missing   []string          `json:"missing,omitempty"`
	Row       int               `json:"row,omitempty"`
	Column    string            `json:"column,omitempty"`
	Value     *string           `json:"value,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// errorHandler maps typed errors to status codes and a stable error code.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	resp, status := toResponse(err)
	resp.RequestID = GetRequestID(c)

	s.metrics.apiErrorsTotal.WithLabelValues(resp.Error, strconv.Itoa(status)).Inc()
	log := logger.FromContext(c.Request().Context())
	if status >= 500 {
		log.Error().Err(err).Str("code", resp.Error).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("code", resp.Error).Msg("request rejected")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to send error response")
	}
}

func toResponse(err error) (ErrorResponse, int) {
	var (
		se   *schema.SchemaError
		de   *analysis.DateParseError
		fe   *analysis.FieldError
		ve   validator.ValidationErrors
		he   *echo.HTTPError
		bind *badRequest
	)
	switch {
	case errors.As(err, &se):
		return ErrorResponse{Error: "schema_error", Message: se.Error(), Missing: se.Missing}, http.StatusUnprocessableEntity
	case errors.As(err, &de):
		v := de.Value
		return ErrorResponse{Error: "date_parse_error", Message: de.Error(), Row: de.Row, Column: schema.ColDate, Value: &v}, http.StatusUnprocessableEntity
	case errors.As(err, &fe):
		v := fe.Value
		return ErrorResponse{Error: "field_error", Message: fe.Error(), Row: fe.Row, Column: fe.Column, Value: &v}, http.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrUnsupported):
		return ErrorResponse{Error: "unsupported_file", Message: err.Error()}, http.StatusBadRequest
	case errors.As(err, &ve):
		fields := make(map[string]string, len(ve))
		for _, f := range ve {
			fields[f.Field()] = formatValidationError(f)
		}
		return ErrorResponse{Error: "invalid_request", Message: "request validation failed", Fields: fields}, http.StatusBadRequest
	case errors.As(err, &bind):
		return ErrorResponse{Error: "invalid_request", Message: bind.msg}, http.StatusBadRequest
	case errors.As(err, &he):
		return ErrorResponse{Error: codeForStatus(he.Code), Message: fmt.Sprint(he.Message)}, he.Code
	}
	return ErrorResponse{Error: "internal_error", Message: "internal server error"}, http.StatusInternalServerError
}

// badRequest marks client input problems found outside struct validation.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if status >= 500 {
		return "internal_error"
	}
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
