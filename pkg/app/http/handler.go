// Package http provides HTTP utilities including chi-compatible error handling
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
)

// maxBodySize bounds request bodies read by DecodeJSON.
const maxBodySize = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError wraps an error-returning HandlerFunc into a standard http.HandlerFunc
//
// Usage with chi:
//
//	r.Post("/api/posts/unlock", http.HandleError(h.unlock))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

type errorResponse struct {
	ErrMsg     string `json:"error"`
	ErrMsgCode int    `json:"code"`
}

// DefaultErrorHandler handles errors returned from HTTP handlers.
// Errors outside the service taxonomy are logged on the global zap logger.
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	var svcErr *apperrors.ServiceError

	if errors.As(err, &svcErr) {
		if svcErr.StatusCode() >= http.StatusInternalServerError {
			zap.L().Error("Request failed", zap.Error(err))
		}
		if svcErr.Category == apperrors.CategoryTooManyRequests && w.Header().Get("Retry-After") == "" {
			w.Header().Set("Retry-After", "60")
		}
		WriteJSON(w, svcErr.StatusCode(), &errorResponse{
			ErrMsg:     svcErr.Message,
			ErrMsgCode: svcErr.StatusCode(),
		})
		return
	}

	zap.L().Error("Unexpected handler error", zap.Error(err))
	WriteJSON(w, http.StatusInternalServerError, &errorResponse{
		ErrMsg:     "Unexpected Service Error",
		ErrMsgCode: http.StatusInternalServerError,
	})
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DecodeJSON reads a bounded JSON body into dst and runs struct validation.
// Both failures are reported as bad request service errors.
func DecodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	return Validate(dst)
}

// Validate runs struct validation and converts the first failure into a
// bad request error naming the offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.BadRequestError(err, fmt.Sprintf("invalid field %s: failed %s", fe.Field(), fe.Tag()))
	}
	return apperrors.BadRequestError(err, "invalid request")
}

// RequiredQuery returns the named query parameter or a bad request error.
func RequiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", apperrors.BadRequestError(nil, name+" is required")
	}
	return v, nil
}

// IntQuery parses an optional integer query parameter, returning def when absent.
func IntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.BadRequestError(err, name+" must be a non-negative integer")
	}
	return v, nil
}
