package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/logger"
)

var validate = validator.New()

type errorBody struct {
	Error struct {
		Code    domain.ErrorCode `json:"code"`
		Message string           `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the service-layer error classification onto HTTP status
// codes. Unclassified errors are logged with their cause and surfaced as an
// opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)

	var status int
	switch code {
	case domain.ErrUnauthenticated:
		status = http.StatusUnauthorized
	case domain.ErrPermissionDenied:
		status = http.StatusForbidden
	case domain.ErrNotFound:
		status = http.StatusNotFound
	case domain.ErrInvalidState, domain.ErrAlreadyDone:
		status = http.StatusConflict
	case domain.ErrInvalidArgument:
		status = http.StatusBadRequest
	case domain.ErrExternalFailure:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	var body errorBody
	body.Error.Code = code
	var de *domain.Error
	if errors.As(err, &de) {
		body.Error.Message = de.Message
	} else {
		body.Error.Message = "internal error"
		logger.ErrorContext(r.Context(), "Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, body)
}

// decodeJSON parses and validates a request body into dst. dst must be a
// pointer to a struct carrying `validate` tags.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return domain.WrapError(domain.ErrInvalidArgument, "failed to read request body", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.WrapError(domain.ErrInvalidArgument, "malformed JSON body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return domain.WrapError(domain.ErrInvalidArgument, "request validation failed: "+err.Error(), err)
	}
	return nil
}
