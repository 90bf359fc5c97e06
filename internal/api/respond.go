package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"go.uber.org/multierr"

	"github.com/matzehuels/pagesmith/pkg/errors"
)

const maxBodyBytes = 4 << 20

type errorResponse struct {
	Message string      `json:"message"`
	Code    errors.Code `json:"code"`
	// Details lists the individual problems of an INVALID_ELEMENT error.
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err's code to a status and writes the error body.
// Internal failures are logged and reported without their cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if code == "" || code == errors.ErrCodeInternal {
			code, msg = errors.ErrCodeInternal, "internal server error"
		}
	}
	writeJSON(w, status, errorResponse{Message: msg, Code: code, Details: details(err)})
}

func details(err error) []string {
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != errors.ErrCodeInvalidElement || e.Cause == nil {
		return nil
	}
	var out []string
	for _, cause := range multierr.Errors(e.Cause) {
		out = append(out, errors.UserMessage(cause))
	}
	return out
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidElement,
		errors.ErrCodeInvalidStyle, errors.ErrCodeUnsupportedFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeProjectNotFound,
		errors.ErrCodeTemplateNotFound, errors.ErrCodeUserNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeUnauthorized, errors.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid JSON body")
	}
	return nil
}
