// internal/api/handler/response.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"formauth-server/internal/domain/auth"
	"formauth-server/pkg/errors"
)

// Error wraps error messages for consistent JSON responses. Validation
// failures also carry the field errors and the form as it should now render.
type Error struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Fields  []errors.FieldError `json:"fields,omitempty"`
	Alert   string              `json:"alert,omitempty"`
	Outcome *auth.Outcome       `json:"outcome,omitempty"`
}

// WriteJSON sends a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, r *http.Request, data interface{}, status int) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// WriteError sends a JSON error response with the given status code
func WriteError(w http.ResponseWriter, r *http.Request, err error, status int) {
	writeError(w, r, err, status, nil)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, status int, out *auth.Outcome) {
	body := Error{Status: status, Message: err.Error(), Outcome: out}
	if verr, ok := err.(*errors.ValidationError); ok {
		body.Fields = verr.Fields
		body.Alert = verr.Alert
	}
	WriteJSON(w, r, body, status)
}

// statusFor maps a domain error onto its HTTP status. Unknown errors are
// replaced by a generic internal error so nothing leaks to the client.
func statusFor(err error) (int, error) {
	switch e := err.(type) {
	case *errors.ValidationError:
		return http.StatusUnprocessableEntity, e
	case *errors.AuthenticationError:
		return http.StatusUnauthorized, e
	case *errors.SubmissionError:
		return http.StatusBadGateway, e
	case *errors.ConflictError:
		return http.StatusConflict, e
	case *errors.BadRequestError:
		return http.StatusBadRequest, e
	case *errors.InternalError:
		return http.StatusInternalServerError, e
	default:
		return http.StatusInternalServerError, errors.NewInternalError()
	}
}

func logFailure(log *slog.Logger, r *http.Request, status int, err error) {
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.Log(r.Context(), level, "request failed", "path", r.URL.Path, "status", status, "error", err)
}
