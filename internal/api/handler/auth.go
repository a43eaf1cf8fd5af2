// internal/api/handler/auth.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"formauth-server/internal/api/middleware"
	"formauth-server/internal/domain/auth"
	"formauth-server/internal/domain/form"
	"formauth-server/pkg/errors"
)

type AuthHandler struct {
	authService *auth.AuthService
	log         *slog.Logger
}

func NewAuthHandler(as *auth.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: as,
		log:         log,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, errors.NewBadRequestError("invalid request payload"), http.StatusBadRequest)
		return
	}

	f := form.NewLogin()
	defer f.Stop()
	out, err := h.authService.Login(r.Context(), middleware.ClientIDFrom(r.Context()), f, &req)
	if err != nil {
		h.fail(w, r, err, out)
		return
	}
	WriteJSON(w, r, out, http.StatusOK)
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, errors.NewBadRequestError("invalid request payload"), http.StatusBadRequest)
		return
	}

	f := form.NewSignup()
	defer f.Stop()
	out, err := h.authService.Signup(r.Context(), middleware.ClientIDFrom(r.Context()), f, &req)
	if err != nil {
		h.fail(w, r, err, out)
		return
	}
	WriteJSON(w, r, out, http.StatusCreated)
}

// Preference returns the remembered email for the login form, if any.
func (h *AuthHandler) Preference(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authService.Preference(r.Context(), middleware.ClientIDFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	WriteJSON(w, r, resp, http.StatusOK)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ForgotPasswordRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, errors.NewBadRequestError("invalid request payload"), http.StatusBadRequest)
		return
	}

	resp, err := h.authService.ForgotPassword(&req)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	WriteJSON(w, r, resp, http.StatusOK)
}

type FormStateResponse struct {
	State auth.State    `json:"state"`
	Form  form.Snapshot `json:"form"`
}

// FormState reports the client's submission state together with a freshly
// rendered form, prefilled from the remembered preference for login.
func (h *AuthHandler) FormState(w http.ResponseWriter, r *http.Request) {
	kind, err := form.ParseKind(chi.URLParam(r, "form"))
	if err != nil {
		WriteError(w, r, errors.NewBadRequestError(err.Error()), http.StatusNotFound)
		return
	}
	clientID := middleware.ClientIDFrom(r.Context())

	f := form.New(kind)
	defer f.Stop()
	if err := h.authService.Prefill(r.Context(), clientID, f); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	WriteJSON(w, r, FormStateResponse{
		State: h.authService.State(clientID, kind),
		Form:  f.Snapshot(),
	}, http.StatusOK)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error, out *auth.Outcome) {
	status, public := statusFor(err)
	logFailure(h.log, r, status, err)
	writeError(w, r, public, status, out)
}
