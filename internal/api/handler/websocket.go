// internal/api/handler/websocket.go
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"formauth-server/internal/api/middleware"
	"formauth-server/internal/domain/auth"
	"formauth-server/internal/domain/form"
	"formauth-server/pkg/errors"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: sameOrigin,
}

// sameOrigin accepts requests without an Origin header and those whose
// origin host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// Event types accepted on the live channel.
const (
	EventInput  = "input"
	EventFocus  = "focus"
	EventBlur   = "blur"
	EventToggle = "toggle"
	EventEnter  = "enter"
	EventSubmit = "submit"
)

// Message types sent on the live channel.
const (
	MessageSnapshot   = "snapshot"
	MessageVisibility = "visibility"
	MessageOutcome    = "outcome"
	MessageError      = "error"
)

type Event struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

type Message struct {
	Type       string           `json:"type"`
	Form       *form.Snapshot   `json:"form,omitempty"`
	Visibility *form.Visibility `json:"visibility,omitempty"`
	Outcome    *auth.Outcome    `json:"outcome,omitempty"`
	Error      *Error           `json:"error,omitempty"`
}

type WebSocketHandler struct {
	authService   *auth.AuthService
	successRevert time.Duration
	log           *slog.Logger

	sessions sync.WaitGroup
}

func NewWebSocketHandler(as *auth.AuthService, successRevert time.Duration, log *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		authService:   as,
		successRevert: successRevert,
		log:           log,
	}
}

// session is one live form bound to one connection.
type session struct {
	id       string
	clientID string
	conn     *websocket.Conn
	form     *form.Form
	svc      *auth.AuthService
	log      *slog.Logger

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	kind, err := form.ParseKind(chi.URLParam(r, "form"))
	if err != nil {
		WriteError(w, r, errors.NewBadRequestError(err.Error()), http.StatusNotFound)
		return
	}

	h.sessions.Add(1)
	defer h.sessions.Done()

	// Upgrade writes only the headers it is given, so a freshly minted
	// client cookie has to be carried over explicitly.
	conn, err := upgrader.Upgrade(w, r, http.Header{"Set-Cookie": w.Header().Values("Set-Cookie")})
	if err != nil {
		// the upgrader has already replied
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	s := &session{
		id:       uuid.NewString(),
		clientID: middleware.ClientIDFrom(r.Context()),
		conn:     conn,
		svc:      h.authService,
	}
	s.log = h.log.With("session", s.id, "client_id", s.clientID, "form", string(kind))

	opts := []form.Option{form.WithOnChange(s.pushSnapshot)}
	if kind == form.Signup {
		opts = append(opts, form.WithSuccessRevert(h.successRevert))
	}
	s.form = form.New(kind, opts...)
	defer s.form.Stop()

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.wg.Wait()
	}()
	// A hijacked connection outlives http.Server.Shutdown; closing it here
	// unblocks the read loop once the server context is cancelled.
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		conn.Close()
	}()

	if err := s.svc.Prefill(ctx, s.clientID, s.form); err != nil {
		s.log.Error("prefill failed", "error", err)
	}
	s.pushSnapshot()
	s.log.Info("live form connected")

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("live form read failed", "error", err)
			}
			break
		}
		s.handle(ctx, ev)
	}
	s.log.Info("live form disconnected")
}

// Wait blocks until every live session has ended or ctx is done.
func (h *WebSocketHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *session) handle(ctx context.Context, ev Event) {
	var err error
	switch ev.Type {
	case EventInput:
		err = s.svc.Input(s.form, ev.Field, ev.Value)
	case EventFocus:
		err = s.form.Focus(ev.Field)
	case EventBlur:
		err = s.svc.Blur(ctx, s.form, ev.Field)
	case EventToggle:
		var vis form.Visibility
		if vis, err = s.form.ToggleVisibility(ev.Field); err == nil {
			s.send(Message{Type: MessageVisibility, Visibility: &vis})
		}
	case EventEnter:
		nav := s.form.Next(ev.Field)
		if nav.Submit {
			s.submit(ctx)
			return
		}
		if nav.Focus == "" {
			return
		}
	case EventSubmit:
		s.submit(ctx)
		return
	default:
		err = errors.NewBadRequestError("unknown event " + ev.Type)
	}
	if err != nil {
		s.sendError(err, nil)
		return
	}
	s.pushSnapshot()
}

// submit runs the flow off the read loop so the form keeps answering field
// events while the backend call is pending.
func (s *session) submit(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		var (
			out *auth.Outcome
			err error
		)
		switch s.form.Kind() {
		case form.Signup:
			out, err = s.svc.Signup(ctx, s.clientID, s.form, &auth.SignupRequest{
				DisplayName:     s.form.Value(form.FieldDisplayName),
				Email:           s.form.Value(form.FieldEmail),
				Password:        s.form.Value(form.FieldPassword),
				ConfirmPassword: s.form.Value(form.FieldConfirmPassword),
				AgreeToTerms:    s.form.Checked(form.FieldAgreeTerms),
			})
		default:
			out, err = s.svc.Login(ctx, s.clientID, s.form, &auth.LoginRequest{
				Email:      s.form.Value(form.FieldEmail),
				Password:   s.form.Value(form.FieldPassword),
				RememberMe: s.form.Checked(form.FieldRememberMe),
			})
		}
		if err != nil {
			s.sendError(err, out)
			return
		}
		s.send(Message{Type: MessageOutcome, Outcome: out, Form: &out.Form})
	}()
}

func (s *session) pushSnapshot() {
	snap := s.form.Snapshot()
	s.send(Message{Type: MessageSnapshot, Form: &snap})
}

func (s *session) sendError(err error, out *auth.Outcome) {
	status, public := statusFor(err)
	body := &Error{Status: status, Message: public.Error(), Outcome: out}
	if verr, ok := public.(*errors.ValidationError); ok {
		body.Fields = verr.Fields
		body.Alert = verr.Alert
	}
	msg := Message{Type: MessageError, Error: body}
	if out != nil {
		msg.Form = &out.Form
	}
	s.send(msg)
}

func (s *session) send(msg Message) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.log.Debug("live form write failed", "type", msg.Type, "error", err)
	}
}
