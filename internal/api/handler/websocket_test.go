package handler

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formauth-server/internal/domain/auth"
	"formauth-server/internal/domain/form"
)

func dialLive(t *testing.T, srv *httptest.Server, kind string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + kind
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until one of type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	for i := 0; i < 10; i++ {
		if msg := readMessage(t, conn); msg.Type == typ {
			return msg
		}
	}
	t.Fatalf("no %s message received", typ)
	return Message{}
}

func send(t *testing.T, conn *websocket.Conn, ev Event) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ev))
}

func TestLiveLoginFieldEvents(t *testing.T) {
	srv := newTestServer(t, 1, 1)
	conn := dialLive(t, srv, "login")

	initial := readMessage(t, conn)
	require.Equal(t, MessageSnapshot, initial.Type)
	require.NotNil(t, initial.Form)
	assert.Equal(t, form.Login, initial.Form.Form)

	send(t, conn, Event{Type: EventFocus, Field: form.FieldEmail})
	msg := readMessage(t, conn)
	email, _ := msg.Form.Field(form.FieldEmail)
	assert.Equal(t, form.ScaleFocused, email.Transform)

	send(t, conn, Event{Type: EventInput, Field: form.FieldEmail, Value: "bad"})
	readMessage(t, conn)
	send(t, conn, Event{Type: EventBlur, Field: form.FieldEmail})
	msg = readMessage(t, conn)
	email, _ = msg.Form.Field(form.FieldEmail)
	assert.Equal(t, auth.MsgEmailInvalid, email.ErrorMessage)
	assert.Equal(t, form.ScaleRest, email.Transform)

	send(t, conn, Event{Type: EventToggle, Field: form.FieldPassword})
	msg = readMessage(t, conn)
	require.Equal(t, MessageVisibility, msg.Type)
	assert.Equal(t, form.Visibility{Field: form.FieldPassword, Type: form.InputText, Icon: form.IconHide}, *msg.Visibility)
	readMessage(t, conn)

	send(t, conn, Event{Type: EventToggle, Field: form.FieldEmail})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)

	send(t, conn, Event{Type: EventEnter, Field: form.FieldEmail})
	msg = readMessage(t, conn)
	assert.Equal(t, form.FieldPassword, msg.Form.Focused)

	send(t, conn, Event{Type: "shout"})
	msg = readMessage(t, conn)
	require.Equal(t, MessageError, msg.Type)
	assert.Equal(t, http.StatusBadRequest, msg.Error.Status)
}

func TestLiveLoginSubmit(t *testing.T) {
	srv := newTestServer(t, 1, 1)
	conn := dialLive(t, srv, "login")
	readMessage(t, conn)

	send(t, conn, Event{Type: EventSubmit})
	msg := readUntil(t, conn, MessageError)
	assert.Equal(t, http.StatusUnprocessableEntity, msg.Error.Status)
	assert.Len(t, msg.Error.Fields, 2)

	send(t, conn, Event{Type: EventInput, Field: form.FieldEmail, Value: "jo@example.com"})
	send(t, conn, Event{Type: EventInput, Field: form.FieldPassword, Value: "Abcdefg1"})
	send(t, conn, Event{Type: EventEnter, Field: form.FieldRememberMe})

	msg = readUntil(t, conn, MessageOutcome)
	require.NotNil(t, msg.Outcome)
	assert.Equal(t, auth.StateSucceeded, msg.Outcome.State)
	assert.True(t, msg.Form.Button.Success)
	pw, _ := msg.Form.Field(form.FieldPassword)
	assert.Empty(t, pw.Value, "password values never leave the server")
}

func TestLiveSignupConfirmAndUnknownForm(t *testing.T) {
	srv := newTestServer(t, 1, 1)
	conn := dialLive(t, srv, "signup")
	readMessage(t, conn)

	send(t, conn, Event{Type: EventInput, Field: form.FieldPassword, Value: "Abcdefg1"})
	readMessage(t, conn)
	send(t, conn, Event{Type: EventInput, Field: form.FieldConfirmPassword, Value: "Abcdefg2"})
	msg := readMessage(t, conn)
	confirm, _ := msg.Form.Field(form.FieldConfirmPassword)
	assert.Equal(t, auth.MsgPasswordMismatch, confirm.ErrorMessage)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/profile", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLiveRememberMeSurvivesReconnect(t *testing.T) {
	srv := newTestServer(t, 1, 1)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	dialer := &websocket.Dialer{Jar: jar, HandshakeTimeout: 2 * time.Second}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/login"

	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Values("Set-Cookie"), "client cookie sent with the upgrade")
	readMessage(t, conn)

	send(t, conn, Event{Type: EventInput, Field: form.FieldEmail, Value: "jo@example.com"})
	send(t, conn, Event{Type: EventInput, Field: form.FieldPassword, Value: "Abcdefg1"})
	send(t, conn, Event{Type: EventInput, Field: form.FieldRememberMe, Value: "true"})
	send(t, conn, Event{Type: EventSubmit})
	msg := readUntil(t, conn, MessageOutcome)
	require.Equal(t, auth.StateSucceeded, msg.Outcome.State)
	conn.Close()

	again, _, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { again.Close() })
	initial := readMessage(t, again)
	email, _ := initial.Form.Field(form.FieldEmail)
	assert.Equal(t, "jo@example.com", email.Value)
	remember, _ := initial.Form.Field(form.FieldRememberMe)
	assert.True(t, remember.Checked)
}
