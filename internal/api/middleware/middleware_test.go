package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIDMintsCookie(t *testing.T) {
	var seen string
	h := ClientID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ClientCookie, cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestClientIDKeepsValidCookie(t *testing.T) {
	id := uuid.NewString()
	var seen string
	h := ClientID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, seen)
	assert.Empty(t, rec.Result().Cookies())
}

func TestClientIDReplacesMalformedCookie(t *testing.T) {
	var seen string
	h := ClientID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: "../../etc"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, "../../etc", seen)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := ClientID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 192.0.2.7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.True(t, strings.Contains(line, "status=418"), line)
	assert.Contains(t, line, "path=/brew")
	assert.Contains(t, line, "remote_ip=192.0.2.7")
	assert.Contains(t, line, "client_id=")
}
