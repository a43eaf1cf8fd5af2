// internal/api/middleware/client.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ClientCookie names the cookie that identifies a browser across requests.
// Remembered preferences and the submission guard are keyed on it.
const ClientCookie = "client_id"

const clientCookieMaxAge = 365 * 24 * time.Hour

type ctxKey int

const clientIDKey ctxKey = iota

// ClientID ensures every request carries a client identifier, minting a new
// UUID cookie when the browser has none or sends a malformed one.
func ClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(ClientCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(clientCookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), id)))
	})
}

func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey, id)
}

// ClientIDFrom returns the identifier stored by ClientID, or "".
func ClientIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}
