// Package visitor gives every browser a stable anonymous identifier,
// carried in a long-lived cookie, so per-visitor state such as the like-set
// can be keyed without an account.
package visitor

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	CookieName = "folio_visitor"
	Header     = "X-Visitor-ID"

	cookieAge = 10 * 365 * 24 * time.Hour
)

type ctxKey struct{}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the visitor id, or "" outside Middleware.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)

	return id
}

// Middleware reads the visitor id from the cookie or the X-Visitor-ID
// header (non-browser clients), minting and setting a new one when
// neither holds a valid UUID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(CookieName); err == nil && valid(c.Value) {
			id = c.Value
		} else if h := r.Header.Get(Header); valid(h) {
			id = h
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cookieAge / time.Second),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(Header, id)

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), id)))
	})
}

func valid(s string) bool {
	_, err := uuid.Parse(s)

	return s != "" && err == nil
}
