package session

import (
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/folio/internal/errresponse"
	"github.com/SergeyParamoshkin/folio/internal/logctx"
	"github.com/go-chi/render"
)

// Middleware parses the session token once at the edge, from the
// Authorization bearer header or the session cookie, and attaches the
// session to the request context. Requests without a valid token pass
// through anonymous.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		if token == "" {
			if c, err := r.Cookie(CookieName); err == nil {
				token = c.Value
			}
		}
		if token == "" {
			next.ServeHTTP(w, r)

			return
		}

		s, err := m.Parse(token)
		if err != nil {
			logctx.From(r.Context()).Debugw("ignoring session token", "error", err)
			next.ServeHTTP(w, r)

			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}

	return ""
}

// Required middleware restricts access to requests carrying a session.
func Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			if err := render.Render(w, r, errresponse.ErrUnauthorized); err != nil {
				logctx.From(r.Context()).Errorw("render unauthorized", "error", err)
			}

			return
		}
		next.ServeHTTP(w, r)
	})
}
