package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/SergeyParamoshkin/folio/internal/errresponse"
	"github.com/SergeyParamoshkin/folio/internal/logctx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// LoginRequest is the request payload for POST /session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *LoginRequest) Bind(r *http.Request) error {
	if l.Email == "" || l.Password == "" {
		return errors.New("email and password are required")
	}

	return nil
}

// Response is the session payload. Token is only present right after login.
type Response struct {
	Authenticated bool     `json:"authenticated"`
	Session       *Session `json:"session,omitempty"`
	Token         string   `json:"token,omitempty"`
}

func (s *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Routes mounts login, presence and logout.
func (m *Manager) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", m.HandleLogin)
	r.Get("/", Current)
	r.Delete("/", Logout)

	return r
}

// HandleLogin handles POST /session.
func (m *Manager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	log := logctx.From(r.Context())

	data := &LoginRequest{}
	if err := render.Bind(r, data); err != nil {
		if err := render.Render(w, r, errresponse.ErrInvalidRequest(err)); err != nil {
			log.Errorw("render", "error", err)
		}

		return
	}

	token, s, err := m.Login(data.Email, data.Password)
	if err != nil {
		log.Infow("operator login rejected", "email", data.Email)
		if err := render.Render(w, r, errresponse.ErrBadCredentials); err != nil {
			log.Errorw("render", "error", err)
		}

		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	log.Infow("operator logged in", "email", s.Email)

	if err := render.Render(w, r, &Response{Authenticated: true, Session: s, Token: token}); err != nil {
		log.Errorw("render", "error", err)
	}
}

// Current handles GET /session.
func Current(w http.ResponseWriter, r *http.Request) {
	s := FromContext(r.Context())
	if err := render.Render(w, r, &Response{Authenticated: s != nil, Session: s}); err != nil {
		logctx.From(r.Context()).Errorw("render", "error", err)
	}
}

// Logout handles DELETE /session. Tokens are stateless; logging out drops
// the cookie and a bearer token stays valid until it expires.
func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	render.NoContent(w, r)
}
