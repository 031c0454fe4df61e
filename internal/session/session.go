// Package session authenticates the site operator and threads the
// resulting session through request contexts.
//
// Holding any valid session is the whole authorization model: there are no
// roles.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName = "folio_session"
	DefaultTTL = 12 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
)

// Session is an authenticated operator session.
type Session struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request session, or nil when the caller is
// anonymous.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)

	return s
}

// Config holds the operator credentials and token settings.
type Config struct {
	Email        string
	PasswordHash string // bcrypt
	Secret       string
	Issuer       string
	TTL          time.Duration
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	cfg.Email = strings.ToLower(strings.TrimSpace(cfg.Email))

	return &Manager{cfg: cfg, now: time.Now}, nil
}

// Login checks the operator credentials and issues a token.
func (m *Manager) Login(email, password string) (string, *Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if m.cfg.Email == "" || m.cfg.PasswordHash == "" || email != m.cfg.Email {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.cfg.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	return m.Issue(email)
}

func (m *Manager) Issue(email string) (string, *Session, error) {
	now := m.now()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	return token, &Session{
		Subject:   email,
		Email:     email,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Parse verifies a token and returns its session.
func (m *Manager) Parse(token string) (*Session, error) {
	var c claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}

	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return []byte(m.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return &Session{
		Subject:   c.Subject,
		Email:     c.Email,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// TTL is the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }
