package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	config "carenest/shared"
)

const cookieIssuer = "carenest-portal"

// Cookies signs the session id into an HS256 token carried by an HttpOnly
// cookie. The token holds nothing but the id.
type Cookies struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCookies(cfg config.SessionConfig) *Cookies {
	return &Cookies{
		name:   cfg.CookieName,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		secure: cfg.Secure,
	}
}

func (c *Cookies) Name() string { return c.name }

func (c *Cookies) Sign(sid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  sid,
		Issuer:   cookieIssuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *Cookies) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
	)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("session id is not a uuid: %w", err)
	}
	return claims.Subject, nil
}

// Read returns the session id carried by the request, if any.
func (c *Cookies) Read(r *http.Request) (string, error) {
	ck, err := r.Cookie(c.name)
	if err != nil {
		return "", err
	}
	return c.Parse(ck.Value)
}

func (c *Cookies) Write(w http.ResponseWriter, sid string) error {
	token, err := c.Sign(sid)
	if err != nil {
		return err
	}
	ck := &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.ttl > 0 {
		ck.MaxAge = int(c.ttl.Seconds())
	}
	http.SetCookie(w, ck)
	return nil
}

// Manager hands out one Session per request.
type Manager struct {
	storage Storage
	cookies *Cookies
}

func NewManager(storage Storage, cookies *Cookies) *Manager {
	return &Manager{storage: storage, cookies: cookies}
}

func (m *Manager) Storage() Storage { return m.storage }

// Open resolves the request's session. A missing, tampered or expired cookie
// starts a fresh session and a new cookie is written.
func (m *Manager) Open(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if sid, err := m.cookies.Read(r); err == nil {
		return New(sid, m.storage), nil
	}

	sid := uuid.NewString()
	if err := m.cookies.Write(w, sid); err != nil {
		return nil, fmt.Errorf("write session cookie: %w", err)
	}
	return New(sid, m.storage), nil
}

// Rotate drops everything stored under old and hands out a fresh, empty
// session behind a newly written cookie.
func (m *Manager) Rotate(ctx context.Context, w http.ResponseWriter, old *Session) (*Session, error) {
	if old != nil {
		if err := m.storage.Delete(ctx, old.ID(), allKeys...); err != nil {
			return nil, fmt.Errorf("clear old session: %w", err)
		}
	}

	sid := uuid.NewString()
	if err := m.cookies.Write(w, sid); err != nil {
		return nil, fmt.Errorf("write session cookie: %w", err)
	}
	s := New(sid, m.storage)
	s.loading = false
	return s, nil
}
