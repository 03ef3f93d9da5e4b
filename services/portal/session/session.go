package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/oauth2"

	"carenest/services/portal/models"
)

// Persisted keys. Names match what the browser client kept in localStorage.
const (
	KeyAccess                 = "access"
	KeyRefresh                = "refresh"
	KeyRole                   = "role"
	KeyUserID                 = "user_id"
	KeyVerificationModalShown = "verification_modal_shown"
	KeyFlashKind              = "flash_kind"
	KeyFlashMessage           = "flash_message"
)

var authKeys = []string{KeyAccess, KeyRefresh, KeyRole, KeyUserID}

var allKeys = append(append([]string{}, authKeys...), KeyVerificationModalShown, KeyFlashKind, KeyFlashMessage)

// ErrNoToken is returned by a token source when nothing is stored.
var ErrNoToken = errors.New("session: no access token stored")

// Session is the per-browser authentication state. It starts in the loading
// state and leaves it once Restore, Login or Logout completes.
type Session struct {
	id      string
	storage Storage

	mu            sync.RWMutex
	loading       bool
	authenticated bool
	role          models.Role
	userID        string
}

func New(id string, storage Storage) *Session {
	return &Session{id: id, storage: storage, loading: true}
}

func (s *Session) ID() string { return s.id }

// Restore reads the persisted role and access token. Both must be present
// for the session to count as authenticated. On a storage error the session
// stays in the loading state.
func (s *Session) Restore(ctx context.Context) error {
	access, hasAccess, err := s.storage.Get(ctx, s.id, KeyAccess)
	if err != nil {
		return fmt.Errorf("restore access token: %w", err)
	}
	role, hasRole, err := s.storage.Get(ctx, s.id, KeyRole)
	if err != nil {
		return fmt.Errorf("restore role: %w", err)
	}
	userID, _, err := s.storage.Get(ctx, s.id, KeyUserID)
	if err != nil {
		return fmt.Errorf("restore user id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if hasAccess && hasRole && access != "" && role != "" {
		s.authenticated = true
		s.role = models.Role(role)
		s.userID = userID
		return nil
	}
	s.authenticated = false
	s.role = ""
	s.userID = ""
	return nil
}

// Login persists the token pair, role and user id together and marks the
// session authenticated.
func (s *Session) Login(ctx context.Context, tokens models.TokenPair, role models.Role, userID int64) error {
	uid := strconv.FormatInt(userID, 10)
	err := s.storage.Set(ctx, s.id, map[string]string{
		KeyAccess:  tokens.Access,
		KeyRefresh: tokens.Refresh,
		KeyRole:    string(role),
		KeyUserID:  uid,
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.authenticated = true
	s.role = role
	s.userID = uid
	return nil
}

// Logout removes every persisted auth key and the one-time verification
// modal flag.
func (s *Session) Logout(ctx context.Context) error {
	keys := append(append([]string{}, authKeys...), KeyVerificationModalShown)
	err := s.storage.Delete(ctx, s.id, keys...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.authenticated = false
	s.role = ""
	s.userID = ""

	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) VerificationModalShown(ctx context.Context) (bool, error) {
	v, ok, err := s.storage.Get(ctx, s.id, KeyVerificationModalShown)
	if err != nil {
		return false, err
	}
	return ok && v == "true", nil
}

func (s *Session) MarkVerificationModalShown(ctx context.Context) error {
	return s.storage.Set(ctx, s.id, map[string]string{KeyVerificationModalShown: "true"})
}

// TokenSource returns an oauth2 token source bound to ctx that reads the
// stored tokens on every call.
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storedTokenSource{ctx: ctx, s: s}
}

type storedTokenSource struct {
	ctx context.Context
	s   *Session
}

func (ts *storedTokenSource) Token() (*oauth2.Token, error) {
	access, ok, err := ts.s.storage.Get(ts.ctx, ts.s.id, KeyAccess)
	if err != nil {
		return nil, err
	}
	if !ok || access == "" {
		return nil, ErrNoToken
	}
	refresh, _, err := ts.s.storage.Get(ts.ctx, ts.s.id, KeyRefresh)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

// AccessToken returns the stored access token, or ErrNoToken.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	tok, err := s.TokenSource(ctx).Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// SetFlash stores a one-shot banner for the next rendered page.
func (s *Session) SetFlash(ctx context.Context, f models.Flash) error {
	return s.storage.Set(ctx, s.id, map[string]string{
		KeyFlashKind:    f.Kind,
		KeyFlashMessage: f.Message,
	})
}

// PopFlash returns and clears the pending banner, if any.
func (s *Session) PopFlash(ctx context.Context) (*models.Flash, error) {
	msg, ok, err := s.storage.Get(ctx, s.id, KeyFlashMessage)
	if err != nil || !ok || msg == "" {
		return nil, err
	}
	kind, _, err := s.storage.Get(ctx, s.id, KeyFlashKind)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Delete(ctx, s.id, KeyFlashKind, KeyFlashMessage); err != nil {
		return nil, err
	}
	return &models.Flash{Kind: kind, Message: msg}, nil
}
