package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	"github.com/lightsoft-dev/light-archive/internal/logger"
)

const defaultSessionTTL = 720 * time.Minute

// dummyHash keeps the password check running when no admin account is configured.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("light-archive"), bcrypt.MinCost)

// Credentials are the admin account. PasswordHash is a bcrypt hash.
type Credentials struct {
	Email        string
	PasswordHash string
}

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Service authenticates admins and validates bearer tokens.
type Service struct {
	creds    Credentials
	sessions SessionStore
	apiKeys  [][]byte
	ttl      time.Duration
	now      func() time.Time
}

// New creates an auth service. Empty api keys are ignored.
func New(creds Credentials, sessions SessionStore, apiKeys []string) *Service {
	s := &Service{
		creds:    Credentials{Email: normalizeEmail(creds.Email), PasswordHash: creds.PasswordHash},
		sessions: sessions,
		ttl:      defaultSessionTTL,
		now:      time.Now,
	}
	for _, k := range apiKeys {
		if k != "" {
			s.apiKeys = append(s.apiKeys, []byte(k))
		}
	}
	return s
}

// WithSessionTTL configures how long a login stays valid.
func (s *Service) WithSessionTTL(d time.Duration) *Service {
	if d > 0 {
		s.ttl = d
	}
	return s
}

// Enabled reports whether any credential is configured. When false, admin
// routes are open.
func (s *Service) Enabled() bool {
	return s.loginEnabled() || len(s.apiKeys) > 0
}

func (s *Service) loginEnabled() bool {
	return s.creds.Email != "" && s.creds.PasswordHash != ""
}

// Login checks the admin credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	hash := dummyHash
	if s.loginEnabled() {
		hash = []byte(s.creds.PasswordHash)
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(s.creds.Email)) == 1
	passOK := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil

	if !s.loginEnabled() || !emailOK || !passOK {
		logger.FromContext(ctx).Warn("admin login rejected", zap.String("email", email))
		return Session{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.sessions.Put(ctx, token, s.ttl); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{Token: token, ExpiresAt: s.now().Add(s.ttl)}, nil
}

// Validate accepts a static api key or a live session token.
func (s *Service) Validate(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("missing token: %w", domain.ErrUnauthorized)
	}
	for _, k := range s.apiKeys {
		if subtle.ConstantTimeCompare([]byte(token), k) == 1 {
			return nil
		}
	}
	ok, err := s.sessions.Exists(ctx, token)
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	if !ok {
		return fmt.Errorf("unknown or expired token: %w", domain.ErrUnauthorized)
	}
	return nil
}

// Logout revokes a session token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// HashPassword returns a bcrypt hash for use in auth.admin_password_hash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
