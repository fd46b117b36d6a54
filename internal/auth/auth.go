// Package auth authenticates dashboard administrators and tracks their
// sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/lead-intake/internal/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionExpired is returned for an unknown, revoked or expired token.
	ErrSessionExpired = errors.New("session expired")
)

// Admin is an authenticated dashboard user.
type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session binds a bearer token to an admin until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	Admin     Admin     `json:"admin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore persists sessions. Get returns ErrSessionExpired for a
// missing or expired token.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

type account struct {
	admin Admin
	hash  []byte
}

// Authenticator checks admin credentials and issues sessions.
type Authenticator struct {
	accounts map[string]account
	sessions SessionStore
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthenticator indexes the configured admins by lower-cased email.
func NewAuthenticator(admins []config.AdminConfig, sessions SessionStore, ttl time.Duration, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}

	accounts := make(map[string]account, len(admins))
	for _, a := range admins {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		accounts[email] = account{
			admin: Admin{
				ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
				Email: email,
				Name:  DisplayName(a.Name, email),
			},
			hash: []byte(a.PasswordHash),
		}
	}

	return &Authenticator{
		accounts: accounts,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// DisplayName returns name, or the local part of email when name is blank.
func DisplayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}

// HashPassword returns a bcrypt hash suitable for AdminConfig.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies the credentials and starts a new session.
func (a *Authenticator) Login(ctx context.Context, email, password string) (Session, error) {
	acct, ok := a.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		a.logger.Info("login rejected", zap.String("op", "auth.Login"), zap.String("reason", "unknown email"))
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		a.logger.Info("login rejected", zap.String("op", "auth.Login"), zap.String("reason", "password mismatch"))
		return Session{}, ErrInvalidCredentials
	}

	session := Session{
		Token:     uuid.New().String(),
		Admin:     acct.admin,
		ExpiresAt: a.now().Add(a.ttl).UTC(),
	}
	if err := a.sessions.Save(ctx, session); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}

	a.logger.Info("admin logged in", zap.String("op", "auth.Login"), zap.String("adminId", acct.admin.ID))
	return session, nil
}

// Logout revokes the session. Unknown tokens are ignored.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Current returns the admin owning a live session.
func (a *Authenticator) Current(ctx context.Context, token string) (Admin, error) {
	if token == "" {
		return Admin{}, ErrSessionExpired
	}
	session, err := a.sessions.Get(ctx, token)
	if err != nil {
		return Admin{}, err
	}
	if !a.now().Before(session.ExpiresAt) {
		_ = a.sessions.Delete(ctx, token)
		return Admin{}, ErrSessionExpired
	}
	return session.Admin, nil
}
