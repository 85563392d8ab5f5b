package auth

import (
	"time"

	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

// Authenticator checks the single admin credential pair. The plaintext
// password from the environment is hashed once at startup so login only
// ever compares against the hash.
type Authenticator struct {
	username     string
	passwordHash string
	tokens       *TokenManager
}

// NewAuthenticator hashes the configured admin password. An empty password
// disables admin login entirely.
func NewAuthenticator(username, password string, bcryptCost int, tokens *TokenManager) (*Authenticator, error) {
	a := &Authenticator{username: username, tokens: tokens}
	if password == "" {
		return a, nil
	}
	hash, err := HashPassword(password, bcryptCost)
	if err != nil {
		return nil, err
	}
	a.passwordHash = hash
	return a, nil
}

// Enabled reports whether an admin credential is configured.
func (a *Authenticator) Enabled() bool {
	return a.passwordHash != ""
}

// Login verifies the credentials and issues a token.
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, apperrors.NewUnauthorized("admin login is not configured")
	}
	if username != a.username || ComparePassword(a.passwordHash, password) != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	return a.tokens.GenerateToken(username)
}
