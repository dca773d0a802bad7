// Package auth resolves the current user for every request. Two credential
// paths exist, local email/password and OIDC, and both converge on the same
// server-side session row and claims shape.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
	"github.com/shopops/backoffice/pkg/logger"
)

// DefaultSessionTTL is how long a session stays valid without re-auth.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Config carries the signing secret and the OIDC provider endpoints. OIDC is
// optional; when ClientID is empty the OIDC endpoints report 404.
type Config struct {
	Secret     string
	SessionTTL time.Duration

	OIDC OIDCConfig
}

// OIDCConfig describes one upstream identity provider.
type OIDCConfig struct {
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       string
	Provider     string
}

// Enabled reports whether an OIDC provider is configured.
func (c OIDCConfig) Enabled() bool { return c.ClientID != "" }

// Service issues and resolves sessions.
type Service struct {
	store  storage.UserStore
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// New creates a configured auth service.
func New(store storage.UserStore, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.OIDC.Scopes == "" {
		cfg.OIDC.Scopes = "openid email profile"
	}
	if cfg.OIDC.Provider == "" {
		cfg.OIDC.Provider = "oidc"
	}
	return &Service{
		store:  store,
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

// SessionTTL returns the configured session lifetime, for cookie expiry.
func (s *Service) SessionTTL() time.Duration { return s.cfg.SessionTTL }

// OIDCEnabled reports whether the OIDC login path is available.
func (s *Service) OIDCEnabled() bool { return s.cfg.OIDC.Enabled() }

// hashToken is the session lookup key: the raw JWT never touches the
// database.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func claimsFor(u identity.User, method identity.AuthMethod) identity.Claims {
	return identity.Claims{
		UserID:     u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Picture:    u.Picture,
		Role:       u.Role,
		AuthMethod: method,
	}
}

// issueSession signs a JWT for the user and records the session row.
func (s *Service) issueSession(ctx context.Context, u identity.User, method identity.AuthMethod) (string, error) {
	now := time.Now().UTC()
	expires := now.Add(s.cfg.SessionTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	_, err = s.store.CreateSession(ctx, identity.Session{
		UserID:     u.ID,
		TokenHash:  hashToken(signed),
		AuthMethod: method,
		ExpiresAt:  expires,
	})
	if err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	return signed, nil
}

// Login checks a local credential and issues a session. Every failure mode
// resolves to the same unauthorized error so callers cannot probe accounts.
func (s *Service) Login(ctx context.Context, email, password string) (identity.Claims, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return identity.Claims{}, "", errs.ErrUnauthorized
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil || u.PasswordHash == "" || !u.IsActive {
		return identity.Claims{}, "", errs.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return identity.Claims{}, "", errs.ErrUnauthorized
	}

	token, err := s.issueSession(ctx, u, identity.AuthLocal)
	if err != nil {
		return identity.Claims{}, "", err
	}
	s.log.WithField("user_id", u.ID).Info("user logged in")
	return claimsFor(u, identity.AuthLocal), token, nil
}

// CurrentUser resolves a session token to fresh claims. The user row is
// re-read on every call so role changes and deactivation apply immediately.
// OIDC sessions silently refresh expired provider tokens; when refresh fails
// the session is deleted and the caller must re-authenticate.
func (s *Service) CurrentUser(ctx context.Context, token string) (identity.Claims, error) {
	if token == "" {
		return identity.Claims{}, errs.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return identity.Claims{}, errs.ErrUnauthorized
	}

	sess, err := s.store.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		return identity.Claims{}, errs.ErrUnauthorized
	}
	now := time.Now().UTC()
	if now.After(sess.ExpiresAt) {
		_ = s.store.DeleteSession(ctx, sess.ID)
		return identity.Claims{}, errs.ErrUnauthorized
	}

	u, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil || !u.IsActive {
		return identity.Claims{}, errs.ErrUnauthorized
	}

	if sess.AuthMethod == identity.AuthOIDC {
		if err := s.ensureFreshProviderTokens(ctx, u.ID); err != nil {
			_ = s.store.DeleteSession(ctx, sess.ID)
			s.log.WithError(err).WithField("user_id", u.ID).Info("provider token refresh failed, session cleared")
			return identity.Claims{}, errs.ErrUnauthorized
		}
	}

	return claimsFor(u, sess.AuthMethod), nil
}

// Logout deletes the session row for a token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sess, err := s.store.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil
	}
	return s.store.DeleteSession(ctx, sess.ID)
}

// PruneSessions deletes expired session rows.
func (s *Service) PruneSessions(ctx context.Context) error {
	return s.store.DeleteExpiredSessions(ctx, time.Now().UTC())
}

// NewState returns a random state value for the OIDC round trip.
func NewState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// AuthorizeURL builds the provider redirect for the given state.
func (s *Service) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.cfg.OIDC.ClientID)
	q.Set("redirect_uri", s.cfg.OIDC.RedirectURL)
	q.Set("scope", s.cfg.OIDC.Scopes)
	q.Set("state", state)
	return s.cfg.OIDC.AuthorizeURL + "?" + q.Encode()
}
