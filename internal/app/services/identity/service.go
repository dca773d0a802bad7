// Package identity manages user accounts and the invitation flow.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
	"github.com/shopops/backoffice/pkg/logger"
)

// InvitationTTL is how long an invitation stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

// Service coordinates users and invitations.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New creates a configured identity service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("identity")
	}
	return &Service{store: store, log: log}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errs.Validation("email", "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", errs.Validation("email", "email is invalid")
	}
	return email, nil
}

// CreateUserInput describes a directly created account.
type CreateUserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
	Picture  string `json:"picture"`
}

// CreateUser provisions an account. Password is optional; OIDC-only accounts
// have no local credential.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (identity.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return identity.User{}, err
	}
	role, ok := identity.ParseRole(in.Role)
	if !ok {
		return identity.User{}, errs.Validation("role", "unknown role")
	}

	var hash string
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return identity.User{}, fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}

	u, err := s.store.CreateUser(ctx, identity.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		IsActive:     true,
		Picture:      strings.TrimSpace(in.Picture),
		PasswordHash: hash,
	})
	if err != nil {
		return identity.User{}, err
	}
	s.log.WithField("user_id", u.ID).WithField("role", string(role)).Info("user created")
	return u, nil
}

// UpdateUserInput describes the editable account fields.
type UpdateUserInput struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Picture string `json:"picture"`
}

// UpdateUser changes name, role, and picture. Email and active state have
// dedicated flows.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (identity.User, error) {
	role, ok := identity.ParseRole(in.Role)
	if !ok {
		return identity.User{}, errs.Validation("role", "unknown role")
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return identity.User{}, err
	}
	u.Name = strings.TrimSpace(in.Name)
	u.Role = role
	u.Picture = strings.TrimSpace(in.Picture)
	return s.store.UpdateUser(ctx, u)
}

// GetUser fetches one account.
func (s *Service) GetUser(ctx context.Context, id string) (identity.User, error) {
	return s.store.GetUser(ctx, id)
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]identity.User, error) {
	return s.store.ListUsers(ctx)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}

// SetActive flips an account's active flag. Deactivation takes effect on the
// user's next request because sessions re-read the user row.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (identity.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return identity.User{}, err
	}
	if u.IsActive == active {
		return u, nil
	}
	u.IsActive = active
	u, err = s.store.UpdateUser(ctx, u)
	if err != nil {
		return identity.User{}, err
	}
	s.log.WithField("user_id", id).WithField("active", active).Info("user active state changed")
	return u, nil
}

func newInviteToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// Invite issues a single-use invitation for an email address.
func (s *Service) Invite(ctx context.Context, email, roleName, invitedBy string) (identity.Invitation, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return identity.Invitation{}, err
	}
	role, ok := identity.ParseRole(roleName)
	if !ok {
		return identity.Invitation{}, errs.Validation("role", "unknown role")
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return identity.Invitation{}, errs.Conflict("a user with this email already exists")
	}

	token, err := newInviteToken()
	if err != nil {
		return identity.Invitation{}, err
	}
	inv, err := s.store.CreateInvitation(ctx, identity.Invitation{
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(InvitationTTL),
		InvitedBy: invitedBy,
	})
	if err != nil {
		return identity.Invitation{}, err
	}
	s.log.WithField("invitation_id", inv.ID).WithField("role", string(role)).Info("invitation created")
	return inv, nil
}

// Resend extends an unused invitation's expiry by a fresh TTL.
func (s *Service) Resend(ctx context.Context, id string) (identity.Invitation, error) {
	inv, err := s.store.GetInvitation(ctx, id)
	if err != nil {
		return identity.Invitation{}, err
	}
	if inv.Used {
		return identity.Invitation{}, errs.Conflict("invitation has already been used")
	}
	inv.ExpiresAt = time.Now().UTC().Add(InvitationTTL)
	return s.store.UpdateInvitation(ctx, inv)
}

// ListInvitations returns all invitations, newest first.
func (s *Service) ListInvitations(ctx context.Context) ([]identity.Invitation, error) {
	return s.store.ListInvitations(ctx)
}

// DeleteInvitation revokes an invitation.
func (s *Service) DeleteInvitation(ctx context.Context, id string) error {
	return s.store.DeleteInvitation(ctx, id)
}

// Accept redeems an invitation: the invitation must be unused and unexpired,
// and it is marked used before the call returns so a token can never be
// redeemed twice.
func (s *Service) Accept(ctx context.Context, token, name, password string) (identity.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.User{}, errs.Validation("token", "token is required")
	}
	if len(password) < 8 {
		return identity.User{}, errs.Validation("password", "password must be at least 8 characters")
	}

	inv, err := s.store.GetInvitationByToken(ctx, token)
	if err != nil {
		return identity.User{}, err
	}
	if !inv.Redeemable(time.Now().UTC()) {
		return identity.User{}, errs.Conflict("invitation is used or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return identity.User{}, fmt.Errorf("hash password: %w", err)
	}

	// The token is burned before the account mutation so a failure partway
	// through never leaves an active account behind a still-redeemable token.
	inv.Used = true
	if inv, err = s.store.UpdateInvitation(ctx, inv); err != nil {
		return identity.User{}, err
	}

	var user identity.User
	if existing, err := s.store.GetUserByEmail(ctx, inv.Email); err == nil {
		existing.Name = strings.TrimSpace(name)
		existing.Role = inv.Role
		existing.IsActive = true
		existing.PasswordHash = string(hash)
		user, err = s.store.UpdateUser(ctx, existing)
		if err != nil {
			return identity.User{}, err
		}
	} else {
		user, err = s.store.CreateUser(ctx, identity.User{
			Email:        inv.Email,
			Name:         strings.TrimSpace(name),
			Role:         inv.Role,
			IsActive:     true,
			PasswordHash: string(hash),
		})
		if err != nil {
			return identity.User{}, err
		}
	}

	s.log.WithField("user_id", user.ID).
		WithField("invitation_id", inv.ID).
		Info("invitation accepted")
	return user, nil
}
