package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	domain "github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/app/storage/memory"
	"github.com/shopops/backoffice/internal/errs"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store, nil), store
}

func TestCreateUser_HashesPassword(t *testing.T) {
	svc, _ := newService(t)

	u, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "  Admin@Example.COM ",
		Name:     "Admin",
		Role:     "admin",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.Email != "admin@example.com" {
		t.Errorf("email = %q, want lowercased and trimmed", u.Email)
	}
	if !u.IsActive {
		t.Error("new users should be active")
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct horse" {
		t.Error("password must be stored as a bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
}

func TestCreateUser_NoPasswordAllowed(t *testing.T) {
	svc, _ := newService(t)
	u, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "sso@example.com", Role: "viewer"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.PasswordHash != "" {
		t.Error("OIDC-only accounts should have no credential")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "not-an-email", Role: "admin"}); err == nil {
		t.Error("invalid email should be rejected")
	}
	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.com", Role: "emperor"}); err == nil {
		t.Error("unknown role should be rejected")
	}
}

func TestSetActive_NoOpWhenUnchanged(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, _ := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.com", Role: "viewer"})

	again, err := svc.SetActive(ctx, u.ID, true)
	if err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if !again.IsActive {
		t.Error("user should stay active")
	}

	off, err := svc.SetActive(ctx, u.ID, false)
	if err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if off.IsActive {
		t.Error("user should be deactivated")
	}
}

func TestInvite_RejectsExistingUser(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.com", Role: "viewer"}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	_, err := svc.Invite(ctx, "A@b.com", "marketing", "")
	if !errors.Is(err, errs.ErrConflict) {
		t.Errorf("Invite() error = %v, want conflict", err)
	}
}

func TestInvite_IssuesToken(t *testing.T) {
	svc, _ := newService(t)
	inv, err := svc.Invite(context.Background(), "new@b.com", "marketing", "admin-1")
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	if len(inv.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(inv.Token))
	}
	if inv.Used {
		t.Error("fresh invitation must be unused")
	}
	if !inv.ExpiresAt.After(time.Now()) {
		t.Error("invitation should expire in the future")
	}
}

func TestAccept_CreatesUserAndBurnsToken(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "new@b.com", "marketing", "")
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}

	u, err := svc.Accept(ctx, inv.Token, "New Hire", "longenough")
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if u.Role != domain.RoleMarketing {
		t.Errorf("role = %s, want marketing", u.Role)
	}
	if !u.IsActive {
		t.Error("accepted user must be active")
	}

	// A token can never be redeemed twice.
	if _, err := svc.Accept(ctx, inv.Token, "Imposter", "longenough"); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("second Accept() error = %v, want conflict", err)
	}

	stored, err := store.GetUserByEmail(ctx, "new@b.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if stored.ID != u.ID {
		t.Errorf("stored user %s != accepted user %s", stored.ID, u.ID)
	}
}

// failingUserStore rejects user creation to exercise partial-failure paths.
type failingUserStore struct {
	storage.UserStore
}

func (f *failingUserStore) CreateUser(context.Context, domain.User) (domain.User, error) {
	return domain.User{}, errors.New("store unavailable")
}

func TestAccept_FailedCreateLeavesNoRedeemableToken(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "new@b.com", "marketing", "")
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}

	broken := New(&failingUserStore{UserStore: store}, nil)
	if _, err := broken.Accept(ctx, inv.Token, "New Hire", "longenough"); err == nil {
		t.Fatal("Accept() should surface the store failure")
	}

	if _, err := store.GetUserByEmail(ctx, "new@b.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("no account should exist after a failed accept, err = %v", err)
	}
	// An account must never coexist with a still-redeemable token; the token
	// is spent even when the account mutation fails.
	if _, err := svc.Accept(ctx, inv.Token, "Retry", "longenough"); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("retry Accept() error = %v, want conflict", err)
	}
}

func TestAccept_ExpiredInvitation(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	inv, err := store.CreateInvitation(ctx, domain.Invitation{
		Email:     "late@b.com",
		Role:      domain.RoleViewer,
		Token:     "expired-token",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateInvitation() error = %v", err)
	}

	_, err = svc.Accept(ctx, inv.Token, "Late", "longenough")
	if !errors.Is(err, errs.ErrConflict) {
		t.Errorf("Accept() error = %v, want conflict", err)
	}
}

func TestAccept_ShortPassword(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Accept(context.Background(), "whatever", "x", "short")
	var verr *errs.ValidationError
	if !errors.As(err, &verr) || verr.Field != "password" {
		t.Errorf("Accept() error = %v, want password validation error", err)
	}
}

func TestAccept_ReactivatesExistingUser(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, _ := svc.CreateUser(ctx, CreateUserInput{Email: "back@b.com", Role: "viewer"})
	if _, err := svc.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	// Inviting an existing user is a conflict, so seed the invitation directly.
	inv, err := svc.store.CreateInvitation(ctx, domain.Invitation{
		Email:     "back@b.com",
		Role:      domain.RoleAdmin,
		Token:     "rejoin-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateInvitation() error = %v", err)
	}

	accepted, err := svc.Accept(ctx, inv.Token, "Back Again", "longenough")
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if accepted.ID != u.ID {
		t.Errorf("expected same account %s, got %s", u.ID, accepted.ID)
	}
	if !accepted.IsActive || accepted.Role != domain.RoleAdmin {
		t.Errorf("account should be reactivated with invited role, got active=%v role=%s", accepted.IsActive, accepted.Role)
	}
}

func TestResend_ExtendsExpiryKeepsToken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inv, _ := svc.Invite(ctx, "soon@b.com", "viewer", "")
	resent, err := svc.Resend(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Resend() error = %v", err)
	}
	if resent.Token != inv.Token {
		t.Error("resend must keep the original token")
	}
	if resent.ExpiresAt.Before(inv.ExpiresAt) {
		t.Error("resend must extend the expiry")
	}
}

func TestResend_UsedInvitation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inv, _ := svc.Invite(ctx, "used@b.com", "viewer", "")
	if _, err := svc.Accept(ctx, inv.Token, "Used", "longenough"); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if _, err := svc.Resend(ctx, inv.ID); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("Resend() error = %v, want conflict", err)
	}
}

func TestDeleteUser_Missing(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.DeleteUser(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrNotFound", err)
	}
}
