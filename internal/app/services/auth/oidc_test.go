package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/storage/memory"
	"github.com/shopops/backoffice/internal/errs"
)

// fakeProvider stands in for the upstream IdP's token and userinfo endpoints.
type fakeProvider struct {
	srv *httptest.Server

	grantTypes []string
	user       userInfo
	refreshOK  bool
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{
		user:      userInfo{Subject: "sub-1", Email: "sso@example.com", Name: "SSO User"},
		refreshOK: true,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		grant := r.PostFormValue("grant_type")
		p.grantTypes = append(p.grantTypes, grant)
		if grant == "refresh_token" && !p.refreshOK {
			http.Error(w, "refresh denied", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(tokenResponse{
			AccessToken:  "access-" + grant,
			RefreshToken: "refresh-1",
			ExpiresIn:    3600,
			TokenType:    "Bearer",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(p.user)
	})
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func newOIDCService(t *testing.T, p *fakeProvider) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := New(store, Config{
		Secret: "test-secret",
		OIDC: OIDCConfig{
			ClientID:     "client-1",
			ClientSecret: "shhh",
			AuthorizeURL: p.srv.URL + "/authorize",
			TokenURL:     p.srv.URL + "/token",
			UserInfoURL:  p.srv.URL + "/userinfo",
			RedirectURL:  "https://app.example.com/api/auth/callback",
		},
	}, nil)
	return svc, store
}

func TestCompleteOIDC_AutoProvisionsViewer(t *testing.T) {
	p := newFakeProvider(t)
	svc, store := newOIDCService(t, p)
	ctx := context.Background()

	claims, token, err := svc.CompleteOIDC(ctx, "code-1")
	if err != nil {
		t.Fatalf("CompleteOIDC() error = %v", err)
	}
	if claims.Role != identity.RoleViewer {
		t.Errorf("role = %s, want viewer for auto-provisioned account", claims.Role)
	}
	if claims.AuthMethod != identity.AuthOIDC {
		t.Errorf("authMethod = %s, want %s", claims.AuthMethod, identity.AuthOIDC)
	}

	u, err := store.GetUserByEmail(ctx, "sso@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	oi, err := store.GetOAuthIdentityByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetOAuthIdentityByUser() error = %v", err)
	}
	if oi.Subject != "sub-1" || oi.RefreshToken != "refresh-1" {
		t.Errorf("stored identity = %+v", oi)
	}

	// The session works like any local one.
	if _, err := svc.CurrentUser(ctx, token); err != nil {
		t.Errorf("CurrentUser() error = %v", err)
	}
}

func TestCompleteOIDC_LinksExistingUserByEmail(t *testing.T) {
	p := newFakeProvider(t)
	svc, store := newOIDCService(t, p)
	ctx := context.Background()

	existing, err := store.CreateUser(ctx, identity.User{
		Email:    "sso@example.com",
		Role:     identity.RoleAdmin,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	claims, _, err := svc.CompleteOIDC(ctx, "code-1")
	if err != nil {
		t.Fatalf("CompleteOIDC() error = %v", err)
	}
	if claims.UserID != existing.ID {
		t.Errorf("claims.UserID = %s, want existing user %s", claims.UserID, existing.ID)
	}
	if claims.Role != identity.RoleAdmin {
		t.Errorf("role = %s, want the existing account's role", claims.Role)
	}
}

func TestCompleteOIDC_InactiveUserRejected(t *testing.T) {
	p := newFakeProvider(t)
	svc, store := newOIDCService(t, p)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, identity.User{
		Email:    "sso@example.com",
		Role:     identity.RoleViewer,
		IsActive: false,
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	_, _, err := svc.CompleteOIDC(ctx, "code-1")
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Errorf("CompleteOIDC() error = %v, want ErrUnauthorized", err)
	}
}

func TestCompleteOIDC_EmptyCode(t *testing.T) {
	p := newFakeProvider(t)
	svc, _ := newOIDCService(t, p)
	_, _, err := svc.CompleteOIDC(context.Background(), "")
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Errorf("CompleteOIDC() error = %v, want ErrUnauthorized", err)
	}
}

func TestCurrentUser_RefreshesExpiredProviderTokens(t *testing.T) {
	p := newFakeProvider(t)
	svc, store := newOIDCService(t, p)
	ctx := context.Background()

	_, token, err := svc.CompleteOIDC(ctx, "code-1")
	if err != nil {
		t.Fatalf("CompleteOIDC() error = %v", err)
	}
	u, _ := store.GetUserByEmail(ctx, "sso@example.com")
	oi, _ := store.GetOAuthIdentityByUser(ctx, u.ID)

	// Force the provider token set to look expired.
	if err := store.UpdateOAuthTokens(ctx, oi.ID, oi.AccessToken, oi.RefreshToken,
		time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("UpdateOAuthTokens() error = %v", err)
	}

	if _, err := svc.CurrentUser(ctx, token); err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}

	refreshed, _ := store.GetOAuthIdentityByUser(ctx, u.ID)
	if refreshed.AccessToken != "access-refresh_token" {
		t.Errorf("accessToken = %q, want the refreshed token", refreshed.AccessToken)
	}
	if !refreshed.ExpiresAt.After(time.Now()) {
		t.Error("refreshed expiry should be in the future")
	}
	if len(p.grantTypes) != 2 || p.grantTypes[1] != "refresh_token" {
		t.Errorf("grant types = %v, want a refresh_token call", p.grantTypes)
	}
}

func TestCurrentUser_FailedRefreshClearsSession(t *testing.T) {
	p := newFakeProvider(t)
	svc, store := newOIDCService(t, p)
	ctx := context.Background()

	_, token, err := svc.CompleteOIDC(ctx, "code-1")
	if err != nil {
		t.Fatalf("CompleteOIDC() error = %v", err)
	}
	u, _ := store.GetUserByEmail(ctx, "sso@example.com")
	oi, _ := store.GetOAuthIdentityByUser(ctx, u.ID)
	if err := store.UpdateOAuthTokens(ctx, oi.ID, oi.AccessToken, oi.RefreshToken,
		time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("UpdateOAuthTokens() error = %v", err)
	}

	p.refreshOK = false
	if _, err := svc.CurrentUser(ctx, token); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("CurrentUser() error = %v, want ErrUnauthorized", err)
	}
	if _, err := store.GetSessionByTokenHash(ctx, hashToken(token)); err == nil {
		t.Error("session should have been cleared after a failed refresh")
	}
}
