package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
)

// tokenResponse is the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// userInfo is the subset of the provider's userinfo payload we use.
type userInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (t tokenResponse) expiry(now time.Time) time.Time {
	if t.ExpiresIn <= 0 {
		return now.Add(time.Hour)
	}
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

func (s *Service) postTokenEndpoint(ctx context.Context, form url.Values) (tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.OIDC.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return tokenResponse{}, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return tokenResponse{}, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return tokenResponse{}, fmt.Errorf("token endpoint returned no access token")
	}
	return tr, nil
}

func (s *Service) exchangeCode(ctx context.Context, code string) (tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", s.cfg.OIDC.ClientID)
	form.Set("client_secret", s.cfg.OIDC.ClientSecret)
	form.Set("redirect_uri", s.cfg.OIDC.RedirectURL)
	return s.postTokenEndpoint(ctx, form)
}

func (s *Service) refreshProviderTokens(ctx context.Context, refreshToken string) (tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", s.cfg.OIDC.ClientID)
	form.Set("client_secret", s.cfg.OIDC.ClientSecret)
	return s.postTokenEndpoint(ctx, form)
}

func (s *Service) fetchUserInfo(ctx context.Context, accessToken string) (userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.OIDC.UserInfoURL, nil)
	if err != nil {
		return userInfo{}, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return userInfo{}, fmt.Errorf("userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return userInfo{}, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}
	var ui userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ui); err != nil {
		return userInfo{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if ui.Subject == "" || ui.Email == "" {
		return userInfo{}, fmt.Errorf("userinfo missing subject or email")
	}
	return ui, nil
}

// CompleteOIDC finishes the callback leg: it exchanges the code, resolves the
// provider identity to a local user (creating a viewer account on first
// login), stores the provider token set, and issues a session.
func (s *Service) CompleteOIDC(ctx context.Context, code string) (identity.Claims, string, error) {
	if !s.cfg.OIDC.Enabled() {
		return identity.Claims{}, "", errs.ErrUnauthorized
	}
	if code == "" {
		return identity.Claims{}, "", errs.ErrUnauthorized
	}

	tr, err := s.exchangeCode(ctx, code)
	if err != nil {
		s.log.WithError(err).Info("oidc code exchange failed")
		return identity.Claims{}, "", errs.ErrUnauthorized
	}
	ui, err := s.fetchUserInfo(ctx, tr.AccessToken)
	if err != nil {
		s.log.WithError(err).Info("oidc userinfo fetch failed")
		return identity.Claims{}, "", errs.ErrUnauthorized
	}

	now := time.Now().UTC()
	u, err := s.resolveOIDCUser(ctx, ui)
	if err != nil {
		return identity.Claims{}, "", err
	}
	if !u.IsActive {
		return identity.Claims{}, "", errs.ErrUnauthorized
	}

	if err := s.upsertProviderTokens(ctx, u.ID, ui.Subject, tr, now); err != nil {
		return identity.Claims{}, "", err
	}

	token, err := s.issueSession(ctx, u, identity.AuthOIDC)
	if err != nil {
		return identity.Claims{}, "", err
	}
	s.log.WithField("user_id", u.ID).Info("user logged in via oidc")
	return claimsFor(u, identity.AuthOIDC), token, nil
}

// resolveOIDCUser finds the account for a provider identity: by stored
// subject first, then by email, creating a viewer account as a last resort.
func (s *Service) resolveOIDCUser(ctx context.Context, ui userInfo) (identity.User, error) {
	if oi, err := s.store.GetOAuthIdentityBySubject(ctx, s.cfg.OIDC.Provider, ui.Subject); err == nil {
		return s.store.GetUser(ctx, oi.UserID)
	}

	email := strings.ToLower(strings.TrimSpace(ui.Email))
	if u, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return u, nil
	}

	u, err := s.store.CreateUser(ctx, identity.User{
		Email:    email,
		Name:     strings.TrimSpace(ui.Name),
		Role:     identity.RoleViewer,
		IsActive: true,
		Picture:  ui.Picture,
	})
	if err != nil {
		return identity.User{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user auto-provisioned from oidc")
	return u, nil
}

func (s *Service) upsertProviderTokens(ctx context.Context, userID, subject string, tr tokenResponse, now time.Time) error {
	oi, err := s.store.GetOAuthIdentityBySubject(ctx, s.cfg.OIDC.Provider, subject)
	if err == nil {
		refresh := tr.RefreshToken
		if refresh == "" {
			refresh = oi.RefreshToken
		}
		return s.store.UpdateOAuthTokens(ctx, oi.ID, tr.AccessToken, refresh, tr.expiry(now))
	}

	_, err = s.store.CreateOAuthIdentity(ctx, identity.OAuthIdentity{
		UserID:       userID,
		Provider:     s.cfg.OIDC.Provider,
		Subject:      subject,
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    tr.expiry(now),
	})
	return err
}

// ensureFreshProviderTokens refreshes the stored token set once it expires.
// An account without a stored identity (or refresh token) cannot be
// refreshed and reports failure.
func (s *Service) ensureFreshProviderTokens(ctx context.Context, userID string) error {
	oi, err := s.store.GetOAuthIdentityByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no provider identity for user")
		}
		return err
	}
	if time.Now().UTC().Before(oi.ExpiresAt) {
		return nil
	}
	if oi.RefreshToken == "" {
		return fmt.Errorf("provider tokens expired and no refresh token stored")
	}

	tr, err := s.refreshProviderTokens(ctx, oi.RefreshToken)
	if err != nil {
		return err
	}
	refresh := tr.RefreshToken
	if refresh == "" {
		refresh = oi.RefreshToken
	}
	return s.store.UpdateOAuthTokens(ctx, oi.ID, tr.AccessToken, refresh, tr.expiry(time.Now().UTC()))
}
