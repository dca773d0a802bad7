package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/storage"
)

// --- UserStore: users ---------------------------------------------------------

const userColumns = `id, email, name, role, is_active, picture, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (identity.User, error) {
	var u identity.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &u.Picture,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u identity.User) (identity.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, is_active, picture, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Email, u.Name, u.Role, u.IsActive, u.Picture, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return identity.User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u identity.User) (identity.User, error) {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return identity.User{}, err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, name = $3, role = $4, is_active = $5, picture = $6,
			password_hash = $7, updated_at = $8
		WHERE id = $1
	`, u.ID, u.Email, u.Name, u.Role, u.IsActive, u.Picture, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return identity.User{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return identity.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (identity.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return identity.User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (identity.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	u, err := scanUser(row)
	if err != nil {
		return identity.User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]identity.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []identity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- UserStore: invitations ---------------------------------------------------

const invitationColumns = `id, email, role, token, expires_at, used, invited_by, created_at`

func scanInvitation(row interface{ Scan(...any) error }) (identity.Invitation, error) {
	var inv identity.Invitation
	err := row.Scan(&inv.ID, &inv.Email, &inv.Role, &inv.Token, &inv.ExpiresAt,
		&inv.Used, &inv.InvitedBy, &inv.CreatedAt)
	return inv, err
}

func (s *Store) CreateInvitation(ctx context.Context, inv identity.Invitation) (identity.Invitation, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	inv.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invitations (id, email, role, token, expires_at, used, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, inv.ID, inv.Email, inv.Role, inv.Token, inv.ExpiresAt, inv.Used, inv.InvitedBy, inv.CreatedAt)
	if err != nil {
		return identity.Invitation{}, mapErr(err)
	}
	return inv, nil
}

func (s *Store) UpdateInvitation(ctx context.Context, inv identity.Invitation) (identity.Invitation, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE invitations
		SET email = $2, role = $3, token = $4, expires_at = $5, used = $6
		WHERE id = $1
	`, inv.ID, strings.ToLower(strings.TrimSpace(inv.Email)), inv.Role, inv.Token,
		inv.ExpiresAt, inv.Used)
	if err != nil {
		return identity.Invitation{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return identity.Invitation{}, storage.ErrNotFound
	}
	return s.GetInvitation(ctx, inv.ID)
}

func (s *Store) GetInvitation(ctx context.Context, id string) (identity.Invitation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	inv, err := scanInvitation(row)
	if err != nil {
		return identity.Invitation{}, mapErr(err)
	}
	return inv, nil
}

func (s *Store) GetInvitationByToken(ctx context.Context, token string) (identity.Invitation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
	inv, err := scanInvitation(row)
	if err != nil {
		return identity.Invitation{}, mapErr(err)
	}
	return inv, nil
}

func (s *Store) ListInvitations(ctx context.Context) ([]identity.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+invitationColumns+` FROM invitations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []identity.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

func (s *Store) DeleteInvitation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- UserStore: sessions ------------------------------------------------------

func (s *Store) CreateSession(ctx context.Context, sess identity.Session) (identity.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, auth_method, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sess.ID, sess.UserID, sess.TokenHash, sess.AuthMethod, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return identity.Session{}, mapErr(err)
	}
	return sess, nil
}

func (s *Store) GetSessionByTokenHash(ctx context.Context, hash string) (identity.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, auth_method, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`, hash)

	var sess identity.Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.AuthMethod,
		&sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return identity.Session{}, mapErr(err)
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	return err
}

// --- UserStore: OAuth identities ----------------------------------------------

const oauthColumns = `id, user_id, provider, subject, access_token, refresh_token, expires_at, created_at, updated_at`

func scanOAuthIdentity(row interface{ Scan(...any) error }) (identity.OAuthIdentity, error) {
	var oi identity.OAuthIdentity
	err := row.Scan(&oi.ID, &oi.UserID, &oi.Provider, &oi.Subject, &oi.AccessToken,
		&oi.RefreshToken, &oi.ExpiresAt, &oi.CreatedAt, &oi.UpdatedAt)
	return oi, err
}

func (s *Store) CreateOAuthIdentity(ctx context.Context, oi identity.OAuthIdentity) (identity.OAuthIdentity, error) {
	if oi.ID == "" {
		oi.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	oi.CreatedAt = now
	oi.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oauth_identities (id, user_id, provider, subject, access_token,
			refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, oi.ID, oi.UserID, oi.Provider, oi.Subject, oi.AccessToken, oi.RefreshToken,
		oi.ExpiresAt, oi.CreatedAt, oi.UpdatedAt)
	if err != nil {
		return identity.OAuthIdentity{}, mapErr(err)
	}
	return oi, nil
}

func (s *Store) GetOAuthIdentityBySubject(ctx context.Context, provider, subject string) (identity.OAuthIdentity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+oauthColumns+`
		FROM oauth_identities
		WHERE provider = $1 AND subject = $2
	`, provider, subject)
	oi, err := scanOAuthIdentity(row)
	if err != nil {
		return identity.OAuthIdentity{}, mapErr(err)
	}
	return oi, nil
}

func (s *Store) GetOAuthIdentityByUser(ctx context.Context, userID string) (identity.OAuthIdentity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+oauthColumns+`
		FROM oauth_identities
		WHERE user_id = $1
	`, userID)
	oi, err := scanOAuthIdentity(row)
	if err != nil {
		return identity.OAuthIdentity{}, mapErr(err)
	}
	return oi, nil
}

func (s *Store) UpdateOAuthTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	// Providers may omit the refresh token on renewal; keep the stored one.
	result, err := s.db.ExecContext(ctx, `
		UPDATE oauth_identities
		SET access_token = $2,
		    refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
		    expires_at = $4, updated_at = $5
		WHERE id = $1
	`, id, accessToken, refreshToken, expiresAt, time.Now().UTC())
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
