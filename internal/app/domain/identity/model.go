// Package identity holds user accounts, invitations, and the role capability
// table used for authorization decisions at the API boundary.
package identity

import (
	"strings"
	"time"
)

// Role is an enumerated user role. Authorization never compares raw strings;
// handlers check capabilities through Role.Can.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleFounder   Role = "founder"
	RoleMarketing Role = "marketing"
	RoleWarehouse Role = "warehouse"
	RoleViewer    Role = "viewer"
)

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleFounder, RoleMarketing, RoleWarehouse, RoleViewer:
		return r, true
	}
	return "", false
}

// Capability names one action class a role may perform.
type Capability string

const (
	CapViewData      Capability = "view_data"
	CapManageCatalog Capability = "manage_catalog"
	CapManageStock   Capability = "manage_stock"
	CapRecordSales   Capability = "record_sales"
	CapManageFinance Capability = "manage_finance"
	CapManageTasks   Capability = "manage_tasks"
	CapManageUsers   Capability = "manage_users"
	CapUploadFiles   Capability = "upload_files"
)

// capabilities is the single source of truth for what each role may do.
var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapViewData: true, CapManageCatalog: true, CapManageStock: true,
		CapRecordSales: true, CapManageFinance: true, CapManageTasks: true,
		CapManageUsers: true, CapUploadFiles: true,
	},
	RoleFounder: {
		CapViewData: true, CapManageCatalog: true, CapManageStock: true,
		CapRecordSales: true, CapManageFinance: true, CapManageTasks: true,
		CapManageUsers: true, CapUploadFiles: true,
	},
	RoleMarketing: {
		CapViewData: true, CapManageCatalog: true, CapRecordSales: true,
		CapManageTasks: true, CapUploadFiles: true,
	},
	RoleWarehouse: {
		CapViewData: true, CapManageStock: true, CapManageTasks: true,
		CapUploadFiles: true,
	},
	RoleViewer: {
		CapViewData: true,
	},
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// User is an account identity. PasswordHash is only set for accounts using
// local email/password login and is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	Picture      string    `json:"picture"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Invitation is a time-limited, single-use token granting account creation
// with a preset role.
type Invitation struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
	InvitedBy string    `json:"invitedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Redeemable reports whether the invitation can still be accepted at now.
func (i Invitation) Redeemable(now time.Time) bool {
	return !i.Used && now.Before(i.ExpiresAt)
}

// AuthMethod names the credential path that produced a session.
type AuthMethod string

const (
	AuthLocal AuthMethod = "local"
	AuthOIDC  AuthMethod = "oidc"
)

// Claims is the canonical current-user shape both credential paths resolve to.
type Claims struct {
	UserID     string     `json:"userId"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Picture    string     `json:"picture,omitempty"`
	Role       Role       `json:"role"`
	AuthMethod AuthMethod `json:"authMethod"`
}

// Session is a server-side session row bound to a token hash.
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	TokenHash  string     `json:"-"`
	AuthMethod AuthMethod `json:"authMethod"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// OAuthIdentity links a user to an external identity provider subject and
// stores the provider token set for silent refresh.
type OAuthIdentity struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Provider     string    `json:"provider"`
	Subject      string    `json:"subject"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
