// Package storage defines the persistence interfaces for the back-office
// domain. Implementations live in the memory and postgres subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopops/backoffice/internal/app/domain/attachment"
	"github.com/shopops/backoffice/internal/app/domain/catalog"
	"github.com/shopops/backoffice/internal/app/domain/finance"
	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/domain/inventory"
	"github.com/shopops/backoffice/internal/app/domain/sales"
	"github.com/shopops/backoffice/internal/app/domain/task"
)

// Sentinel errors shared by every store implementation. The HTTP layer maps
// these to status codes in one place.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrInsufficientStock = errors.New("insufficient stock available")
)

// CatalogStore persists potential products.
type CatalogStore interface {
	CreateProduct(ctx context.Context, p catalog.PotentialProduct) (catalog.PotentialProduct, error)
	UpdateProduct(ctx context.Context, p catalog.PotentialProduct) (catalog.PotentialProduct, error)
	GetProduct(ctx context.Context, id string) (catalog.PotentialProduct, error)
	ListProducts(ctx context.Context) ([]catalog.PotentialProduct, error)
	DeleteProduct(ctx context.Context, id string) error
}

// InventoryStore persists stock lots.
type InventoryStore interface {
	CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error)
	UpdateItem(ctx context.Context, item inventory.Item) (inventory.Item, error)
	GetItem(ctx context.Context, id string) (inventory.Item, error)
	ListItems(ctx context.Context) ([]inventory.Item, error)
	DeleteItem(ctx context.Context, id string) error

	// ApplyPurchase atomically records a buy: it increments the matching
	// open lot for the product (same unit cost and currency) or inserts a
	// new one, and marks the source product bought. Partial application is
	// never visible.
	ApplyPurchase(ctx context.Context, productID string, lot inventory.Item) (inventory.Item, error)
}

// SalesStore persists sales orders. RecordSale atomically decrements the
// inventory lot and inserts the order; oversell fails with
// ErrInsufficientStock and leaves both rows untouched.
type SalesStore interface {
	RecordSale(ctx context.Context, order sales.Order) (sales.Order, inventory.Item, error)
	UpdateOrder(ctx context.Context, order sales.Order) (sales.Order, error)
	GetOrder(ctx context.Context, id string) (sales.Order, error)
	ListOrders(ctx context.Context) ([]sales.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// BankStore persists bank accounts.
type BankStore interface {
	CreateAccount(ctx context.Context, acct finance.BankAccount) (finance.BankAccount, error)
	UpdateAccount(ctx context.Context, acct finance.BankAccount) (finance.BankAccount, error)
	GetAccount(ctx context.Context, id string) (finance.BankAccount, error)
	ListAccounts(ctx context.Context) ([]finance.BankAccount, error)
	DeleteAccount(ctx context.Context, id string) error

	// AdjustBalance applies a signed delta to the account balance in a
	// single statement and returns the updated row.
	AdjustBalance(ctx context.Context, id string, delta float64) (finance.BankAccount, error)
}

// ExpenseStore persists expense records.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e finance.Expense) (finance.Expense, error)
	UpdateExpense(ctx context.Context, e finance.Expense) (finance.Expense, error)
	GetExpense(ctx context.Context, id string) (finance.Expense, error)
	ListExpenses(ctx context.Context) ([]finance.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// TaskStore persists kanban cards.
type TaskStore interface {
	CreateTask(ctx context.Context, t task.Task) (task.Task, error)
	UpdateTask(ctx context.Context, t task.Task) (task.Task, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	ListTasks(ctx context.Context) ([]task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// AttachmentStore persists uploaded file metadata.
type AttachmentStore interface {
	CreateAttachment(ctx context.Context, a attachment.Attachment) (attachment.Attachment, error)
	GetAttachment(ctx context.Context, id string) (attachment.Attachment, error)
	ListAttachments(ctx context.Context, folder string) ([]attachment.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error
}

// UserStore persists users, invitations, sessions, and OAuth identities.
type UserStore interface {
	CreateUser(ctx context.Context, u identity.User) (identity.User, error)
	UpdateUser(ctx context.Context, u identity.User) (identity.User, error)
	GetUser(ctx context.Context, id string) (identity.User, error)
	GetUserByEmail(ctx context.Context, email string) (identity.User, error)
	ListUsers(ctx context.Context) ([]identity.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateInvitation(ctx context.Context, inv identity.Invitation) (identity.Invitation, error)
	UpdateInvitation(ctx context.Context, inv identity.Invitation) (identity.Invitation, error)
	GetInvitation(ctx context.Context, id string) (identity.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (identity.Invitation, error)
	ListInvitations(ctx context.Context) ([]identity.Invitation, error)
	DeleteInvitation(ctx context.Context, id string) error

	CreateSession(ctx context.Context, s identity.Session) (identity.Session, error)
	GetSessionByTokenHash(ctx context.Context, hash string) (identity.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) error

	CreateOAuthIdentity(ctx context.Context, oi identity.OAuthIdentity) (identity.OAuthIdentity, error)
	GetOAuthIdentityBySubject(ctx context.Context, provider, subject string) (identity.OAuthIdentity, error)
	GetOAuthIdentityByUser(ctx context.Context, userID string) (identity.OAuthIdentity, error)
	UpdateOAuthTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error
}
