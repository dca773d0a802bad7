// Package memory is an in-memory implementation of the storage interfaces.
// It is safe for concurrent use and is primarily intended for tests and
// local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopops/backoffice/internal/app/domain/attachment"
	"github.com/shopops/backoffice/internal/app/domain/catalog"
	"github.com/shopops/backoffice/internal/app/domain/finance"
	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/domain/inventory"
	"github.com/shopops/backoffice/internal/app/domain/sales"
	"github.com/shopops/backoffice/internal/app/domain/task"
	"github.com/shopops/backoffice/internal/app/storage"
)

// Store holds every entity in maps guarded by one mutex. Transitions that
// must be atomic (purchase, sale) run entirely inside the lock, so no
// check-then-act window exists.
type Store struct {
	mu     sync.RWMutex
	nextID int64

	products        map[string]catalog.PotentialProduct
	items           map[string]inventory.Item
	orders          map[string]sales.Order
	accounts        map[string]finance.BankAccount
	expenses        map[string]finance.Expense
	tasks           map[string]task.Task
	attachments     map[string]attachment.Attachment
	users           map[string]identity.User
	usersByEmail    map[string]string
	invitations     map[string]identity.Invitation
	invitesByToken  map[string]string
	sessions        map[string]identity.Session
	sessionsByHash  map[string]string
	oauthIdentities map[string]identity.OAuthIdentity
}

var _ storage.CatalogStore = (*Store)(nil)
var _ storage.InventoryStore = (*Store)(nil)
var _ storage.SalesStore = (*Store)(nil)
var _ storage.BankStore = (*Store)(nil)
var _ storage.ExpenseStore = (*Store)(nil)
var _ storage.TaskStore = (*Store)(nil)
var _ storage.AttachmentStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:          1,
		products:        make(map[string]catalog.PotentialProduct),
		items:           make(map[string]inventory.Item),
		orders:          make(map[string]sales.Order),
		accounts:        make(map[string]finance.BankAccount),
		expenses:        make(map[string]finance.Expense),
		tasks:           make(map[string]task.Task),
		attachments:     make(map[string]attachment.Attachment),
		users:           make(map[string]identity.User),
		usersByEmail:    make(map[string]string),
		invitations:     make(map[string]identity.Invitation),
		invitesByToken:  make(map[string]string),
		sessions:        make(map[string]identity.Session),
		sessionsByHash:  make(map[string]string),
		oauthIdentities: make(map[string]identity.OAuthIdentity),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// --- CatalogStore -----------------------------------------------------------

func (s *Store) CreateProduct(_ context.Context, p catalog.PotentialProduct) (catalog.PotentialProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.products[p.ID]; exists {
		return catalog.PotentialProduct{}, storage.ErrDuplicate
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p catalog.PotentialProduct) (catalog.PotentialProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.products[p.ID]
	if !ok {
		return catalog.PotentialProduct{}, storage.ErrNotFound
	}
	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (catalog.PotentialProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.PotentialProduct{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProducts(_ context.Context) ([]catalog.PotentialProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.PotentialProduct, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sortByCreated(out, func(p catalog.PotentialProduct) time.Time { return p.CreatedAt })
	return out, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// --- InventoryStore ---------------------------------------------------------

func (s *Store) CreateItem(_ context.Context, item inventory.Item) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createItemLocked(item)
}

func (s *Store) createItemLocked(item inventory.Item) (inventory.Item, error) {
	if item.ID == "" {
		item.ID = s.nextIDLocked()
	} else if _, exists := s.items[item.ID]; exists {
		return inventory.Item{}, storage.ErrDuplicate
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.items[item.ID] = item
	return item, nil
}

func (s *Store) UpdateItem(_ context.Context, item inventory.Item) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.items[item.ID]
	if !ok {
		return inventory.Item{}, storage.ErrNotFound
	}
	item.CreatedAt = original.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	s.items[item.ID] = item
	return item, nil
}

func (s *Store) GetItem(_ context.Context, id string) (inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return inventory.Item{}, storage.ErrNotFound
	}
	return item, nil
}

func (s *Store) ListItems(_ context.Context) ([]inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]inventory.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sortByCreated(out, func(i inventory.Item) time.Time { return i.CreatedAt })
	return out, nil
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) ApplyPurchase(_ context.Context, productID string, lot inventory.Item) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return inventory.Item{}, storage.ErrNotFound
	}

	// Augment an existing open lot for the same product when the purchase
	// terms match, otherwise record a new lot.
	var result inventory.Item
	merged := false
	for id, existing := range s.items {
		if existing.ProductID == productID &&
			existing.UnitCost == lot.UnitCost &&
			strings.EqualFold(existing.Currency, lot.Currency) &&
			existing.Status != inventory.StatusSoldOut {
			existing.Quantity += lot.Quantity
			existing.QuantityAvailable += lot.Quantity
			existing.UpdatedAt = time.Now().UTC()
			s.items[id] = existing
			result = existing
			merged = true
			break
		}
	}
	if !merged {
		created, err := s.createItemLocked(lot)
		if err != nil {
			return inventory.Item{}, err
		}
		result = created
	}

	product.Status = catalog.StatusBought
	product.UpdatedAt = time.Now().UTC()
	s.products[productID] = product
	return result, nil
}

// --- SalesStore -------------------------------------------------------------

func (s *Store) RecordSale(_ context.Context, order sales.Order) (sales.Order, inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[order.InventoryID]
	if !ok {
		return sales.Order{}, inventory.Item{}, storage.ErrNotFound
	}
	if order.QuantitySold > item.QuantityAvailable {
		return sales.Order{}, inventory.Item{}, storage.ErrInsufficientStock
	}

	item.QuantityAvailable -= order.QuantitySold
	if item.QuantityAvailable == 0 {
		item.Status = inventory.StatusSoldOut
	}
	item.UpdatedAt = time.Now().UTC()
	s.items[item.ID] = item

	if order.ID == "" {
		order.ID = s.nextIDLocked()
	}
	order.CreatedAt = time.Now().UTC()
	s.orders[order.ID] = order
	return order, item, nil
}

func (s *Store) UpdateOrder(_ context.Context, order sales.Order) (sales.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.orders[order.ID]
	if !ok {
		return sales.Order{}, storage.ErrNotFound
	}
	order.CreatedAt = original.CreatedAt
	s.orders[order.ID] = order
	return order, nil
}

func (s *Store) GetOrder(_ context.Context, id string) (sales.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return sales.Order{}, storage.ErrNotFound
	}
	return order, nil
}

func (s *Store) ListOrders(_ context.Context) ([]sales.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sales.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, order)
	}
	sortByCreated(out, func(o sales.Order) time.Time { return o.CreatedAt })
	return out, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

// --- BankStore --------------------------------------------------------------

func (s *Store) CreateAccount(_ context.Context, acct finance.BankAccount) (finance.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acct.ID == "" {
		acct.ID = s.nextIDLocked()
	} else if _, exists := s.accounts[acct.ID]; exists {
		return finance.BankAccount{}, storage.ErrDuplicate
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) UpdateAccount(_ context.Context, acct finance.BankAccount) (finance.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.accounts[acct.ID]
	if !ok {
		return finance.BankAccount{}, storage.ErrNotFound
	}
	acct.CreatedAt = original.CreatedAt
	acct.UpdatedAt = time.Now().UTC()
	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) GetAccount(_ context.Context, id string) (finance.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return finance.BankAccount{}, storage.ErrNotFound
	}
	return acct, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]finance.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]finance.BankAccount, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out = append(out, acct)
	}
	sortByCreated(out, func(a finance.BankAccount) time.Time { return a.CreatedAt })
	return out, nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) AdjustBalance(_ context.Context, id string, delta float64) (finance.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return finance.BankAccount{}, storage.ErrNotFound
	}
	acct.Balance += delta
	acct.UpdatedAt = time.Now().UTC()
	s.accounts[id] = acct
	return acct, nil
}

// --- ExpenseStore -----------------------------------------------------------

func (s *Store) CreateExpense(_ context.Context, e finance.Expense) (finance.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.nextIDLocked()
	} else if _, exists := s.expenses[e.ID]; exists {
		return finance.Expense{}, storage.ErrDuplicate
	}
	e.CreatedAt = time.Now().UTC()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e finance.Expense) (finance.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.expenses[e.ID]
	if !ok {
		return finance.Expense{}, storage.ErrNotFound
	}
	e.CreatedAt = original.CreatedAt
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (finance.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok {
		return finance.Expense{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]finance.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]finance.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	sortByCreated(out, func(e finance.Expense) time.Time { return e.CreatedAt })
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

// --- TaskStore --------------------------------------------------------------

func (s *Store) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.nextIDLocked()
	} else if _, exists := s.tasks[t.ID]; exists {
		return task.Task{}, storage.ErrDuplicate
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Labels = append([]string(nil), t.Labels...)
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.tasks[t.ID]
	if !ok {
		return task.Task{}, storage.ErrNotFound
	}
	t.CreatedAt = original.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	t.Labels = append([]string(nil), t.Labels...)
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) GetTask(_ context.Context, id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTasks(_ context.Context) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sortByCreated(out, func(t task.Task) time.Time { return t.CreatedAt })
	return out, nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// --- AttachmentStore --------------------------------------------------------

func (s *Store) CreateAttachment(_ context.Context, a attachment.Attachment) (attachment.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = s.nextIDLocked()
	} else if _, exists := s.attachments[a.ID]; exists {
		return attachment.Attachment{}, storage.ErrDuplicate
	}
	a.CreatedAt = time.Now().UTC()
	s.attachments[a.ID] = a
	return a, nil
}

func (s *Store) GetAttachment(_ context.Context, id string) (attachment.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attachments[id]
	if !ok {
		return attachment.Attachment{}, storage.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAttachments(_ context.Context, folder string) ([]attachment.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]attachment.Attachment, 0, len(s.attachments))
	for _, a := range s.attachments {
		if folder != "" && !strings.EqualFold(a.Folder, folder) {
			continue
		}
		out = append(out, a)
	}
	sortByCreated(out, func(a attachment.Attachment) time.Time { return a.CreatedAt })
	return out, nil
}

func (s *Store) DeleteAttachment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attachments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.attachments, id)
	return nil
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u identity.User) (identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := s.usersByEmail[email]; exists {
		return identity.User{}, storage.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return identity.User{}, storage.ErrDuplicate
	}
	now := time.Now().UTC()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	s.usersByEmail[email] = u.ID
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u identity.User) (identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return identity.User{}, storage.ErrNotFound
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email != original.Email {
		if _, exists := s.usersByEmail[email]; exists {
			return identity.User{}, storage.ErrDuplicate
		}
		delete(s.usersByEmail, original.Email)
		s.usersByEmail[email] = u.ID
	}
	u.Email = email
	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return identity.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return identity.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(_ context.Context) ([]identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]identity.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sortByCreated(out, func(u identity.User) time.Time { return u.CreatedAt })
	return out, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.usersByEmail, u.Email)
	delete(s.users, id)
	return nil
}

func (s *Store) CreateInvitation(_ context.Context, inv identity.Invitation) (identity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		inv.ID = s.nextIDLocked()
	} else if _, exists := s.invitations[inv.ID]; exists {
		return identity.Invitation{}, storage.ErrDuplicate
	}
	inv.CreatedAt = time.Now().UTC()
	s.invitations[inv.ID] = inv
	s.invitesByToken[inv.Token] = inv.ID
	return inv, nil
}

func (s *Store) UpdateInvitation(_ context.Context, inv identity.Invitation) (identity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.invitations[inv.ID]
	if !ok {
		return identity.Invitation{}, storage.ErrNotFound
	}
	if inv.Token != original.Token {
		delete(s.invitesByToken, original.Token)
		s.invitesByToken[inv.Token] = inv.ID
	}
	inv.CreatedAt = original.CreatedAt
	s.invitations[inv.ID] = inv
	return inv, nil
}

func (s *Store) GetInvitation(_ context.Context, id string) (identity.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invitations[id]
	if !ok {
		return identity.Invitation{}, storage.ErrNotFound
	}
	return inv, nil
}

func (s *Store) GetInvitationByToken(_ context.Context, token string) (identity.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.invitesByToken[token]
	if !ok {
		return identity.Invitation{}, storage.ErrNotFound
	}
	return s.invitations[id], nil
}

func (s *Store) ListInvitations(_ context.Context) ([]identity.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]identity.Invitation, 0, len(s.invitations))
	for _, inv := range s.invitations {
		out = append(out, inv)
	}
	sortByCreated(out, func(i identity.Invitation) time.Time { return i.CreatedAt })
	return out, nil
}

func (s *Store) DeleteInvitation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.invitesByToken, inv.Token)
	delete(s.invitations, id)
	return nil
}

func (s *Store) CreateSession(_ context.Context, sess identity.Session) (identity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = s.nextIDLocked()
	}
	sess.CreatedAt = time.Now().UTC()
	s.sessions[sess.ID] = sess
	s.sessionsByHash[sess.TokenHash] = sess.ID
	return sess, nil
}

func (s *Store) GetSessionByTokenHash(_ context.Context, hash string) (identity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.sessionsByHash[hash]
	if !ok {
		return identity.Session{}, storage.ErrNotFound
	}
	return s.sessions[id], nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.sessionsByHash, sess.TokenHash)
	delete(s.sessions, id)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(s.sessionsByHash, sess.TokenHash)
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *Store) CreateOAuthIdentity(_ context.Context, oi identity.OAuthIdentity) (identity.OAuthIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oi.ID == "" {
		oi.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	oi.CreatedAt = now
	oi.UpdatedAt = now
	s.oauthIdentities[oi.ID] = oi
	return oi, nil
}

func (s *Store) GetOAuthIdentityBySubject(_ context.Context, provider, subject string) (identity.OAuthIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, oi := range s.oauthIdentities {
		if oi.Provider == provider && oi.Subject == subject {
			return oi, nil
		}
	}
	return identity.OAuthIdentity{}, storage.ErrNotFound
}

func (s *Store) GetOAuthIdentityByUser(_ context.Context, userID string) (identity.OAuthIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, oi := range s.oauthIdentities {
		if oi.UserID == userID {
			return oi, nil
		}
	}
	return identity.OAuthIdentity{}, storage.ErrNotFound
}

func (s *Store) UpdateOAuthTokens(_ context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	oi, ok := s.oauthIdentities[id]
	if !ok {
		return storage.ErrNotFound
	}
	oi.AccessToken = accessToken
	if refreshToken != "" {
		oi.RefreshToken = refreshToken
	}
	oi.ExpiresAt = expiresAt
	oi.UpdatedAt = time.Now().UTC()
	s.oauthIdentities[id] = oi
	return nil
}

// sortByCreated orders a slice by creation time, oldest first, so listings
// are stable across calls.
func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).Before(created(items[j]))
	})
}
