// Package finance manages bank accounts, balance adjustments, and expenses.
package finance

import (
	"context"
	"strings"
	"time"

	"github.com/shopops/backoffice/internal/app/domain/currency"
	"github.com/shopops/backoffice/internal/app/domain/finance"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
	"github.com/shopops/backoffice/pkg/logger"
)

// Service coordinates financial records.
type Service struct {
	accounts storage.BankStore
	expenses storage.ExpenseStore
	log      *logger.Logger
}

// New creates a configured finance service.
func New(accounts storage.BankStore, expenses storage.ExpenseStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("finance")
	}
	return &Service{accounts: accounts, expenses: expenses, log: log}
}

func validAccountType(t finance.AccountType) bool {
	switch t {
	case finance.AccountOperating, finance.AccountPayoutPending, finance.AccountSavings:
		return true
	}
	return false
}

func validateAccount(acct *finance.BankAccount) error {
	acct.Name = strings.TrimSpace(acct.Name)
	if acct.Name == "" {
		return errs.Validation("name", "name is required")
	}
	if acct.Type == "" {
		acct.Type = finance.AccountOperating
	}
	if !validAccountType(acct.Type) {
		return errs.Validation("type", "unknown account type")
	}
	if acct.Currency == "" {
		acct.Currency = string(currency.USD)
	}
	return nil
}

// CreateAccount validates and stores a new bank account.
func (s *Service) CreateAccount(ctx context.Context, acct finance.BankAccount) (finance.BankAccount, error) {
	if err := validateAccount(&acct); err != nil {
		return finance.BankAccount{}, err
	}
	acct, err := s.accounts.CreateAccount(ctx, acct)
	if err != nil {
		return finance.BankAccount{}, err
	}
	s.log.WithField("account_id", acct.ID).Info("bank account created")
	return acct, nil
}

// UpdateAccount replaces a bank account's mutable fields.
func (s *Service) UpdateAccount(ctx context.Context, acct finance.BankAccount) (finance.BankAccount, error) {
	if err := validateAccount(&acct); err != nil {
		return finance.BankAccount{}, err
	}
	return s.accounts.UpdateAccount(ctx, acct)
}

// GetAccount fetches one bank account.
func (s *Service) GetAccount(ctx context.Context, id string) (finance.BankAccount, error) {
	return s.accounts.GetAccount(ctx, id)
}

// ListAccounts returns all bank accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]finance.BankAccount, error) {
	return s.accounts.ListAccounts(ctx)
}

// DeleteAccount removes a bank account.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.accounts.DeleteAccount(ctx, id)
}

// Adjust applies a manual balance change. Balances may go negative; that is
// logged as a warning rather than rejected.
func (s *Service) Adjust(ctx context.Context, id string, amount float64, typ finance.AdjustmentType, description string) (finance.BankAccount, error) {
	if amount <= 0 {
		return finance.BankAccount{}, errs.Validation("amount", "amount must be positive")
	}
	delta := amount
	switch typ {
	case finance.AdjustAdd:
	case finance.AdjustSubtract:
		delta = -amount
	default:
		return finance.BankAccount{}, errs.Validation("type", "type must be add or subtract")
	}

	acct, err := s.accounts.AdjustBalance(ctx, id, delta)
	if err != nil {
		return finance.BankAccount{}, err
	}

	entry := s.log.WithField("account_id", id).
		WithField("delta", delta).
		WithField("balance", acct.Balance)
	if description = strings.TrimSpace(description); description != "" {
		entry = entry.WithField("description", description)
	}
	entry.Info("bank balance adjusted")
	if acct.Balance < 0 {
		entry.Warn("bank balance is negative")
	}
	return acct, nil
}

func validateExpense(e *finance.Expense) error {
	e.Category = strings.TrimSpace(e.Category)
	if e.Category == "" {
		return errs.Validation("category", "category is required")
	}
	if e.Amount <= 0 {
		return errs.Validation("amount", "amount must be positive")
	}
	if e.Currency == "" {
		e.Currency = string(currency.USD)
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	return nil
}

// CreateExpense validates and stores a new expense.
func (s *Service) CreateExpense(ctx context.Context, e finance.Expense) (finance.Expense, error) {
	if err := validateExpense(&e); err != nil {
		return finance.Expense{}, err
	}
	if e.BankAccountID != "" {
		if _, err := s.accounts.GetAccount(ctx, e.BankAccountID); err != nil {
			return finance.Expense{}, errs.Validation("bankAccountId", "bank account not found")
		}
	}
	e, err := s.expenses.CreateExpense(ctx, e)
	if err != nil {
		return finance.Expense{}, err
	}
	s.log.WithField("expense_id", e.ID).
		WithField("category", e.Category).
		WithField("amount", e.Amount).
		Info("expense recorded")
	return e, nil
}

// UpdateExpense replaces an expense's mutable fields.
func (s *Service) UpdateExpense(ctx context.Context, e finance.Expense) (finance.Expense, error) {
	if err := validateExpense(&e); err != nil {
		return finance.Expense{}, err
	}
	if e.BankAccountID != "" {
		if _, err := s.accounts.GetAccount(ctx, e.BankAccountID); err != nil {
			return finance.Expense{}, errs.Validation("bankAccountId", "bank account not found")
		}
	}
	return s.expenses.UpdateExpense(ctx, e)
}

// GetExpense fetches one expense.
func (s *Service) GetExpense(ctx context.Context, id string) (finance.Expense, error) {
	return s.expenses.GetExpense(ctx, id)
}

// ListExpenses returns all expenses, most recent first.
func (s *Service) ListExpenses(ctx context.Context) ([]finance.Expense, error) {
	return s.expenses.ListExpenses(ctx)
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	return s.expenses.DeleteExpense(ctx, id)
}
