package finance

import (
	"context"
	"errors"
	"testing"

	domain "github.com/shopops/backoffice/internal/app/domain/finance"
	"github.com/shopops/backoffice/internal/app/storage/memory"
	"github.com/shopops/backoffice/internal/errs"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store := memory.New()
	return New(store, store, nil)
}

func TestCreateAccount_Defaults(t *testing.T) {
	svc := newService(t)
	acct, err := svc.CreateAccount(context.Background(), domain.BankAccount{Name: "Main"})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if acct.Type != domain.AccountOperating {
		t.Errorf("type = %s, want %s", acct.Type, domain.AccountOperating)
	}
	if acct.Currency != "USD" {
		t.Errorf("currency = %s, want USD", acct.Currency)
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, domain.BankAccount{Name: "  "}); err == nil {
		t.Error("blank name should be rejected")
	}
	if _, err := svc.CreateAccount(ctx, domain.BankAccount{Name: "x", Type: "offshore"}); err == nil {
		t.Error("unknown account type should be rejected")
	}
}

func TestAdjust_AddAndSubtract(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	acct, _ := svc.CreateAccount(ctx, domain.BankAccount{Name: "Main", Balance: 100})

	up, err := svc.Adjust(ctx, acct.ID, 50, domain.AdjustAdd, "payout received")
	if err != nil {
		t.Fatalf("Adjust(add) error = %v", err)
	}
	if up.Balance != 150 {
		t.Errorf("balance = %v, want 150", up.Balance)
	}

	down, err := svc.Adjust(ctx, acct.ID, 30, domain.AdjustSubtract, "supplier paid")
	if err != nil {
		t.Fatalf("Adjust(subtract) error = %v", err)
	}
	if down.Balance != 120 {
		t.Errorf("balance = %v, want 120", down.Balance)
	}
}

func TestAdjust_NegativeBalanceAllowed(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	acct, _ := svc.CreateAccount(ctx, domain.BankAccount{Name: "Main", Balance: 10})

	over, err := svc.Adjust(ctx, acct.ID, 25, domain.AdjustSubtract, "")
	if err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}
	if over.Balance != -15 {
		t.Errorf("balance = %v, want -15 (overdraft is allowed)", over.Balance)
	}
}

func TestAdjust_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	acct, _ := svc.CreateAccount(ctx, domain.BankAccount{Name: "Main"})

	if _, err := svc.Adjust(ctx, acct.ID, 0, domain.AdjustAdd, ""); err == nil {
		t.Error("zero amount should be rejected")
	}
	if _, err := svc.Adjust(ctx, acct.ID, -5, domain.AdjustAdd, ""); err == nil {
		t.Error("negative amount should be rejected")
	}
	if _, err := svc.Adjust(ctx, acct.ID, 5, domain.AdjustmentType("multiply"), ""); err == nil {
		t.Error("unknown adjustment type should be rejected")
	}
}

func TestCreateExpense_ChecksBankAccount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateExpense(ctx, domain.Expense{
		Category:      "software",
		Amount:        20,
		BankAccountID: "missing",
	})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) || verr.Field != "bankAccountId" {
		t.Fatalf("CreateExpense() error = %v, want bankAccountId validation error", err)
	}

	acct, _ := svc.CreateAccount(ctx, domain.BankAccount{Name: "Main"})
	e, err := svc.CreateExpense(ctx, domain.Expense{
		Category:      "software",
		Amount:        20,
		BankAccountID: acct.ID,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if e.Date.IsZero() {
		t.Error("date should default to now")
	}
	if e.Currency != "USD" {
		t.Errorf("currency = %s, want USD", e.Currency)
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateExpense(ctx, domain.Expense{Amount: 5}); err == nil {
		t.Error("missing category should be rejected")
	}
	if _, err := svc.CreateExpense(ctx, domain.Expense{Category: "ads", Amount: 0}); err == nil {
		t.Error("zero amount should be rejected")
	}
}
