// Package finance holds bank accounts and expense records.
package finance

import "time"

// AccountType distinguishes how an account is used.
type AccountType string

const (
	AccountOperating     AccountType = "operating"
	AccountPayoutPending AccountType = "payout_pending"
	AccountSavings       AccountType = "savings"
)

// BankAccount is a named account with a running balance. Balances may go
// negative; there is no overdraft floor.
type BankAccount struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Balance   float64     `json:"balance"`
	Currency  string      `json:"currency"`
	Type      AccountType `json:"type"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// AdjustmentType is the direction of a manual balance adjustment.
type AdjustmentType string

const (
	AdjustAdd      AdjustmentType = "add"
	AdjustSubtract AdjustmentType = "subtract"
)

// Expense is a single recorded cost.
type Expense struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	PaidBy        string    `json:"paidBy"`
	PaymentMethod string    `json:"paymentMethod"`
	BankAccountID string    `json:"bankAccountId"`
	CreatedAt     time.Time `json:"createdAt"`
}
