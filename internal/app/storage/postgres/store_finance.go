package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/shopops/backoffice/internal/app/domain/finance"
	"github.com/shopops/backoffice/internal/app/storage"
)

// --- BankStore --------------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, acct finance.BankAccount) (finance.BankAccount, error) {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_accounts (id, name, balance, currency, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, acct.ID, acct.Name, acct.Balance, acct.Currency, acct.Type, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		return finance.BankAccount{}, mapErr(err)
	}
	return acct, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acct finance.BankAccount) (finance.BankAccount, error) {
	existing, err := s.GetAccount(ctx, acct.ID)
	if err != nil {
		return finance.BankAccount{}, err
	}
	acct.CreatedAt = existing.CreatedAt
	acct.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE bank_accounts
		SET name = $2, balance = $3, currency = $4, type = $5, updated_at = $6
		WHERE id = $1
	`, acct.ID, acct.Name, acct.Balance, acct.Currency, acct.Type, acct.UpdatedAt)
	if err != nil {
		return finance.BankAccount{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return finance.BankAccount{}, storage.ErrNotFound
	}
	return acct, nil
}

func scanAccount(row interface{ Scan(...any) error }) (finance.BankAccount, error) {
	var a finance.BankAccount
	err := row.Scan(&a.ID, &a.Name, &a.Balance, &a.Currency, &a.Type, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) GetAccount(ctx context.Context, id string) (finance.BankAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, balance, currency, type, created_at, updated_at
		FROM bank_accounts
		WHERE id = $1
	`, id)
	a, err := scanAccount(row)
	if err != nil {
		return finance.BankAccount{}, mapErr(err)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]finance.BankAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, balance, currency, type, created_at, updated_at
		FROM bank_accounts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []finance.BankAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AdjustBalance applies the delta in one statement so concurrent adjustments
// serialize on the row.
func (s *Store) AdjustBalance(ctx context.Context, id string, delta float64) (finance.BankAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE bank_accounts
		SET balance = balance + $2, updated_at = $3
		WHERE id = $1
		RETURNING id, name, balance, currency, type, created_at, updated_at
	`, id, delta, time.Now().UTC())
	a, err := scanAccount(row)
	if err != nil {
		return finance.BankAccount{}, mapErr(err)
	}
	return a, nil
}

// --- ExpenseStore -----------------------------------------------------------

func (s *Store) CreateExpense(ctx context.Context, e finance.Expense) (finance.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, category, amount, currency, date, description, paid_by,
			payment_method, bank_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.Category, e.Amount, e.Currency, e.Date, e.Description, e.PaidBy,
		e.PaymentMethod, nullString(e.BankAccountID), e.CreatedAt)
	if err != nil {
		return finance.Expense{}, mapErr(err)
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e finance.Expense) (finance.Expense, error) {
	existing, err := s.GetExpense(ctx, e.ID)
	if err != nil {
		return finance.Expense{}, err
	}
	e.CreatedAt = existing.CreatedAt

	result, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET category = $2, amount = $3, currency = $4, date = $5, description = $6,
			paid_by = $7, payment_method = $8, bank_account_id = $9
		WHERE id = $1
	`, e.ID, e.Category, e.Amount, e.Currency, e.Date, e.Description,
		e.PaidBy, e.PaymentMethod, nullString(e.BankAccountID))
	if err != nil {
		return finance.Expense{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return finance.Expense{}, storage.ErrNotFound
	}
	return e, nil
}

func scanExpense(row interface{ Scan(...any) error }) (finance.Expense, error) {
	var (
		e       finance.Expense
		bankRef sql.NullString
	)
	err := row.Scan(&e.ID, &e.Category, &e.Amount, &e.Currency, &e.Date, &e.Description,
		&e.PaidBy, &e.PaymentMethod, &bankRef, &e.CreatedAt)
	if bankRef.Valid {
		e.BankAccountID = bankRef.String
	}
	return e, err
}

func (s *Store) GetExpense(ctx context.Context, id string) (finance.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category, amount, currency, date, description, paid_by, payment_method,
			bank_account_id, created_at
		FROM expenses
		WHERE id = $1
	`, id)
	e, err := scanExpense(row)
	if err != nil {
		return finance.Expense{}, mapErr(err)
	}
	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]finance.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, amount, currency, date, description, paid_by, payment_method,
			bank_account_id, created_at
		FROM expenses
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []finance.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
