// Package reports aggregates entity data into read-only dashboard figures.
package reports

import (
	"context"

	"github.com/shopops/backoffice/internal/app/domain/currency"
	"github.com/shopops/backoffice/internal/app/domain/inventory"
	"github.com/shopops/backoffice/internal/app/domain/sales"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/pkg/logger"
)

// Service computes dashboard aggregates. All figures are converted to USD.
type Service struct {
	catalog   storage.CatalogStore
	inventory storage.InventoryStore
	sales     storage.SalesStore
	accounts  storage.BankStore
	expenses  storage.ExpenseStore
	log       *logger.Logger
}

// New creates a configured reports service.
func New(catalogStore storage.CatalogStore, inventoryStore storage.InventoryStore,
	salesStore storage.SalesStore, accounts storage.BankStore,
	expenseStore storage.ExpenseStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reports")
	}
	return &Service{
		catalog:   catalogStore,
		inventory: inventoryStore,
		sales:     salesStore,
		accounts:  accounts,
		expenses:  expenseStore,
		log:       log,
	}
}

// Summary is the dashboard payload.
type Summary struct {
	PotentialProducts  int              `json:"potentialProducts"`
	InventoryItems     int              `json:"inventoryItems"`
	SalesOrders        int              `json:"salesOrders"`
	InventoryValueUSD  float64          `json:"inventoryValueUsd"`
	RevenueUSD         float64          `json:"revenueUsd"`
	ProfitUSD          float64          `json:"profitUsd"`
	ExpensesUSD        float64          `json:"expensesUsd"`
	BankBalanceUSD     float64          `json:"bankBalanceUsd"`
	PendingPayouts     int              `json:"pendingPayouts"`
	PendingPayoutUSD   float64          `json:"pendingPayoutUsd"`
	LowStockItems      []inventory.Item `json:"lowStockItems"`
}

// Dashboard computes the summary from current data. It is a pure read; no
// figures are cached or stored.
func (s *Service) Dashboard(ctx context.Context) (Summary, error) {
	var sum Summary

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum.PotentialProducts = len(products)

	items, err := s.inventory.ListItems(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum.InventoryItems = len(items)
	for _, item := range items {
		value := float64(item.QuantityAvailable) * item.UnitCost
		sum.InventoryValueUSD += currency.Convert(value, currency.Code(item.Currency), currency.USD)
		if item.LowStock() {
			sum.LowStockItems = append(sum.LowStockItems, item)
		}
	}

	orders, err := s.sales.ListOrders(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum.SalesOrders = len(orders)
	for _, o := range orders {
		from := currency.Code(o.Currency)
		sum.RevenueUSD += currency.Convert(o.TotalRevenue, from, currency.USD)
		sum.ProfitUSD += currency.Convert(o.Profit, from, currency.USD)
		if o.PayoutStatus == sales.PayoutPending {
			sum.PendingPayouts++
			sum.PendingPayoutUSD += currency.Convert(o.TotalRevenue, from, currency.USD)
		}
	}

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		return Summary{}, err
	}
	for _, e := range expenses {
		sum.ExpensesUSD += currency.Convert(e.Amount, currency.Code(e.Currency), currency.USD)
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return Summary{}, err
	}
	for _, a := range accounts {
		sum.BankBalanceUSD += currency.Convert(a.Balance, currency.Code(a.Currency), currency.USD)
	}

	return sum, nil
}
