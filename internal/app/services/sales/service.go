// Package sales records sale transactions against inventory and manages
// payout status afterwards.
package sales

import (
	"context"
	"strings"
	"time"

	"github.com/shopops/backoffice/internal/app/domain/inventory"
	"github.com/shopops/backoffice/internal/app/domain/sales"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
	"github.com/shopops/backoffice/pkg/logger"
)

// Service coordinates sales orders.
type Service struct {
	store     storage.SalesStore
	inventory storage.InventoryStore
	log       *logger.Logger
}

// New creates a configured sales service.
func New(store storage.SalesStore, inventoryStore storage.InventoryStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("sales")
	}
	return &Service{store: store, inventory: inventoryStore, log: log}
}

// SellInput describes a sale against one inventory lot.
type SellInput struct {
	Channel             string    `json:"channel"`
	QuantitySold        int       `json:"quantitySold"`
	SellingPricePerUnit float64   `json:"sellingPricePerUnit"`
	MarketplaceFees     float64   `json:"marketplaceFees"`
	ShippingCost        float64   `json:"shippingCost"`
	SaleDate            time.Time `json:"saleDate"`
	Notes               string    `json:"notes"`
}

// Sell records a sale: it atomically decrements the lot's available quantity
// and inserts the order. Overselling fails without mutating either row. The
// monetary fields are computed once here and never recomputed.
func (s *Service) Sell(ctx context.Context, inventoryID string, in SellInput) (sales.Order, inventory.Item, error) {
	if in.QuantitySold <= 0 {
		return sales.Order{}, inventory.Item{}, errs.Validation("quantitySold", "quantity sold must be positive")
	}
	if in.SellingPricePerUnit < 0 {
		return sales.Order{}, inventory.Item{}, errs.Validation("sellingPricePerUnit", "selling price cannot be negative")
	}
	if in.MarketplaceFees < 0 {
		return sales.Order{}, inventory.Item{}, errs.Validation("marketplaceFees", "marketplace fees cannot be negative")
	}
	if in.ShippingCost < 0 {
		return sales.Order{}, inventory.Item{}, errs.Validation("shippingCost", "shipping cost cannot be negative")
	}

	item, err := s.inventory.GetItem(ctx, inventoryID)
	if err != nil {
		return sales.Order{}, inventory.Item{}, err
	}

	saleDate := in.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}

	qty := float64(in.QuantitySold)
	revenue := qty * in.SellingPricePerUnit
	cogs := qty * item.UnitCost

	order := sales.Order{
		InventoryID:         inventoryID,
		Channel:             strings.TrimSpace(in.Channel),
		QuantitySold:        in.QuantitySold,
		SellingPricePerUnit: in.SellingPricePerUnit,
		MarketplaceFees:     in.MarketplaceFees,
		ShippingCost:        in.ShippingCost,
		TotalRevenue:        revenue,
		COGS:                cogs,
		Profit:              revenue - cogs - in.MarketplaceFees - in.ShippingCost,
		Currency:            item.Currency,
		SaleDate:            saleDate,
		PayoutStatus:        sales.PayoutPending,
		Notes:               strings.TrimSpace(in.Notes),
	}

	order, item, err = s.store.RecordSale(ctx, order)
	if err != nil {
		return sales.Order{}, inventory.Item{}, err
	}

	entry := s.log.WithField("order_id", order.ID).
		WithField("inventory_id", inventoryID).
		WithField("quantity_sold", in.QuantitySold)
	entry.Info("sale recorded")
	if item.LowStock() {
		entry.WithField("quantity_available", item.QuantityAvailable).
			Warn("inventory item low on stock")
	}
	return order, item, nil
}

// UpdatePayout changes an order's payout status and notes. All other fields
// are immutable after creation.
func (s *Service) UpdatePayout(ctx context.Context, id string, status sales.PayoutStatus, notes string) (sales.Order, error) {
	if !sales.ValidPayoutStatus(status) {
		return sales.Order{}, errs.Validation("payoutStatus", "unknown payout status")
	}
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return sales.Order{}, err
	}
	order.PayoutStatus = status
	order.Notes = strings.TrimSpace(notes)
	return s.store.UpdateOrder(ctx, order)
}

// Get fetches one sales order.
func (s *Service) Get(ctx context.Context, id string) (sales.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// List returns all sales orders.
func (s *Service) List(ctx context.Context) ([]sales.Order, error) {
	return s.store.ListOrders(ctx)
}

// Delete removes a sales order. Inventory is not restocked; deletions are a
// bookkeeping correction, not a return flow.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteOrder(ctx, id)
}
