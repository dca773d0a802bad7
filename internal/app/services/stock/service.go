// Package stock manages inventory lots.
package stock

import (
	"context"
	"strings"

	"github.com/shopops/backoffice/internal/app/domain/currency"
	"github.com/shopops/backoffice/internal/app/domain/inventory"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
	"github.com/shopops/backoffice/pkg/logger"
)

// Service coordinates inventory records.
type Service struct {
	store storage.InventoryStore
	log   *logger.Logger
}

// New creates a configured stock service.
func New(store storage.InventoryStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("stock")
	}
	return &Service{store: store, log: log}
}

func validate(item *inventory.Item, creating bool) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return errs.Validation("name", "name is required")
	}
	if item.Quantity < 0 {
		return errs.Validation("quantity", "quantity cannot be negative")
	}
	if creating && item.QuantityAvailable == 0 {
		item.QuantityAvailable = item.Quantity
	}
	if item.QuantityAvailable < 0 {
		return errs.Validation("quantityAvailable", "available quantity cannot be negative")
	}
	if item.QuantityAvailable > item.Quantity {
		return errs.Validation("quantityAvailable", "available quantity cannot exceed total quantity")
	}
	if item.UnitCost < 0 {
		return errs.Validation("unitCost", "unit cost cannot be negative")
	}
	if item.Status == "" {
		item.Status = inventory.StatusOrdered
	}
	if !inventory.ValidStatus(item.Status) {
		return errs.Validation("status", "unknown status")
	}
	if item.Currency == "" {
		item.Currency = string(currency.USD)
	}
	return nil
}

// Create validates and stores a new inventory lot.
func (s *Service) Create(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	if err := validate(&item, true); err != nil {
		return inventory.Item{}, err
	}
	item, err := s.store.CreateItem(ctx, item)
	if err != nil {
		return inventory.Item{}, err
	}
	s.log.WithField("inventory_id", item.ID).
		WithField("quantity", item.Quantity).
		Info("inventory item created")
	return item, nil
}

// Update replaces an inventory lot's mutable fields.
func (s *Service) Update(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	if err := validate(&item, false); err != nil {
		return inventory.Item{}, err
	}
	updated, err := s.store.UpdateItem(ctx, item)
	if err != nil {
		return inventory.Item{}, err
	}
	if updated.LowStock() {
		s.log.WithField("inventory_id", updated.ID).
			WithField("quantity_available", updated.QuantityAvailable).
			Warn("inventory item low on stock")
	}
	return updated, nil
}

// Get fetches one inventory lot.
func (s *Service) Get(ctx context.Context, id string) (inventory.Item, error) {
	return s.store.GetItem(ctx, id)
}

// List returns all inventory lots.
func (s *Service) List(ctx context.Context) ([]inventory.Item, error) {
	return s.store.ListItems(ctx)
}

// ListLowStock returns lots at or below the reorder threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]inventory.Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	var low []inventory.Item
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}

// Delete removes an inventory lot.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteItem(ctx, id)
}

// SetImage records the uploaded image URL for a lot.
func (s *Service) SetImage(ctx context.Context, id, url string) (inventory.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return inventory.Item{}, err
	}
	item.ImageURL = url
	return s.store.UpdateItem(ctx, item)
}
