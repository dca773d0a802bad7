// Package catalog manages the product research funnel and the buy transition
// into inventory.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/shopops/backoffice/internal/app/domain/catalog"
	"github.com/shopops/backoffice/internal/app/domain/currency"
	"github.com/shopops/backoffice/internal/app/domain/inventory"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
	"github.com/shopops/backoffice/pkg/logger"
)

// Service coordinates potential-product records.
type Service struct {
	store     storage.CatalogStore
	inventory storage.InventoryStore
	log       *logger.Logger
}

// New creates a configured catalog service.
func New(store storage.CatalogStore, inventory storage.InventoryStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{store: store, inventory: inventory, log: log}
}

func validate(p *catalog.PotentialProduct) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errs.Validation("name", "name is required")
	}
	if p.Status == "" {
		p.Status = catalog.StatusResearching
	}
	if !catalog.ValidStatus(p.Status) {
		return errs.Validation("status", "unknown status")
	}
	if p.CostPerUnit < 0 {
		return errs.Validation("costPerUnit", "cost per unit cannot be negative")
	}
	if p.TargetPrice < 0 {
		return errs.Validation("targetPrice", "target price cannot be negative")
	}
	if p.BuyRating < 0 || p.BuyRating > 5 {
		return errs.Validation("buyRating", "buy rating must be between 0 and 5")
	}
	if p.Currency == "" {
		p.Currency = string(currency.USD)
	}
	return nil
}

// Create validates and stores a new potential product.
func (s *Service) Create(ctx context.Context, p catalog.PotentialProduct) (catalog.PotentialProduct, error) {
	if err := validate(&p); err != nil {
		return catalog.PotentialProduct{}, err
	}
	p, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return catalog.PotentialProduct{}, err
	}
	s.log.WithField("product_id", p.ID).Info("potential product created")
	return p, nil
}

// Update replaces a potential product's mutable fields.
func (s *Service) Update(ctx context.Context, p catalog.PotentialProduct) (catalog.PotentialProduct, error) {
	if err := validate(&p); err != nil {
		return catalog.PotentialProduct{}, err
	}
	return s.store.UpdateProduct(ctx, p)
}

// Get fetches one potential product.
func (s *Service) Get(ctx context.Context, id string) (catalog.PotentialProduct, error) {
	return s.store.GetProduct(ctx, id)
}

// List returns all potential products.
func (s *Service) List(ctx context.Context) ([]catalog.PotentialProduct, error) {
	return s.store.ListProducts(ctx)
}

// Delete removes a potential product.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

// SetImage records the uploaded image URL for a product.
func (s *Service) SetImage(ctx context.Context, id, url string) (catalog.PotentialProduct, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return catalog.PotentialProduct{}, err
	}
	p.ImageURL = url
	return s.store.UpdateProduct(ctx, p)
}

// BuyInput describes a purchase of a researched product.
type BuyInput struct {
	Quantity        int       `json:"quantity"`
	UnitCost        float64   `json:"unitCost"`
	ShippingCost    float64   `json:"shippingCost"`
	SupplierOrderID string    `json:"supplierOrderId"`
	PurchaseDate    time.Time `json:"purchaseDate"`
}

// Buy converts a potential product into stock: it atomically creates or
// augments an inventory lot and marks the product bought. Validation happens
// before any mutation.
func (s *Service) Buy(ctx context.Context, productID string, in BuyInput) (inventory.Item, error) {
	if in.Quantity <= 0 {
		return inventory.Item{}, errs.Validation("quantity", "quantity must be positive")
	}
	if in.UnitCost < 0 {
		return inventory.Item{}, errs.Validation("unitCost", "unit cost cannot be negative")
	}

	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return inventory.Item{}, err
	}

	unitCost := in.UnitCost
	if unitCost == 0 {
		unitCost = p.CostPerUnit
	}
	purchaseDate := in.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = time.Now().UTC()
	}

	lot := inventory.Item{
		ProductID:         p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Quantity:          in.Quantity,
		QuantityAvailable: in.Quantity,
		UnitCost:          unitCost,
		ShippingCost:      in.ShippingCost,
		Currency:          p.Currency,
		Status:            inventory.StatusOrdered,
		SupplierOrderID:   in.SupplierOrderID,
		PurchaseDate:      purchaseDate,
		ImageURL:          p.ImageURL,
	}

	item, err := s.inventory.ApplyPurchase(ctx, productID, lot)
	if err != nil {
		return inventory.Item{}, err
	}
	s.log.WithField("product_id", productID).
		WithField("inventory_id", item.ID).
		WithField("quantity", in.Quantity).
		Info("product purchased into inventory")
	return item, nil
}
