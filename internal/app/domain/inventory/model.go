// Package inventory holds purchased stock lots and their remaining quantities.
package inventory

import "time"

// Status tracks a stock lot from supplier order to sell-through.
type Status string

const (
	StatusOrdered  Status = "ordered"
	StatusShipped  Status = "shipped"
	StatusReceived Status = "received"
	StatusInStock  Status = "in_stock"
	StatusSoldOut  Status = "sold_out"
)

// ValidStatus reports whether s is a known inventory status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOrdered, StatusShipped, StatusReceived, StatusInStock, StatusSoldOut:
		return true
	}
	return false
}

// LowStockThreshold is the available quantity at or below which an item is
// flagged for reorder.
const LowStockThreshold = 5

// Item is one purchased stock lot. QuantityAvailable only ever decreases as
// sales are recorded and never exceeds Quantity.
type Item struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"productId"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku"`
	Quantity          int       `json:"quantity"`
	QuantityAvailable int       `json:"quantityAvailable"`
	UnitCost          float64   `json:"unitCost"`
	ShippingCost      float64   `json:"shippingCost"`
	Currency          string    `json:"currency"`
	Status            Status    `json:"status"`
	WarehouseLocation string    `json:"warehouseLocation"`
	TrackingNumber    string    `json:"trackingNumber"`
	SupplierOrderID   string    `json:"supplierOrderId"`
	PurchaseDate      time.Time `json:"purchaseDate"`
	ImageURL          string    `json:"imageUrl"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// LowStock reports whether the lot is running low but not yet sold out.
func (i Item) LowStock() bool {
	return i.Status != StatusSoldOut && i.QuantityAvailable <= LowStockThreshold
}
