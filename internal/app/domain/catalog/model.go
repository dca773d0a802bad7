// Package catalog holds product research records: items under evaluation
// before any stock is purchased.
package catalog

import "time"

// Status tracks where a candidate product sits in the research funnel.
type Status string

const (
	StatusResearching Status = "researching"
	StatusReadyToBuy  Status = "ready_to_buy"
	StatusBought      Status = "bought"
	StatusRejected    Status = "rejected"
)

// ValidStatus reports whether s is a known research status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusResearching, StatusReadyToBuy, StatusBought, StatusRejected:
		return true
	}
	return false
}

// PotentialProduct is a candidate item being evaluated for purchase.
type PotentialProduct struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	SupplierName string    `json:"supplierName"`
	SupplierLink string    `json:"supplierLink"`
	Marketplace  string    `json:"marketplace"`
	CostPerUnit  float64   `json:"costPerUnit"`
	TargetPrice  float64   `json:"targetPrice"`
	Currency     string    `json:"currency"`
	Status       Status    `json:"status"`
	BuyRating    int       `json:"buyRating"`
	ImageURL     string    `json:"imageUrl"`
	Notes        string    `json:"notes"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
