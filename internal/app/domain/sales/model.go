// Package sales holds completed sale transactions recorded against inventory.
package sales

import "time"

// PayoutStatus tracks whether marketplace proceeds have been remitted.
type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "pending"
	PayoutReceived PayoutStatus = "received"
)

// ValidPayoutStatus reports whether s is a known payout status.
func ValidPayoutStatus(s PayoutStatus) bool {
	return s == PayoutPending || s == PayoutReceived
}

// Order is one completed sale. The monetary fields are computed at creation
// and never recomputed; only PayoutStatus and Notes may change afterwards.
type Order struct {
	ID                  string       `json:"id"`
	InventoryID         string       `json:"inventoryId"`
	Channel             string       `json:"channel"`
	QuantitySold        int          `json:"quantitySold"`
	SellingPricePerUnit float64      `json:"sellingPricePerUnit"`
	MarketplaceFees     float64      `json:"marketplaceFees"`
	ShippingCost        float64      `json:"shippingCost"`
	TotalRevenue        float64      `json:"totalRevenue"`
	COGS                float64      `json:"cogs"`
	Profit              float64      `json:"profit"`
	Currency            string       `json:"currency"`
	SaleDate            time.Time    `json:"saleDate"`
	PayoutStatus        PayoutStatus `json:"payoutStatus"`
	Notes               string       `json:"notes"`
	CreatedAt           time.Time    `json:"createdAt"`
}
