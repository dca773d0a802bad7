package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shopops/backoffice/internal/app/domain/sales"
	salessvc "github.com/shopops/backoffice/internal/app/services/sales"
	"github.com/shopops/backoffice/internal/httputil"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.app.Sales.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if orders == nil {
		orders = []sales.Order{}
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

// createOrder records a sale through the collection endpoint; the inventory
// lot comes from the body instead of the path.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		InventoryID string `json:"inventoryId"`
		salessvc.SellInput
	}
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	if in.InventoryID == "" {
		httputil.ValidationError(w, "inventory id is required", "inventoryId")
		return
	}
	order, item, err := h.app.Sales.Sell(r.Context(), in.InventoryID, in.SellInput)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sellResponse{Order: order, Inventory: item})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.app.Sales.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PayoutStatus sales.PayoutStatus `json:"payoutStatus"`
		Notes        string             `json:"notes"`
	}
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	order, err := h.app.Sales.UpdatePayout(r.Context(), mux.Vars(r)["id"], in.PayoutStatus, in.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Sales.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
