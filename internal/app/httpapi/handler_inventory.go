package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shopops/backoffice/internal/app/domain/inventory"
	salessvc "github.com/shopops/backoffice/internal/app/services/sales"
	"github.com/shopops/backoffice/internal/httputil"
)

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Inventory.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if items == nil {
		items = []inventory.Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Inventory.ListLowStock(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if items == nil {
		items = []inventory.Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) createInventory(w http.ResponseWriter, r *http.Request) {
	var item inventory.Item
	if !httputil.DecodeJSON(w, r, &item) {
		return
	}
	created, err := h.app.Inventory.Create(r.Context(), item)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) getInventory(w http.ResponseWriter, r *http.Request) {
	item, err := h.app.Inventory.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) updateInventory(w http.ResponseWriter, r *http.Request) {
	var item inventory.Item
	if !httputil.DecodeJSON(w, r, &item) {
		return
	}
	item.ID = mux.Vars(r)["id"]
	updated, err := h.app.Inventory.Update(r.Context(), item)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Inventory.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sellResponse pairs the created order with the post-sale inventory state so
// clients can refresh both without another round trip.
type sellResponse struct {
	Order     any `json:"order"`
	Inventory any `json:"inventory"`
}

func (h *Handler) sellInventory(w http.ResponseWriter, r *http.Request) {
	var in salessvc.SellInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	order, item, err := h.app.Sales.Sell(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sellResponse{Order: order, Inventory: item})
}

func (h *Handler) inventoryImage(w http.ResponseWriter, r *http.Request) {
	a, ok := h.saveUpload(w, r, "inventory")
	if !ok {
		return
	}
	item, err := h.app.Inventory.SetImage(r.Context(), mux.Vars(r)["id"], a.URL)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}
