package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shopops/backoffice/internal/app/domain/catalog"
	catalogsvc "github.com/shopops/backoffice/internal/app/services/catalog"
	"github.com/shopops/backoffice/internal/httputil"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.app.Catalog.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if products == nil {
		products = []catalog.PotentialProduct{}
	}
	httputil.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.PotentialProduct
	if !httputil.DecodeJSON(w, r, &p) {
		return
	}
	if claims, ok := claimsFrom(r); ok {
		p.CreatedBy = claims.UserID
	}
	created, err := h.app.Catalog.Create(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.PotentialProduct
	if !httputil.DecodeJSON(w, r, &p) {
		return
	}
	p.ID = mux.Vars(r)["id"]
	updated, err := h.app.Catalog.Update(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) buyProduct(w http.ResponseWriter, r *http.Request) {
	var in catalogsvc.BuyInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	item, err := h.app.Catalog.Buy(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) productImage(w http.ResponseWriter, r *http.Request) {
	a, ok := h.saveUpload(w, r, "products")
	if !ok {
		return
	}
	p, err := h.app.Catalog.SetImage(r.Context(), mux.Vars(r)["id"], a.URL)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}
