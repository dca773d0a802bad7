package httpapi

import (
	"net/http"

	"github.com/shopops/backoffice/internal/app/domain/currency"
	"github.com/shopops/backoffice/internal/httputil"
)

func (h *Handler) exchangeRates(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, currency.Rates())
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.app.Reports.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
