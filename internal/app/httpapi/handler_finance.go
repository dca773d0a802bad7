package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shopops/backoffice/internal/app/domain/finance"
	"github.com/shopops/backoffice/internal/httputil"
)

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.app.Finance.ListAccounts(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if accounts == nil {
		accounts = []finance.BankAccount{}
	}
	httputil.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var acct finance.BankAccount
	if !httputil.DecodeJSON(w, r, &acct) {
		return
	}
	created, err := h.app.Finance.CreateAccount(r.Context(), acct)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.app.Finance.GetAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	var acct finance.BankAccount
	if !httputil.DecodeJSON(w, r, &acct) {
		return
	}
	acct.ID = mux.Vars(r)["id"]
	updated, err := h.app.Finance.UpdateAccount(r.Context(), acct)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Finance.DeleteAccount(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adjustAccount(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount      float64                `json:"amount"`
		Type        finance.AdjustmentType `json:"type"`
		Description string                 `json:"description"`
	}
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	acct, err := h.app.Finance.Adjust(r.Context(), mux.Vars(r)["id"], in.Amount, in.Type, in.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.app.Finance.ListExpenses(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if expenses == nil {
		expenses = []finance.Expense{}
	}
	httputil.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var e finance.Expense
	if !httputil.DecodeJSON(w, r, &e) {
		return
	}
	created, err := h.app.Finance.CreateExpense(r.Context(), e)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) getExpense(w http.ResponseWriter, r *http.Request) {
	e, err := h.app.Finance.GetExpense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var e finance.Expense
	if !httputil.DecodeJSON(w, r, &e) {
		return
	}
	e.ID = mux.Vars(r)["id"]
	updated, err := h.app.Finance.UpdateExpense(r.Context(), e)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Finance.DeleteExpense(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
