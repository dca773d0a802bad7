package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shopops/backoffice/internal/app/domain/identity"
	identitysvc "github.com/shopops/backoffice/internal/app/services/identity"
	"github.com/shopops/backoffice/internal/httputil"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.app.Identity.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if users == nil {
		users = []identity.User{}
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in identitysvc.CreateUserInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	u, err := h.app.Identity.CreateUser(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Identity.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var in identitysvc.UpdateUserInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	u, err := h.app.Identity.UpdateUser(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Identity.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

func (h *Handler) reactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := mux.Vars(r)["id"]
	if claims, ok := claimsFrom(r); ok && !active && claims.UserID == id {
		httputil.Conflict(w, "cannot deactivate your own account")
		return
	}
	u, err := h.app.Identity.SetActive(r.Context(), id, active)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) listInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.app.Identity.ListInvitations(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if invitations == nil {
		invitations = []identity.Invitation{}
	}
	httputil.WriteJSON(w, http.StatusOK, invitations)
}

func (h *Handler) createInvitation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	invitedBy := ""
	if claims, ok := claimsFrom(r); ok {
		invitedBy = claims.UserID
	}
	inv, err := h.app.Identity.Invite(r.Context(), in.Email, in.Role, invitedBy)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, inv)
}

func (h *Handler) resendInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.app.Identity.Resend(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) deleteInvitation(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Identity.DeleteInvitation(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token    string `json:"token"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	u, err := h.app.Identity.Accept(r.Context(), in.Token, in.Name, in.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}
