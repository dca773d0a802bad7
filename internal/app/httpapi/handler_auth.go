package httpapi

import (
	"net/http"
	"time"

	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/services/auth"
	"github.com/shopops/backoffice/internal/httputil"
	"github.com/shopops/backoffice/internal/middleware"
)

const oidcStateCookie = "oidc_state"

func claimsFrom(r *http.Request) (identity.Claims, bool) {
	return middleware.ClaimsFrom(r.Context())
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	claims, token, err := h.app.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		httputil.Unauthorized(w, "invalid email or password")
		return
	}
	h.setSessionCookie(w, token, h.app.Auth.SessionTTL())
	httputil.WriteJSON(w, http.StatusOK, claims)
}

// currentUser is the canonical probe the frontend polls to know who is
// signed in. Responses are never cached.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	claims, ok := claimsFrom(r)
	if !ok {
		httputil.Unauthorized(w, "not authenticated")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claims)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if err := h.app.Auth.Logout(r.Context(), token); err != nil {
		h.log.WithError(err).Warn("logout failed")
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) beginOIDC(w http.ResponseWriter, r *http.Request) {
	if !h.app.Auth.OIDCEnabled() {
		httputil.NotFound(w, "oidc login is not configured")
		return
	}
	state, err := auth.NewState()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oidcStateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.app.Auth.AuthorizeURL(state), http.StatusFound)
}

func (h *Handler) oidcCallback(w http.ResponseWriter, r *http.Request) {
	if !h.app.Auth.OIDCEnabled() {
		httputil.NotFound(w, "oidc login is not configured")
		return
	}

	stateCookie, err := r.Cookie(oidcStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		httputil.Unauthorized(w, "state mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oidcStateCookie,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	claims, token, err := h.app.Auth.CompleteOIDC(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.setSessionCookie(w, token, h.app.Auth.SessionTTL())
	httputil.WriteJSON(w, http.StatusOK, claims)
}
