// ABOUTME: Auth handlers for the stateless signed session
// ABOUTME: Reports the current user and clears the session cookie on logout

package handlers

import (
	"net/http"

	"github.com/markalston/agent-dashboard/middleware"
	"github.com/markalston/agent-dashboard/models"
)

// Me returns the current user. It runs behind RequireSession, so with auth
// enabled the session is always present; with auth disabled the user is null.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	resp := models.MeResponse{}
	if session := middleware.GetSession(r); session != nil {
		resp.User = &models.SessionUser{
			ID:       session.UserID,
			Username: session.Username,
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Logout clears the session cookie. Tokens are stateless, so nothing is
// revoked server-side; the call succeeds with or without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Cookie.Clear(w, r)
	h.writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}
