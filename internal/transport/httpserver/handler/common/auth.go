package common

import (
	"net/http"

	"family-drive-go/internal/transport/httpserver/middleware"
)

// AuthMe returns the resolved caller, including family id and role when
// the caller belongs to a family.
func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
