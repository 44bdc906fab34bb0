package drive

import (
	"errors"
	"net/http"
	"strings"

	drivedomain "family-drive-go/internal/domain/drive"
	commonhandler "family-drive-go/internal/transport/httpserver/handler/common"
	"family-drive-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	commonhandler.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	commonhandler.WriteJSON(w, status, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return commonhandler.DecodeJSON(w, r, dst)
}

func actorFrom(w http.ResponseWriter, r *http.Request) (drivedomain.Actor, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return drivedomain.Actor{}, false
	}
	return user.DriveActor(), true
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return "", false
	}
	return id, true
}

// fail maps a drive error to its HTTP shape. Domain refusals are logged as
// business errors, everything else as internal.
func (h *Handlers) fail(w http.ResponseWriter, operation string, err error, args ...any) {
	switch {
	case errors.Is(err, drivedomain.ErrNotInFamily):
		h.log.BusinessError("drive."+operation+": user not in family", err, args...)
		writeError(w, http.StatusNotFound, "family_not_found", "family not found")
	case errors.Is(err, drivedomain.ErrForbidden):
		h.log.BusinessError("drive."+operation+": forbidden", err, args...)
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, drivedomain.ErrFolderNotFound), errors.Is(err, drivedomain.ErrParentNotFound):
		h.log.BusinessError("drive."+operation+": folder not found", err, args...)
		writeError(w, http.StatusNotFound, "folder_not_found", "folder not found")
	case errors.Is(err, drivedomain.ErrFileNotFound):
		h.log.BusinessError("drive."+operation+": file not found", err, args...)
		writeError(w, http.StatusNotFound, "file_not_found", "file not found")
	case errors.Is(err, drivedomain.ErrNotFound):
		h.log.BusinessError("drive."+operation+": not found", err, args...)
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, drivedomain.ErrInvalidOperation):
		h.log.BusinessError("drive."+operation+": invalid operation", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_operation", err.Error())
	default:
		h.log.InternalError("drive."+operation+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
