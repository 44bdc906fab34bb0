package drive

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	drivedomain "family-drive-go/internal/domain/drive"
)

var errInvalidScope = errors.New("scope must be root, all or folder")

// parseScope reads ?scope=root|all|folder plus the parent id param. A bare
// parent id implies the folder scope.
func parseScope(r *http.Request, idParam string) (drivedomain.Scope, error) {
	query := r.URL.Query()
	kind := strings.ToLower(strings.TrimSpace(query.Get("scope")))
	folderID := strings.TrimSpace(query.Get(idParam))

	switch kind {
	case "":
		if folderID != "" {
			return drivedomain.FolderScope(folderID), nil
		}
		return drivedomain.RootScope(), nil
	case string(drivedomain.ScopeRoot):
		return drivedomain.RootScope(), nil
	case string(drivedomain.ScopeAll):
		return drivedomain.AllScope(), nil
	case string(drivedomain.ScopeFolder):
		if folderID == "" {
			return drivedomain.Scope{}, errors.New(idParam + " is required for folder scope")
		}
		return drivedomain.FolderScope(folderID), nil
	default:
		return drivedomain.Scope{}, errInvalidScope
	}
}

func parseBoolParam(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
