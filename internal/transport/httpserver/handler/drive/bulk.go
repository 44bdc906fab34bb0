package drive

import (
	"net/http"

	drivedomain "family-drive-go/internal/domain/drive"
)

type bulkDeleteRequest struct {
	IDs            []string `json:"ids"`
	DeleteContents *bool    `json:"delete_contents"`
}

type bulkMoveFilesRequest struct {
	IDs      []string `json:"ids"`
	FolderID *string  `json:"folder_id"`
}

type bulkMoveFoldersRequest struct {
	IDs      []string `json:"ids"`
	ParentID *string  `json:"parent_id"`
}

type bulkAssignFilesRequest struct {
	IDs        []string `json:"ids"`
	AssignedTo *string  `json:"assigned_to"`
}

type bulkAssignFoldersRequest struct {
	IDs        []string `json:"ids"`
	AssignedTo []string `json:"assigned_to"`
}

type bulkCall func(actor drivedomain.Actor) (*drivedomain.BulkResult, error)

func (h *Handlers) BulkDeleteFiles(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.runBulk(w, r, "bulk_delete_files", true, func(actor drivedomain.Actor) (*drivedomain.BulkResult, error) {
		return h.Drive.BulkDeleteFiles(r.Context(), actor, req.IDs)
	})
}

func (h *Handlers) BulkDeleteFolders(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	deleteContents := true
	if req.DeleteContents != nil {
		deleteContents = *req.DeleteContents
	}
	h.runBulk(w, r, "bulk_delete_folders", true, func(actor drivedomain.Actor) (*drivedomain.BulkResult, error) {
		return h.Drive.BulkDeleteFolders(r.Context(), actor, req.IDs, deleteContents)
	})
}

func (h *Handlers) BulkMoveFiles(w http.ResponseWriter, r *http.Request) {
	var req bulkMoveFilesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.runBulk(w, r, "bulk_move_files", false, func(actor drivedomain.Actor) (*drivedomain.BulkResult, error) {
		return h.Drive.BulkMoveFiles(r.Context(), actor, req.IDs, req.FolderID)
	})
}

func (h *Handlers) BulkMoveFolders(w http.ResponseWriter, r *http.Request) {
	var req bulkMoveFoldersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.runBulk(w, r, "bulk_move_folders", false, func(actor drivedomain.Actor) (*drivedomain.BulkResult, error) {
		return h.Drive.BulkMoveFolders(r.Context(), actor, req.IDs, req.ParentID)
	})
}

func (h *Handlers) BulkAssignFiles(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignFilesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.runBulk(w, r, "bulk_assign_files", false, func(actor drivedomain.Actor) (*drivedomain.BulkResult, error) {
		return h.Drive.BulkAssignFiles(r.Context(), actor, req.IDs, req.AssignedTo)
	})
}

func (h *Handlers) BulkAssignFolders(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignFoldersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.runBulk(w, r, "bulk_assign_folders", false, func(actor drivedomain.Actor) (*drivedomain.BulkResult, error) {
		return h.Drive.BulkAssignFolders(r.Context(), actor, req.IDs, req.AssignedTo)
	})
}

func (h *Handlers) runBulk(w http.ResponseWriter, r *http.Request, operation string, purge bool, call bulkCall) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := call(actor)
	if err != nil {
		// Items processed before the failure are committed.
		if purge && result != nil {
			h.purge(r.Context(), result.StorageKeys)
		}
		h.fail(w, operation, err, "user_id", actor.UserID)
		return
	}

	if purge {
		h.purge(r.Context(), result.StorageKeys)
	}
	writeJSON(w, http.StatusOK, toBulkResponse(result))
}
