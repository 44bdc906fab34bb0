package drive

import (
	"context"
	"net/http"
	"strings"

	drivedomain "family-drive-go/internal/domain/drive"
)

type createFileRequest struct {
	Name             string   `json:"name"`
	OriginalName     string   `json:"original_name"`
	Size             int64    `json:"size"`
	MediaType        string   `json:"media_type"`
	StorageKey       string   `json:"storage_key"`
	FolderID         *string  `json:"folder_id"`
	AssignedTo       *string  `json:"assigned_to"`
	Tags             []string `json:"tags"`
	SharedWithFamily bool     `json:"shared_with_family"`
	SharedWith       []string `json:"shared_with"`
}

type moveFileRequest struct {
	FolderID *string `json:"folder_id"`
}

type fileAssignmentRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

type tagsRequest struct {
	Tags []string `json:"tags"`
}

type fileLister func(ctx context.Context, actor drivedomain.Actor, scope drivedomain.Scope) ([]drivedomain.FileView, error)

func (h *Handlers) ListMyFiles(w http.ResponseWriter, r *http.Request) {
	h.listFiles(w, r, "list_files", h.Drive.MyFiles)
}

func (h *Handlers) ListSharedFiles(w http.ResponseWriter, r *http.Request) {
	h.listFiles(w, r, "list_shared_files", h.Drive.SharedFiles)
}

func (h *Handlers) listFiles(w http.ResponseWriter, r *http.Request, operation string, list fileLister) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	scope, err := parseScope(r, "folder_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scope", err.Error())
		return
	}

	views, err := list(r.Context(), actor, scope)
	if err != nil {
		h.fail(w, operation, err, "user_id", actor.UserID)
		return
	}

	writeJSON(w, http.StatusOK, toFileViews(views))
}

func (h *Handlers) SearchFiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	views, err := h.Drive.SearchFiles(r.Context(), actor, query)
	if err != nil {
		h.fail(w, "search_files", err, "user_id", actor.UserID)
		return
	}

	writeJSON(w, http.StatusOK, toFileViews(views))
}

// CreateFile records an object that the client already uploaded. The key
// must resolve in the object store before a row points at it.
func (h *Handlers) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req createFileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req.StorageKey = strings.TrimSpace(req.StorageKey)
	if req.StorageKey == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "storage_key is required")
		return
	}
	if h.Objects != nil {
		exists, err := h.Objects.Exists(r.Context(), req.StorageKey)
		if err != nil {
			h.log.InternalError("drive.create_file: object lookup failed", err, "user_id", actor.UserID, "storage_key", req.StorageKey)
			writeError(w, http.StatusBadGateway, "storage_unavailable", "storage unavailable")
			return
		}
		if !exists {
			writeError(w, http.StatusBadRequest, "object_not_found", "uploaded object not found")
			return
		}
	}

	file, err := h.Drive.CreateFile(r.Context(), actor, drivedomain.CreateFileInput{
		Name:             req.Name,
		OriginalName:     req.OriginalName,
		Size:             req.Size,
		MediaType:        req.MediaType,
		StorageKey:       req.StorageKey,
		FolderID:         req.FolderID,
		AssignedTo:       req.AssignedTo,
		Tags:             req.Tags,
		SharedWithFamily: req.SharedWithFamily,
		SharedWith:       req.SharedWith,
	})
	if err != nil {
		h.fail(w, "create_file", err, "user_id", actor.UserID)
		return
	}

	writeJSON(w, http.StatusCreated, toFileResponse(file))
}

func (h *Handlers) RenameFile(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFile(w, r, "rename_file", func(actor drivedomain.Actor, fileID string) (*drivedomain.File, error) {
		return h.Drive.RenameFile(r.Context(), actor, fileID, req.Name)
	})
}

func (h *Handlers) MoveFile(w http.ResponseWriter, r *http.Request) {
	var req moveFileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFile(w, r, "move_file", func(actor drivedomain.Actor, fileID string) (*drivedomain.File, error) {
		return h.Drive.MoveFile(r.Context(), actor, fileID, req.FolderID)
	})
}

func (h *Handlers) UpdateFileAssignment(w http.ResponseWriter, r *http.Request) {
	var req fileAssignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFile(w, r, "assign_file", func(actor drivedomain.Actor, fileID string) (*drivedomain.File, error) {
		return h.Drive.UpdateFileAssignment(r.Context(), actor, fileID, req.AssignedTo)
	})
}

func (h *Handlers) UpdateFileSharing(w http.ResponseWriter, r *http.Request) {
	var req sharingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFile(w, r, "share_file", func(actor drivedomain.Actor, fileID string) (*drivedomain.File, error) {
		return h.Drive.UpdateFileSharing(r.Context(), actor, fileID, req.sharing())
	})
}

func (h *Handlers) UpdateFileTags(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFile(w, r, "tag_file", func(actor drivedomain.Actor, fileID string) (*drivedomain.File, error) {
		return h.Drive.UpdateFileTags(r.Context(), actor, fileID, req.Tags)
	})
}

func (h *Handlers) DeleteFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	fileID, ok := pathID(w, r)
	if !ok {
		return
	}

	key, err := h.Drive.DeleteFile(r.Context(), actor, fileID)
	if err != nil {
		h.fail(w, "delete_file", err, "user_id", actor.UserID, "file_id", fileID)
		return
	}

	keys := []string{key}
	h.purge(r.Context(), keys)
	writeJSON(w, http.StatusOK, deleteResponse{StorageKeys: keys})
}

type fileMutation func(actor drivedomain.Actor, fileID string) (*drivedomain.File, error)

func (h *Handlers) mutateFile(w http.ResponseWriter, r *http.Request, operation string, mutate fileMutation) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	fileID, ok := pathID(w, r)
	if !ok {
		return
	}

	file, err := mutate(actor, fileID)
	if err != nil {
		h.fail(w, operation, err, "user_id", actor.UserID, "file_id", fileID)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(file))
}
