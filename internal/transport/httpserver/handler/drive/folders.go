package drive

import (
	"context"
	"net/http"

	drivedomain "family-drive-go/internal/domain/drive"
)

type createFolderRequest struct {
	Name             string   `json:"name"`
	ParentID         *string  `json:"parent_id"`
	AssignedTo       []string `json:"assigned_to"`
	SharedWithFamily bool     `json:"shared_with_family"`
	SharedWith       []string `json:"shared_with"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type moveFolderRequest struct {
	ParentID *string `json:"parent_id"`
}

type folderAssignmentRequest struct {
	AssignedTo []string `json:"assigned_to"`
}

type sharingRequest struct {
	SharedWithFamily bool     `json:"shared_with_family"`
	SharedWith       []string `json:"shared_with"`
}

func (req sharingRequest) sharing() drivedomain.Sharing {
	return drivedomain.Sharing{WithFamily: req.SharedWithFamily, With: req.SharedWith}
}

func (h *Handlers) ListMyFolders(w http.ResponseWriter, r *http.Request) {
	h.listFolders(w, r, "list_folders", h.Drive.MyFolders)
}

func (h *Handlers) ListSharedFolders(w http.ResponseWriter, r *http.Request) {
	h.listFolders(w, r, "list_shared_folders", h.Drive.SharedFolders)
}

type folderLister func(ctx context.Context, actor drivedomain.Actor, scope drivedomain.Scope) ([]drivedomain.FolderView, error)

func (h *Handlers) listFolders(w http.ResponseWriter, r *http.Request, operation string, list folderLister) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	scope, err := parseScope(r, "parent_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scope", err.Error())
		return
	}

	views, err := list(r.Context(), actor, scope)
	if err != nil {
		h.fail(w, operation, err, "user_id", actor.UserID)
		return
	}

	writeJSON(w, http.StatusOK, toFolderViews(views))
}

func (h *Handlers) FolderPath(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r)
	if !ok {
		return
	}

	path, err := h.Drive.FolderPath(r.Context(), actor, folderID)
	if err != nil {
		h.fail(w, "folder_path", err, "user_id", actor.UserID, "folder_id", folderID)
		return
	}

	response := make([]pathSegmentResponse, 0, len(path))
	for _, segment := range path {
		response = append(response, pathSegmentResponse{ID: segment.ID, Name: segment.Name})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) FolderPicker(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	folders, err := h.Drive.FolderPicker(r.Context(), actor)
	if err != nil {
		h.fail(w, "folder_picker", err, "user_id", actor.UserID)
		return
	}

	response := make([]pickerFolderResponse, 0, len(folders))
	for _, folder := range folders {
		response = append(response, pickerFolderResponse{
			ID:       folder.ID,
			Name:     folder.Name,
			ParentID: folder.ParentID,
			Depth:    folder.Depth,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	folder, err := h.Drive.CreateFolder(r.Context(), actor, drivedomain.CreateFolderInput{
		Name:             req.Name,
		ParentID:         req.ParentID,
		AssignedTo:       req.AssignedTo,
		SharedWithFamily: req.SharedWithFamily,
		SharedWith:       req.SharedWith,
	})
	if err != nil {
		h.fail(w, "create_folder", err, "user_id", actor.UserID)
		return
	}

	writeJSON(w, http.StatusCreated, toFolderResponse(folder))
}

func (h *Handlers) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFolder(w, r, "rename_folder", func(actor drivedomain.Actor, folderID string) (*drivedomain.Folder, error) {
		return h.Drive.RenameFolder(r.Context(), actor, folderID, req.Name)
	})
}

func (h *Handlers) MoveFolder(w http.ResponseWriter, r *http.Request) {
	var req moveFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFolder(w, r, "move_folder", func(actor drivedomain.Actor, folderID string) (*drivedomain.Folder, error) {
		return h.Drive.MoveFolder(r.Context(), actor, folderID, req.ParentID)
	})
}

func (h *Handlers) UpdateFolderAssignment(w http.ResponseWriter, r *http.Request) {
	var req folderAssignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFolder(w, r, "assign_folder", func(actor drivedomain.Actor, folderID string) (*drivedomain.Folder, error) {
		return h.Drive.UpdateFolderAssignment(r.Context(), actor, folderID, req.AssignedTo)
	})
}

func (h *Handlers) UpdateFolderSharing(w http.ResponseWriter, r *http.Request) {
	var req sharingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	h.mutateFolder(w, r, "share_folder", func(actor drivedomain.Actor, folderID string) (*drivedomain.Folder, error) {
		return h.Drive.UpdateFolderSharing(r.Context(), actor, folderID, req.sharing())
	})
}

func (h *Handlers) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r)
	if !ok {
		return
	}
	deleteContents, err := parseBoolParam(r.URL.Query().Get("delete_contents"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "delete_contents must be a boolean")
		return
	}

	keys, err := h.Drive.DeleteFolder(r.Context(), actor, folderID, deleteContents)
	if err != nil {
		h.fail(w, "delete_folder", err, "user_id", actor.UserID, "folder_id", folderID)
		return
	}

	h.purge(r.Context(), keys)
	writeJSON(w, http.StatusOK, deleteResponse{StorageKeys: nonNil(keys)})
}

type folderMutation func(actor drivedomain.Actor, folderID string) (*drivedomain.Folder, error)

func (h *Handlers) mutateFolder(w http.ResponseWriter, r *http.Request, operation string, mutate folderMutation) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r)
	if !ok {
		return
	}

	folder, err := mutate(actor, folderID)
	if err != nil {
		h.fail(w, operation, err, "user_id", actor.UserID, "folder_id", folderID)
		return
	}

	writeJSON(w, http.StatusOK, toFolderResponse(folder))
}
