package drive

import (
	"time"

	drivedomain "family-drive-go/internal/domain/drive"
)

type folderResponse struct {
	ID               string    `json:"id"`
	FamilyID         string    `json:"family_id"`
	ParentID         *string   `json:"parent_id"`
	Name             string    `json:"name"`
	CreatedBy        string    `json:"created_by"`
	CreatorName      string    `json:"creator_name,omitempty"`
	AssignedTo       []string  `json:"assigned_to"`
	AssigneeNames    []string  `json:"assignee_names,omitempty"`
	SharedWithFamily bool      `json:"shared_with_family"`
	SharedWith       []string  `json:"shared_with"`
	ItemCount        *int64    `json:"item_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type fileResponse struct {
	ID               string    `json:"id"`
	FamilyID         string    `json:"family_id"`
	FolderID         *string   `json:"folder_id"`
	FolderName       string    `json:"folder_name,omitempty"`
	Name             string    `json:"name"`
	OriginalName     string    `json:"original_name"`
	UploadedBy       string    `json:"uploaded_by"`
	UploaderName     string    `json:"uploader_name,omitempty"`
	AssignedTo       *string   `json:"assigned_to"`
	AssigneeNames    []string  `json:"assignee_names,omitempty"`
	SharedWithFamily bool      `json:"shared_with_family"`
	SharedWith       []string  `json:"shared_with"`
	Tags             []string  `json:"tags"`
	Size             int64     `json:"size"`
	MediaType        string    `json:"media_type"`
	StorageKey       string    `json:"storage_key"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type pathSegmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type pickerFolderResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	Depth    int     `json:"depth"`
}

type bulkItemResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type bulkResponse struct {
	Applied     int                `json:"applied"`
	StorageKeys []string           `json:"storage_keys"`
	Results     []bulkItemResponse `json:"results"`
}

type deleteResponse struct {
	StorageKeys []string `json:"storage_keys"`
}

func toFolderResponse(folder *drivedomain.Folder) folderResponse {
	return folderResponse{
		ID:               folder.ID,
		FamilyID:         folder.FamilyID,
		ParentID:         folder.ParentID,
		Name:             folder.Name,
		CreatedBy:        folder.CreatedBy,
		AssignedTo:       nonNil(folder.AssignedTo),
		SharedWithFamily: folder.SharedWithFamily,
		SharedWith:       nonNil(folder.SharedWith),
		CreatedAt:        folder.CreatedAt,
		UpdatedAt:        folder.UpdatedAt,
	}
}

func toFolderViews(views []drivedomain.FolderView) []folderResponse {
	response := make([]folderResponse, 0, len(views))
	for i := range views {
		item := toFolderResponse(&views[i].Folder)
		item.CreatorName = views[i].CreatorName
		item.AssigneeNames = nonNil(views[i].AssigneeNames)
		count := views[i].ItemCount
		item.ItemCount = &count
		response = append(response, item)
	}
	return response
}

// toFileResponse exposes the single assignee a file may carry.
func toFileResponse(file *drivedomain.File) fileResponse {
	var assignedTo *string
	if len(file.AssignedTo) > 0 {
		assignee := file.AssignedTo[0]
		assignedTo = &assignee
	}

	return fileResponse{
		ID:               file.ID,
		FamilyID:         file.FamilyID,
		FolderID:         file.FolderID,
		Name:             file.Name,
		OriginalName:     file.OriginalName,
		UploadedBy:       file.UploadedBy,
		AssignedTo:       assignedTo,
		SharedWithFamily: file.SharedWithFamily,
		SharedWith:       nonNil(file.SharedWith),
		Tags:             nonNil(file.Tags),
		Size:             file.Size,
		MediaType:        file.MediaType,
		StorageKey:       file.StorageKey,
		CreatedAt:        file.CreatedAt,
		UpdatedAt:        file.UpdatedAt,
	}
}

func toFileViews(views []drivedomain.FileView) []fileResponse {
	response := make([]fileResponse, 0, len(views))
	for i := range views {
		item := toFileResponse(&views[i].File)
		item.FolderName = views[i].FolderName
		item.UploaderName = views[i].UploaderName
		item.AssigneeNames = nonNil(views[i].AssigneeNames)
		response = append(response, item)
	}
	return response
}

func toBulkResponse(result *drivedomain.BulkResult) bulkResponse {
	response := bulkResponse{
		Applied:     result.Applied(),
		StorageKeys: nonNil(result.StorageKeys),
		Results:     make([]bulkItemResponse, 0, len(result.Results)),
	}
	for _, item := range result.Results {
		response.Results = append(response.Results, bulkItemResponse{
			ID:     item.ID,
			Status: string(item.Status),
			Reason: item.Reason,
		})
	}
	return response
}
