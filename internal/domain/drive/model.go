package drive

import (
	"time"
)

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Actor is the resolved caller of a drive operation.
type Actor struct {
	UserID   string
	FamilyID string
	Role     string
}

func (a Actor) IsOwner() bool {
	return a.Role == RoleOwner
}

func (a Actor) InFamily() bool {
	return a.FamilyID != ""
}

// Columns written by UpdateFolder and UpdateFile. A mutation names only the
// columns it changed so concurrent updates of other columns survive.
const (
	ColumnName             = "name"
	ColumnParent           = "parent_id"
	ColumnFolder           = "folder_id"
	ColumnAssignedTo       = "assigned_to"
	ColumnSharedWithFamily = "shared_with_family"
	ColumnSharedWith       = "shared_with"
	ColumnTags             = "tags"
)

type Folder struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	FamilyID         string    `gorm:"type:uuid;index;not null"`
	ParentID         *string   `gorm:"type:uuid;index"`
	Name             string    `gorm:"not null"`
	CreatedBy        string    `gorm:"not null;column:created_by"`
	AssignedTo       []string  `gorm:"serializer:json;not null;column:assigned_to"`
	SharedWithFamily bool      `gorm:"not null;default:false;column:shared_with_family"`
	SharedWith       []string  `gorm:"serializer:json;not null;column:shared_with"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Folder) TableName() string {
	return "drive_folders"
}

type File struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	FamilyID         string    `gorm:"type:uuid;index;not null"`
	FolderID         *string   `gorm:"type:uuid;index"`
	Name             string    `gorm:"not null"`
	OriginalName     string    `gorm:"not null;column:original_name"`
	UploadedBy       string    `gorm:"not null;column:uploaded_by"`
	AssignedTo       []string  `gorm:"serializer:json;not null;column:assigned_to"`
	SharedWithFamily bool      `gorm:"not null;default:false;column:shared_with_family"`
	SharedWith       []string  `gorm:"serializer:json;not null;column:shared_with"`
	Tags             []string  `gorm:"serializer:json;not null"`
	Size             int64     `gorm:"not null;default:0"`
	MediaType        string    `gorm:"not null;column:media_type"`
	StorageKey       string    `gorm:"not null;column:storage_key"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (File) TableName() string {
	return "drive_files"
}

type Sharing struct {
	WithFamily bool
	With       []string
}

func (f *Folder) Sharing() Sharing {
	return Sharing{WithFamily: f.SharedWithFamily, With: f.SharedWith}
}

func (f *File) Sharing() Sharing {
	return Sharing{WithFamily: f.SharedWithFamily, With: f.SharedWith}
}

// ScopeKind selects which part of the tree a read covers.
type ScopeKind string

const (
	ScopeRoot   ScopeKind = "root"
	ScopeFolder ScopeKind = "folder"
	ScopeAll    ScopeKind = "all"
)

type Scope struct {
	Kind     ScopeKind
	FolderID string
}

func RootScope() Scope {
	return Scope{Kind: ScopeRoot}
}

func AllScope() Scope {
	return Scope{Kind: ScopeAll}
}

func FolderScope(folderID string) Scope {
	return Scope{Kind: ScopeFolder, FolderID: folderID}
}

// Contains reports whether an item with the given parent lies in the scope.
func (s Scope) Contains(parentID *string) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeFolder:
		return parentID != nil && *parentID == s.FolderID
	default:
		return parentID == nil
	}
}

type FolderView struct {
	Folder        Folder
	AssigneeNames []string
	CreatorName   string
	ItemCount     int64
}

type FileView struct {
	File          File
	AssigneeNames []string
	UploaderName  string
	FolderName    string
}

type PathSegment struct {
	ID   string
	Name string
}

type PickerFolder struct {
	ID       string
	Name     string
	ParentID *string
	Depth    int
}

type CreateFolderInput struct {
	Name             string
	ParentID         *string
	AssignedTo       []string
	SharedWithFamily bool
	SharedWith       []string
}

type CreateFileInput struct {
	Name             string
	OriginalName     string
	Size             int64
	MediaType        string
	StorageKey       string
	FolderID         *string
	AssignedTo       *string
	Tags             []string
	SharedWithFamily bool
	SharedWith       []string
}

type BulkStatus string

const (
	BulkStatusApplied BulkStatus = "applied"
	BulkStatusSkipped BulkStatus = "skipped"
)

type BulkItemResult struct {
	ID     string
	Status BulkStatus
	Reason string
}

type BulkResult struct {
	StorageKeys []string
	Results     []BulkItemResult
}

func (r *BulkResult) Applied() int {
	count := 0
	for _, item := range r.Results {
		if item.Status == BulkStatusApplied {
			count++
		}
	}
	return count
}
