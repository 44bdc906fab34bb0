package drive

import "context"

// Repository is the folder/file store. It holds no business rules; every
// lookup is scoped by family.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	LockFamilyTree(ctx context.Context, familyID string) error

	GetFolder(ctx context.Context, familyID, folderID string) (*Folder, error)
	ListFoldersByFamily(ctx context.Context, familyID string) ([]Folder, error)
	ListFoldersByParent(ctx context.Context, familyID string, parentID *string) ([]Folder, error)
	CountFolders(ctx context.Context, familyID string) (int64, error)
	CountChildrenByFolderIDs(ctx context.Context, familyID string, folderIDs []string) (map[string]int64, error)
	CreateFolder(ctx context.Context, folder *Folder) error
	UpdateFolder(ctx context.Context, folder *Folder, columns ...string) error
	DeleteFolder(ctx context.Context, familyID, folderID string) (bool, error)
	ReparentFolders(ctx context.Context, familyID, fromParentID string, toParentID *string) error

	GetFile(ctx context.Context, familyID, fileID string) (*File, error)
	ListFilesByFamily(ctx context.Context, familyID string) ([]File, error)
	ListFilesByFolder(ctx context.Context, familyID string, folderID *string) ([]File, error)
	CreateFile(ctx context.Context, file *File) error
	UpdateFile(ctx context.Context, file *File, columns ...string) error
	DeleteFile(ctx context.Context, familyID, fileID string) (bool, error)
	MoveFilesBetweenFolders(ctx context.Context, familyID, fromFolderID string, toFolderID *string) error
}

// MemberDirectory resolves the members of a family to display names.
type MemberDirectory interface {
	MemberNames(ctx context.Context, familyID string) (map[string]string, error)
}
