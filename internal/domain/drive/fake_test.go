package drive

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"family-drive-go/pkg/logger"
)

type fakeDriveRepo struct {
	folders map[string]*Folder
	files   map[string]*File
	locks   int
	updates [][]string
}

func newFakeDriveRepo() *fakeDriveRepo {
	return &fakeDriveRepo{
		folders: make(map[string]*Folder),
		files:   make(map[string]*File),
	}
}

func (r *fakeDriveRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeDriveRepo) LockFamilyTree(ctx context.Context, familyID string) error {
	r.locks++
	return nil
}

func (r *fakeDriveRepo) GetFolder(ctx context.Context, familyID, folderID string) (*Folder, error) {
	folder, ok := r.folders[folderID]
	if !ok || folder.FamilyID != familyID {
		return nil, ErrFolderNotFound
	}
	copied := cloneFolder(*folder)
	return &copied, nil
}

func (r *fakeDriveRepo) ListFoldersByFamily(ctx context.Context, familyID string) ([]Folder, error) {
	result := make([]Folder, 0)
	for _, folder := range r.folders {
		if folder.FamilyID == familyID {
			result = append(result, cloneFolder(*folder))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeDriveRepo) ListFoldersByParent(ctx context.Context, familyID string, parentID *string) ([]Folder, error) {
	all, _ := r.ListFoldersByFamily(ctx, familyID)
	result := make([]Folder, 0)
	for _, folder := range all {
		if sameParent(folder.ParentID, parentID) {
			result = append(result, folder)
		}
	}
	return result, nil
}

func (r *fakeDriveRepo) CountFolders(ctx context.Context, familyID string) (int64, error) {
	var count int64
	for _, folder := range r.folders {
		if folder.FamilyID == familyID {
			count++
		}
	}
	return count, nil
}

func (r *fakeDriveRepo) CountChildrenByFolderIDs(ctx context.Context, familyID string, folderIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(folderIDs))
	wanted := make(map[string]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = struct{}{}
	}
	for _, folder := range r.folders {
		if folder.FamilyID != familyID || folder.ParentID == nil {
			continue
		}
		if _, ok := wanted[*folder.ParentID]; ok {
			result[*folder.ParentID]++
		}
	}
	for _, file := range r.files {
		if file.FamilyID != familyID || file.FolderID == nil {
			continue
		}
		if _, ok := wanted[*file.FolderID]; ok {
			result[*file.FolderID]++
		}
	}
	return result, nil
}

func (r *fakeDriveRepo) CreateFolder(ctx context.Context, folder *Folder) error {
	copied := cloneFolder(*folder)
	r.folders[folder.ID] = &copied
	return nil
}

func (r *fakeDriveRepo) UpdateFolder(ctx context.Context, folder *Folder, columns ...string) error {
	stored, ok := r.folders[folder.ID]
	if !ok || stored.FamilyID != folder.FamilyID {
		return ErrFolderNotFound
	}
	r.updates = append(r.updates, columns)
	updated := cloneFolder(*folder)
	for _, column := range columns {
		switch column {
		case ColumnName:
			stored.Name = updated.Name
		case ColumnParent:
			stored.ParentID = updated.ParentID
		case ColumnAssignedTo:
			stored.AssignedTo = updated.AssignedTo
		case ColumnSharedWithFamily:
			stored.SharedWithFamily = updated.SharedWithFamily
		case ColumnSharedWith:
			stored.SharedWith = updated.SharedWith
		}
	}
	return nil
}

func (r *fakeDriveRepo) DeleteFolder(ctx context.Context, familyID, folderID string) (bool, error) {
	folder, ok := r.folders[folderID]
	if !ok || folder.FamilyID != familyID {
		return false, nil
	}
	delete(r.folders, folderID)
	return true, nil
}

func (r *fakeDriveRepo) ReparentFolders(ctx context.Context, familyID, fromParentID string, toParentID *string) error {
	for _, folder := range r.folders {
		if folder.FamilyID == familyID && folder.ParentID != nil && *folder.ParentID == fromParentID {
			folder.ParentID = cloneID(toParentID)
		}
	}
	return nil
}

func (r *fakeDriveRepo) GetFile(ctx context.Context, familyID, fileID string) (*File, error) {
	file, ok := r.files[fileID]
	if !ok || file.FamilyID != familyID {
		return nil, ErrFileNotFound
	}
	copied := cloneFile(*file)
	return &copied, nil
}

func (r *fakeDriveRepo) ListFilesByFamily(ctx context.Context, familyID string) ([]File, error) {
	result := make([]File, 0)
	for _, file := range r.files {
		if file.FamilyID == familyID {
			result = append(result, cloneFile(*file))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeDriveRepo) ListFilesByFolder(ctx context.Context, familyID string, folderID *string) ([]File, error) {
	all, _ := r.ListFilesByFamily(ctx, familyID)
	result := make([]File, 0)
	for _, file := range all {
		if sameParent(file.FolderID, folderID) {
			result = append(result, file)
		}
	}
	return result, nil
}

func (r *fakeDriveRepo) CreateFile(ctx context.Context, file *File) error {
	copied := cloneFile(*file)
	r.files[file.ID] = &copied
	return nil
}

func (r *fakeDriveRepo) UpdateFile(ctx context.Context, file *File, columns ...string) error {
	stored, ok := r.files[file.ID]
	if !ok || stored.FamilyID != file.FamilyID {
		return ErrFileNotFound
	}
	r.updates = append(r.updates, columns)
	updated := cloneFile(*file)
	for _, column := range columns {
		switch column {
		case ColumnName:
			stored.Name = updated.Name
		case ColumnFolder:
			stored.FolderID = updated.FolderID
		case ColumnAssignedTo:
			stored.AssignedTo = updated.AssignedTo
		case ColumnSharedWithFamily:
			stored.SharedWithFamily = updated.SharedWithFamily
		case ColumnSharedWith:
			stored.SharedWith = updated.SharedWith
		case ColumnTags:
			stored.Tags = updated.Tags
		}
	}
	return nil
}

func (r *fakeDriveRepo) DeleteFile(ctx context.Context, familyID, fileID string) (bool, error) {
	file, ok := r.files[fileID]
	if !ok || file.FamilyID != familyID {
		return false, nil
	}
	delete(r.files, fileID)
	return true, nil
}

func (r *fakeDriveRepo) MoveFilesBetweenFolders(ctx context.Context, familyID, fromFolderID string, toFolderID *string) error {
	for _, file := range r.files {
		if file.FamilyID == familyID && file.FolderID != nil && *file.FolderID == fromFolderID {
			file.FolderID = cloneID(toFolderID)
		}
	}
	return nil
}

type fakeMembers map[string]map[string]string

func (m fakeMembers) MemberNames(ctx context.Context, familyID string) (map[string]string, error) {
	names, ok := m[familyID]
	if !ok {
		return map[string]string{}, nil
	}
	return names, nil
}

type fakeRecorder struct {
	operations map[string]int
	bulk       map[BulkStatus]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{operations: make(map[string]int), bulk: make(map[BulkStatus]int)}
}

func (r *fakeRecorder) ObserveOperation(operation, result string) {
	r.operations[operation+":"+result]++
}

func (r *fakeRecorder) ObserveBulkItem(operation string, status BulkStatus) {
	r.bulk[status]++
}

const (
	familyA = "fam-a"
	familyB = "fam-b"
)

var (
	ownerA   = Actor{UserID: "owner-a", FamilyID: familyA, Role: RoleOwner}
	memberA1 = Actor{UserID: "member-a1", FamilyID: familyA, Role: RoleMember}
	memberA2 = Actor{UserID: "member-a2", FamilyID: familyA, Role: RoleMember}
	ownerB   = Actor{UserID: "owner-b", FamilyID: familyB, Role: RoleOwner}
	loner    = Actor{UserID: "loner"}
)

type testEnv struct {
	repo     *fakeDriveRepo
	recorder *fakeRecorder
	svc      *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newFakeDriveRepo()
	members := fakeMembers{
		familyA: {"owner-a": "Alice", "member-a1": "Bob", "member-a2": "Carol"},
		familyB: {"owner-b": "Dave"},
	}
	recorder := newFakeRecorder()
	log := logger.New(io.Discard, slog.LevelError, "text")
	return &testEnv{repo: repo, recorder: recorder, svc: NewService(repo, members, recorder, log)}
}

func (e *testEnv) putFolder(id, familyID, createdBy string, parentID *string, mutate ...func(*Folder)) {
	folder := &Folder{ID: id, FamilyID: familyID, Name: id, CreatedBy: createdBy, ParentID: parentID}
	for _, fn := range mutate {
		fn(folder)
	}
	e.repo.folders[id] = folder
}

func (e *testEnv) putFile(id, familyID, uploadedBy string, folderID *string, mutate ...func(*File)) {
	file := &File{
		ID:           id,
		FamilyID:     familyID,
		Name:         id,
		OriginalName: id + ".bin",
		UploadedBy:   uploadedBy,
		FolderID:     folderID,
		StorageKey:   "key-" + id,
		MediaType:    "application/octet-stream",
	}
	for _, fn := range mutate {
		fn(file)
	}
	e.repo.files[id] = file
}

func ptr(value string) *string {
	return &value
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	value := *id
	return &value
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func cloneFolder(folder Folder) Folder {
	folder.ParentID = cloneID(folder.ParentID)
	folder.AssignedTo = cloneStrings(folder.AssignedTo)
	folder.SharedWith = cloneStrings(folder.SharedWith)
	return folder
}

func cloneFile(file File) File {
	file.FolderID = cloneID(file.FolderID)
	file.AssignedTo = cloneStrings(file.AssignedTo)
	file.SharedWith = cloneStrings(file.SharedWith)
	file.Tags = cloneStrings(file.Tags)
	return file
}
