package drive

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Reads never fail on authorization: an actor without a family, or without
// access, gets an empty collection. Only store failures are returned.

func (s *Service) MyFolders(ctx context.Context, actor Actor, scope Scope) ([]FolderView, error) {
	return s.listFolders(ctx, actor, scope, MyFolders, false)
}

func (s *Service) SharedFolders(ctx context.Context, actor Actor, scope Scope) ([]FolderView, error) {
	return s.listFolders(ctx, actor, scope, SharedFolders, true)
}

func (s *Service) MyFiles(ctx context.Context, actor Actor, scope Scope) ([]FileView, error) {
	snapshot, err := s.loadFiles(ctx, actor, scope)
	if err != nil || snapshot == nil {
		return []FileView{}, err
	}
	visible := MyFiles(actor, snapshot.files, scope)
	return s.fileViews(visible, snapshot, false), nil
}

func (s *Service) SharedFiles(ctx context.Context, actor Actor, scope Scope) ([]FileView, error) {
	snapshot, err := s.loadFiles(ctx, actor, scope)
	if err != nil || snapshot == nil {
		return []FileView{}, err
	}
	visible := SharedFiles(actor, snapshot.files, snapshot.folders, scope)
	return s.fileViews(visible, snapshot, true), nil
}

// SearchFiles matches every file visible to the actor, mine and shared.
func (s *Service) SearchFiles(ctx context.Context, actor Actor, query string) ([]FileView, error) {
	snapshot, err := s.loadFiles(ctx, actor, AllScope())
	if err != nil || snapshot == nil {
		return []FileView{}, err
	}

	views := s.fileViews(MyFiles(actor, snapshot.files, AllScope()), snapshot, false)
	views = append(views, s.fileViews(SharedFiles(actor, snapshot.files, snapshot.folders, AllScope()), snapshot, true)...)

	result := make([]FileView, 0, len(views))
	for _, view := range views {
		if MatchesFile(view, query) {
			result = append(result, view)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].File.Name != result[j].File.Name {
			return result[i].File.Name < result[j].File.Name
		}
		return result[i].File.ID < result[j].File.ID
	})
	return result, nil
}

// FolderPath returns the ancestor chain of a folder ordered root first. The
// walk is bounded by the family folder count so corrupted parent links end
// the walk instead of looping.
func (s *Service) FolderPath(ctx context.Context, actor Actor, folderID string) ([]PathSegment, error) {
	path := make([]PathSegment, 0)
	if !actor.InFamily() {
		return path, nil
	}

	limit, err := s.repo.CountFolders(ctx, actor.FamilyID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	currentID := folderID
	for steps := int64(0); steps < limit; steps++ {
		if _, ok := seen[currentID]; ok {
			s.log.Warn("drive.folder_path: cycle detected", "family_id", actor.FamilyID, "folder_id", folderID)
			break
		}
		seen[currentID] = struct{}{}

		folder, err := s.repo.GetFolder(ctx, actor.FamilyID, currentID)
		if err != nil {
			if errors.Is(err, ErrFolderNotFound) {
				break
			}
			return nil, err
		}
		path = append(path, PathSegment{ID: folder.ID, Name: folder.Name})
		if folder.ParentID == nil {
			break
		}
		currentID = *folder.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// FolderPicker lists the whole family tree depth first, siblings by name.
// Only the owner can use it.
func (s *Service) FolderPicker(ctx context.Context, actor Actor) ([]PickerFolder, error) {
	result := make([]PickerFolder, 0)
	if !actor.InFamily() || !actor.IsOwner() {
		return result, nil
	}

	folders, err := s.repo.ListFoldersByFamily(ctx, actor.FamilyID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]struct{}, len(folders))
	for _, folder := range folders {
		byID[folder.ID] = struct{}{}
	}

	children := make(map[string][]Folder)
	roots := make([]Folder, 0)
	for _, folder := range folders {
		if folder.ParentID == nil {
			roots = append(roots, folder)
			continue
		}
		if _, ok := byID[*folder.ParentID]; !ok {
			roots = append(roots, folder)
			continue
		}
		children[*folder.ParentID] = append(children[*folder.ParentID], folder)
	}

	visited := make(map[string]struct{}, len(folders))
	var walk func(level []Folder, depth int)
	walk = func(level []Folder, depth int) {
		sortFolders(level)
		for _, folder := range level {
			if _, ok := visited[folder.ID]; ok {
				continue
			}
			visited[folder.ID] = struct{}{}
			result = append(result, PickerFolder{
				ID:       folder.ID,
				Name:     folder.Name,
				ParentID: folder.ParentID,
				Depth:    depth,
			})
			walk(children[folder.ID], depth+1)
		}
	}
	walk(roots, 0)

	return result, nil
}

type folderFilter func(Actor, []Folder, Scope) []Folder

func (s *Service) listFolders(ctx context.Context, actor Actor, scope Scope, filter folderFilter, shared bool) ([]FolderView, error) {
	if !actor.InFamily() {
		return []FolderView{}, nil
	}

	var folders []Folder
	var err error
	switch scope.Kind {
	case ScopeAll:
		folders, err = s.repo.ListFoldersByFamily(ctx, actor.FamilyID)
	case ScopeFolder:
		folders, err = s.repo.ListFoldersByParent(ctx, actor.FamilyID, &scope.FolderID)
	default:
		folders, err = s.repo.ListFoldersByParent(ctx, actor.FamilyID, nil)
	}
	if err != nil {
		return nil, err
	}

	visible := filter(actor, folders, scope)
	if len(visible) == 0 {
		return []FolderView{}, nil
	}

	ids := make([]string, 0, len(visible))
	for _, folder := range visible {
		ids = append(ids, folder.ID)
	}

	var names map[string]string
	var counts map[string]int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		names, err = s.members.MemberNames(groupCtx, actor.FamilyID)
		return err
	})
	group.Go(func() error {
		var err error
		counts, err = s.repo.CountChildrenByFolderIDs(groupCtx, actor.FamilyID, ids)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := make([]FolderView, 0, len(visible))
	for _, folder := range visible {
		view := FolderView{
			Folder:        folder,
			AssigneeNames: resolveNames(names, folder.AssignedTo),
			ItemCount:     counts[folder.ID],
		}
		if shared {
			view.CreatorName = names[folder.CreatedBy]
		}
		result = append(result, view)
	}
	return result, nil
}

type fileSnapshot struct {
	files   []File
	folders map[string]*Folder
	names   map[string]string
}

// loadFiles fetches the files in scope together with the folders needed for
// sharing inheritance and folder names. A nil snapshot means there is
// nothing visible.
func (s *Service) loadFiles(ctx context.Context, actor Actor, scope Scope) (*fileSnapshot, error) {
	if !actor.InFamily() {
		return nil, nil
	}

	snapshot := &fileSnapshot{folders: make(map[string]*Folder)}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		snapshot.names, err = s.members.MemberNames(groupCtx, actor.FamilyID)
		return err
	})

	switch scope.Kind {
	case ScopeAll:
		var folders []Folder
		group.Go(func() error {
			var err error
			snapshot.files, err = s.repo.ListFilesByFamily(groupCtx, actor.FamilyID)
			return err
		})
		group.Go(func() error {
			var err error
			folders, err = s.repo.ListFoldersByFamily(groupCtx, actor.FamilyID)
			return err
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}
		for i := range folders {
			snapshot.folders[folders[i].ID] = &folders[i]
		}
	case ScopeFolder:
		var folder *Folder
		group.Go(func() error {
			var err error
			snapshot.files, err = s.repo.ListFilesByFolder(groupCtx, actor.FamilyID, &scope.FolderID)
			return err
		})
		group.Go(func() error {
			var err error
			folder, err = s.repo.GetFolder(groupCtx, actor.FamilyID, scope.FolderID)
			if errors.Is(err, ErrFolderNotFound) {
				return nil
			}
			return err
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, nil
		}
		snapshot.folders[folder.ID] = folder
	default:
		group.Go(func() error {
			var err error
			snapshot.files, err = s.repo.ListFilesByFolder(groupCtx, actor.FamilyID, nil)
			return err
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

func (s *Service) fileViews(files []File, snapshot *fileSnapshot, shared bool) []FileView {
	result := make([]FileView, 0, len(files))
	for _, file := range files {
		view := FileView{
			File:          file,
			AssigneeNames: resolveNames(snapshot.names, file.AssignedTo),
		}
		if shared {
			view.UploaderName = snapshot.names[file.UploadedBy]
		}
		if file.FolderID != nil {
			if folder, ok := snapshot.folders[*file.FolderID]; ok {
				view.FolderName = folder.Name
			}
		}
		result = append(result, view)
	}
	return result
}

func resolveNames(names map[string]string, ids []string) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok && name != "" {
			result = append(result, name)
		}
	}
	return result
}
