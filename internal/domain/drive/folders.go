package drive

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
)

func (s *Service) CreateFolder(ctx context.Context, actor Actor, input CreateFolderInput) (folder *Folder, err error) {
	defer func() { s.record("create_folder", err) }()

	if err := requireOwner(actor); err != nil {
		return nil, err
	}
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	assignees, err := s.normalizeMembers(ctx, actor.FamilyID, input.AssignedTo, ErrInvalidAssignee)
	if err != nil {
		return nil, err
	}
	sharedWith, err := s.normalizeMembers(ctx, actor.FamilyID, input.SharedWith, ErrInvalidShareTarget)
	if err != nil {
		return nil, err
	}

	created := Folder{
		ID:               uuid.NewString(),
		FamilyID:         actor.FamilyID,
		ParentID:         copyID(input.ParentID),
		Name:             name,
		CreatedBy:        actor.UserID,
		AssignedTo:       assignees,
		SharedWithFamily: input.SharedWithFamily,
		SharedWith:       sharedWith,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if created.ParentID != nil {
			if _, err := getParent(ctx, tx, actor.FamilyID, *created.ParentID); err != nil {
				return err
			}
		}
		return tx.CreateFolder(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("drive.create_folder: folder created", "family_id", actor.FamilyID, "folder_id", created.ID, "parent_id", created.ParentID)
	return &created, nil
}

func (s *Service) RenameFolder(ctx context.Context, actor Actor, folderID, name string) (folder *Folder, err error) {
	defer func() { s.record("rename_folder", err) }()

	name, err = normalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.updateFolder(ctx, actor, folderID, []string{ColumnName}, func(_ Repository, folder *Folder) error {
		if err := requireAuthor(actor, folder.CreatedBy); err != nil {
			return err
		}
		folder.Name = name
		return nil
	})
}

// MoveFolder re-parents a folder. A nil parent moves it to the root. The
// target is rejected when it is the folder itself or any of its descendants.
func (s *Service) MoveFolder(ctx context.Context, actor Actor, folderID string, parentID *string) (folder *Folder, err error) {
	defer func() { s.record("move_folder", err) }()

	parentID = copyID(parentID)
	return s.updateFolder(ctx, actor, folderID, []string{ColumnParent}, func(tx Repository, folder *Folder) error {
		if err := requireAuthor(actor, folder.CreatedBy); err != nil {
			return err
		}
		if parentID != nil {
			if *parentID == folder.ID {
				return ErrFolderSelfMove
			}
			parent, err := getParent(ctx, tx, actor.FamilyID, *parentID)
			if err != nil {
				return err
			}
			if err := ensureNotDescendant(ctx, tx, actor.FamilyID, folder.ID, parent); err != nil {
				return err
			}
		}
		folder.ParentID = parentID
		return nil
	})
}

func (s *Service) UpdateFolderAssignment(ctx context.Context, actor Actor, folderID string, assignedTo []string) (folder *Folder, err error) {
	defer func() { s.record("assign_folder", err) }()

	if !actor.InFamily() {
		return nil, ErrNotInFamily
	}
	assignees, err := s.normalizeMembers(ctx, actor.FamilyID, assignedTo, ErrInvalidAssignee)
	if err != nil {
		return nil, err
	}
	return s.updateFolder(ctx, actor, folderID, []string{ColumnAssignedTo}, func(_ Repository, folder *Folder) error {
		if err := requireAuthor(actor, folder.CreatedBy); err != nil {
			return err
		}
		folder.AssignedTo = assignees
		return nil
	})
}

func (s *Service) UpdateFolderSharing(ctx context.Context, actor Actor, folderID string, sharing Sharing) (folder *Folder, err error) {
	defer func() { s.record("share_folder", err) }()

	if !actor.InFamily() {
		return nil, ErrNotInFamily
	}
	sharedWith, err := s.normalizeMembers(ctx, actor.FamilyID, sharing.With, ErrInvalidShareTarget)
	if err != nil {
		return nil, err
	}
	return s.updateFolder(ctx, actor, folderID, []string{ColumnSharedWithFamily, ColumnSharedWith}, func(_ Repository, folder *Folder) error {
		if err := requireSharer(actor, folder.CreatedBy, folder.AssignedTo); err != nil {
			return err
		}
		folder.SharedWithFamily = sharing.WithFamily
		folder.SharedWith = sharedWith
		return nil
	})
}

// DeleteFolder removes a folder. With deleteContents every descendant folder
// and file is removed and the storage keys of the removed files are
// returned. Without it the direct children move up to the folder's parent.
func (s *Service) DeleteFolder(ctx context.Context, actor Actor, folderID string, deleteContents bool) (keys []string, err error) {
	defer func() { s.record("delete_folder", err) }()

	if !actor.InFamily() {
		return nil, ErrNotInFamily
	}

	keys = make([]string, 0)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockFamilyTree(ctx, actor.FamilyID); err != nil {
			return err
		}
		folder, err := tx.GetFolder(ctx, actor.FamilyID, folderID)
		if err != nil {
			return err
		}
		if err := requireAuthor(actor, folder.CreatedBy); err != nil {
			return err
		}

		if deleteContents {
			removed, err := deleteSubtree(ctx, tx, actor.FamilyID, folder.ID)
			if err != nil {
				return err
			}
			keys = append(keys, removed...)
		} else {
			if err := tx.ReparentFolders(ctx, actor.FamilyID, folder.ID, folder.ParentID); err != nil {
				return err
			}
			if err := tx.MoveFilesBetweenFolders(ctx, actor.FamilyID, folder.ID, folder.ParentID); err != nil {
				return err
			}
		}

		deleted, err := tx.DeleteFolder(ctx, actor.FamilyID, folder.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrFolderNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("drive.delete_folder: folder deleted", "family_id", actor.FamilyID, "folder_id", folderID, "delete_contents", deleteContents, "storage_keys", len(keys))
	return keys, nil
}

type folderMutation func(tx Repository, folder *Folder) error

// updateFolder loads, authorizes, mutates and saves a folder in one
// transaction. Only the given columns are written. Moves also take the
// family tree lock.
func (s *Service) updateFolder(ctx context.Context, actor Actor, folderID string, columns []string, mutate folderMutation) (*Folder, error) {
	if !actor.InFamily() {
		return nil, ErrNotInFamily
	}

	var result *Folder
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if slices.Contains(columns, ColumnParent) {
			if err := tx.LockFamilyTree(ctx, actor.FamilyID); err != nil {
				return err
			}
		}
		folder, err := tx.GetFolder(ctx, actor.FamilyID, folderID)
		if err != nil {
			return err
		}
		if err := mutate(tx, folder); err != nil {
			return err
		}
		if err := tx.UpdateFolder(ctx, folder, columns...); err != nil {
			return err
		}
		result = folder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func getParent(ctx context.Context, repo Repository, familyID, parentID string) (*Folder, error) {
	parent, err := repo.GetFolder(ctx, familyID, parentID)
	if err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return parent, nil
}

// ensureNotDescendant walks from the target parent toward the root and fails
// if folderID is on the way. The walk is bounded by the family folder count.
func ensureNotDescendant(ctx context.Context, repo Repository, familyID, folderID string, parent *Folder) error {
	limit, err := repo.CountFolders(ctx, familyID)
	if err != nil {
		return err
	}

	current := parent
	for steps := int64(0); ; steps++ {
		if current.ID == folderID {
			return ErrFolderCycle
		}
		if current.ParentID == nil {
			return nil
		}
		if steps >= limit {
			return ErrCorruptTree
		}
		next, err := repo.GetFolder(ctx, familyID, *current.ParentID)
		if err != nil {
			if errors.Is(err, ErrFolderNotFound) {
				return nil
			}
			return err
		}
		current = next
	}
}

// deleteSubtree removes every file and folder below rootID and returns the
// storage keys of the removed files. rootID itself is left in place.
func deleteSubtree(ctx context.Context, repo Repository, familyID, rootID string) ([]string, error) {
	limit, err := repo.CountFolders(ctx, familyID)
	if err != nil {
		return nil, err
	}

	order := []string{rootID}
	seen := map[string]struct{}{rootID: {}}
	for i := 0; i < len(order); i++ {
		if int64(len(order)) > limit {
			return nil, ErrCorruptTree
		}
		parentID := order[i]
		children, err := repo.ListFoldersByParent(ctx, familyID, &parentID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if _, ok := seen[child.ID]; ok {
				continue
			}
			seen[child.ID] = struct{}{}
			order = append(order, child.ID)
		}
	}

	keys := make([]string, 0)
	for _, id := range order {
		folderID := id
		files, err := repo.ListFilesByFolder(ctx, familyID, &folderID)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if _, err := repo.DeleteFile(ctx, familyID, file.ID); err != nil {
				return nil, err
			}
			if file.StorageKey != "" {
				keys = append(keys, file.StorageKey)
			}
		}
	}

	// Children before parents.
	for i := len(order) - 1; i > 0; i-- {
		if _, err := repo.DeleteFolder(ctx, familyID, order[i]); err != nil {
			return nil, err
		}
	}

	return keys, nil
}
