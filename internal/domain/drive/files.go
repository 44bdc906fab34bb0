package drive

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

func (s *Service) CreateFile(ctx context.Context, actor Actor, input CreateFileInput) (file *File, err error) {
	defer func() { s.record("create_file", err) }()

	if err := requireOwner(actor); err != nil {
		return nil, err
	}
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	originalName := strings.TrimSpace(input.OriginalName)
	if originalName == "" {
		originalName = name
	}
	storageKey := strings.TrimSpace(input.StorageKey)
	err = validation.Errors{
		"storage_key": validation.Validate(storageKey, validation.Required),
		"size":        validation.Validate(input.Size, validation.Min(int64(0))),
	}.Filter()
	if err != nil {
		return nil, invalid(err)
	}

	var assignee []string
	if id := copyID(input.AssignedTo); id != nil {
		assignee = []string{*id}
	}
	assignees, err := s.normalizeMembers(ctx, actor.FamilyID, assignee, ErrInvalidAssignee)
	if err != nil {
		return nil, err
	}
	sharedWith, err := s.normalizeMembers(ctx, actor.FamilyID, input.SharedWith, ErrInvalidShareTarget)
	if err != nil {
		return nil, err
	}

	created := File{
		ID:               uuid.NewString(),
		FamilyID:         actor.FamilyID,
		FolderID:         copyID(input.FolderID),
		Name:             name,
		OriginalName:     originalName,
		UploadedBy:       actor.UserID,
		AssignedTo:       assignees,
		SharedWithFamily: input.SharedWithFamily,
		SharedWith:       sharedWith,
		Tags:             normalizeTags(input.Tags),
		Size:             input.Size,
		MediaType:        strings.TrimSpace(input.MediaType),
		StorageKey:       storageKey,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if created.FolderID != nil {
			if _, err := getParent(ctx, tx, actor.FamilyID, *created.FolderID); err != nil {
				return err
			}
		}
		return tx.CreateFile(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("drive.create_file: file created", "family_id", actor.FamilyID, "file_id", created.ID, "folder_id", created.FolderID)
	return &created, nil
}

func (s *Service) RenameFile(ctx context.Context, actor Actor, fileID, name string) (file *File, err error) {
	defer func() { s.record("rename_file", err) }()

	name, err = normalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.updateFile(ctx, actor, fileID, []string{ColumnName}, func(_ Repository, file *File) error {
		if err := requireAuthor(actor, file.UploadedBy); err != nil {
			return err
		}
		file.Name = name
		return nil
	})
}

// MoveFile places a file in another folder of the same family, or at the
// root when folderID is nil. Files are leaves so no cycle check applies.
func (s *Service) MoveFile(ctx context.Context, actor Actor, fileID string, folderID *string) (file *File, err error) {
	defer func() { s.record("move_file", err) }()

	folderID = copyID(folderID)
	return s.updateFile(ctx, actor, fileID, []string{ColumnFolder}, func(tx Repository, file *File) error {
		if err := requireAuthor(actor, file.UploadedBy); err != nil {
			return err
		}
		if folderID != nil {
			if _, err := getParent(ctx, tx, actor.FamilyID, *folderID); err != nil {
				return err
			}
		}
		file.FolderID = folderID
		return nil
	})
}

// UpdateFileAssignment replaces the file assignee. A nil or blank id clears it.
func (s *Service) UpdateFileAssignment(ctx context.Context, actor Actor, fileID string, assignedTo *string) (file *File, err error) {
	defer func() { s.record("assign_file", err) }()

	if !actor.InFamily() {
		return nil, ErrNotInFamily
	}
	var ids []string
	if id := copyID(assignedTo); id != nil {
		ids = []string{*id}
	}
	assignees, err := s.normalizeMembers(ctx, actor.FamilyID, ids, ErrInvalidAssignee)
	if err != nil {
		return nil, err
	}
	return s.updateFile(ctx, actor, fileID, []string{ColumnAssignedTo}, func(_ Repository, file *File) error {
		if err := requireAuthor(actor, file.UploadedBy); err != nil {
			return err
		}
		file.AssignedTo = assignees
		return nil
	})
}

// UpdateFileAssignees is the set-shaped form of UpdateFileAssignment. Files
// take at most one assignee.
func (s *Service) UpdateFileAssignees(ctx context.Context, actor Actor, fileID string, assignedTo []string) (*File, error) {
	ids := normalizeIDs(assignedTo)
	switch len(ids) {
	case 0:
		return s.UpdateFileAssignment(ctx, actor, fileID, nil)
	case 1:
		return s.UpdateFileAssignment(ctx, actor, fileID, &ids[0])
	default:
		s.record("assign_file", ErrTooManyFileAssignees)
		return nil, ErrTooManyFileAssignees
	}
}

func (s *Service) UpdateFileSharing(ctx context.Context, actor Actor, fileID string, sharing Sharing) (file *File, err error) {
	defer func() { s.record("share_file", err) }()

	if !actor.InFamily() {
		return nil, ErrNotInFamily
	}
	sharedWith, err := s.normalizeMembers(ctx, actor.FamilyID, sharing.With, ErrInvalidShareTarget)
	if err != nil {
		return nil, err
	}
	return s.updateFile(ctx, actor, fileID, []string{ColumnSharedWithFamily, ColumnSharedWith}, func(_ Repository, file *File) error {
		if err := requireSharer(actor, file.UploadedBy, file.AssignedTo); err != nil {
			return err
		}
		file.SharedWithFamily = sharing.WithFamily
		file.SharedWith = sharedWith
		return nil
	})
}

func (s *Service) UpdateFileTags(ctx context.Context, actor Actor, fileID string, tags []string) (file *File, err error) {
	defer func() { s.record("tag_file", err) }()

	normalized := normalizeTags(tags)
	return s.updateFile(ctx, actor, fileID, []string{ColumnTags}, func(_ Repository, file *File) error {
		if err := requireAuthor(actor, file.UploadedBy); err != nil {
			return err
		}
		file.Tags = normalized
		return nil
	})
}

// DeleteFile removes a file record and returns its storage key. The caller
// purges the object store.
func (s *Service) DeleteFile(ctx context.Context, actor Actor, fileID string) (key string, err error) {
	defer func() { s.record("delete_file", err) }()

	if !actor.InFamily() {
		return "", ErrNotInFamily
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		file, err := tx.GetFile(ctx, actor.FamilyID, fileID)
		if err != nil {
			return err
		}
		if err := requireAuthor(actor, file.UploadedBy); err != nil {
			return err
		}
		deleted, err := tx.DeleteFile(ctx, actor.FamilyID, file.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrFileNotFound
		}
		key = file.StorageKey
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info("drive.delete_file: file deleted", "family_id", actor.FamilyID, "file_id", fileID)
	return key, nil
}

type fileMutation func(tx Repository, file *File) error

func (s *Service) updateFile(ctx context.Context, actor Actor, fileID string, columns []string, mutate fileMutation) (*File, error) {
	if !actor.InFamily() {
		return nil, ErrNotInFamily
	}

	var result *File
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		file, err := tx.GetFile(ctx, actor.FamilyID, fileID)
		if err != nil {
			return err
		}
		if err := mutate(tx, file); err != nil {
			return err
		}
		if err := tx.UpdateFile(ctx, file, columns...); err != nil {
			return err
		}
		result = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
