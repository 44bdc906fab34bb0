package drive

import (
	"context"
	"errors"
)

// Bulk operations apply the single-item operation to each id in order. Each
// item commits on its own; an item that is missing, foreign or not
// authorized is skipped and the rest continue. Cancellation stops the loop
// and leaves the remaining ids untouched.

func (s *Service) BulkDeleteFiles(ctx context.Context, actor Actor, ids []string) (*BulkResult, error) {
	return s.runBulk(ctx, actor, "bulk_delete_files", ids, func(id string) ([]string, error) {
		key, err := s.DeleteFile(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		if key == "" {
			return nil, nil
		}
		return []string{key}, nil
	})
}

func (s *Service) BulkDeleteFolders(ctx context.Context, actor Actor, ids []string, deleteContents bool) (*BulkResult, error) {
	return s.runBulk(ctx, actor, "bulk_delete_folders", ids, func(id string) ([]string, error) {
		return s.DeleteFolder(ctx, actor, id, deleteContents)
	})
}

func (s *Service) BulkMoveFiles(ctx context.Context, actor Actor, ids []string, folderID *string) (*BulkResult, error) {
	return s.runBulk(ctx, actor, "bulk_move_files", ids, func(id string) ([]string, error) {
		_, err := s.MoveFile(ctx, actor, id, folderID)
		return nil, err
	})
}

func (s *Service) BulkMoveFolders(ctx context.Context, actor Actor, ids []string, parentID *string) (*BulkResult, error) {
	return s.runBulk(ctx, actor, "bulk_move_folders", ids, func(id string) ([]string, error) {
		_, err := s.MoveFolder(ctx, actor, id, parentID)
		return nil, err
	})
}

func (s *Service) BulkAssignFiles(ctx context.Context, actor Actor, ids []string, assignedTo *string) (*BulkResult, error) {
	return s.runBulk(ctx, actor, "bulk_assign_files", ids, func(id string) ([]string, error) {
		_, err := s.UpdateFileAssignment(ctx, actor, id, assignedTo)
		return nil, err
	})
}

func (s *Service) BulkAssignFolders(ctx context.Context, actor Actor, ids []string, assignedTo []string) (*BulkResult, error) {
	return s.runBulk(ctx, actor, "bulk_assign_folders", ids, func(id string) ([]string, error) {
		_, err := s.UpdateFolderAssignment(ctx, actor, id, assignedTo)
		return nil, err
	})
}

type bulkItemFunc func(id string) ([]string, error)

func (s *Service) runBulk(ctx context.Context, actor Actor, operation string, ids []string, apply bulkItemFunc) (*BulkResult, error) {
	ids = normalizeIDs(ids)
	result := &BulkResult{
		StorageKeys: make([]string, 0),
		Results:     make([]BulkItemResult, 0, len(ids)),
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			s.log.Warn("drive."+operation+": cancelled", "family_id", actor.FamilyID, "processed", len(result.Results), "total", len(ids))
			return result, err
		}

		keys, err := apply(id)
		if err != nil {
			reason := resultLabel(err)
			if reason == "error" {
				s.log.InternalError("drive."+operation+": item failed", err, "family_id", actor.FamilyID, "user_id", actor.UserID, "id", id)
			} else {
				s.log.BusinessError("drive."+operation+": item skipped", err, "family_id", actor.FamilyID, "user_id", actor.UserID, "id", id)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			result.Results = append(result.Results, BulkItemResult{ID: id, Status: BulkStatusSkipped, Reason: reason})
			s.recorder.ObserveBulkItem(operation, BulkStatusSkipped)
			continue
		}

		result.StorageKeys = append(result.StorageKeys, keys...)
		result.Results = append(result.Results, BulkItemResult{ID: id, Status: BulkStatusApplied})
		s.recorder.ObserveBulkItem(operation, BulkStatusApplied)
	}

	s.log.Info("drive."+operation+": completed", "family_id", actor.FamilyID, "applied", result.Applied(), "total", len(ids))
	return result, nil
}
