package drive

import (
	"context"
	"errors"

	drivedomain "family-drive-go/internal/domain/drive"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(drivedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// LockFamilyTree serializes structural changes of one family until the
// surrounding transaction ends. Other dialects run without the lock.
func (r *PostgresRepository) LockFamilyTree(ctx context.Context, familyID string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "drive:"+familyID).
		Error
}

func (r *PostgresRepository) GetFolder(ctx context.Context, familyID, folderID string) (*drivedomain.Folder, error) {
	if !isUUID(folderID) {
		return nil, drivedomain.ErrFolderNotFound
	}
	var folder drivedomain.Folder
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, folderID).
		First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, drivedomain.ErrFolderNotFound
		}
		return nil, err
	}
	return &folder, nil
}

func (r *PostgresRepository) ListFoldersByFamily(ctx context.Context, familyID string) ([]drivedomain.Folder, error) {
	var folders []drivedomain.Folder
	if err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("name asc, id asc").
		Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *PostgresRepository) ListFoldersByParent(ctx context.Context, familyID string, parentID *string) ([]drivedomain.Folder, error) {
	query := r.db.WithContext(ctx).Where("family_id = ?", familyID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else if !isUUID(*parentID) {
		return []drivedomain.Folder{}, nil
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	var folders []drivedomain.Folder
	if err := query.Order("name asc, id asc").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *PostgresRepository) CountFolders(ctx context.Context, familyID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&drivedomain.Folder{}).
		Where("family_id = ?", familyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountChildrenByFolderIDs counts direct subfolders and files per folder.
func (r *PostgresRepository) CountChildrenByFolderIDs(ctx context.Context, familyID string, folderIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(folderIDs))
	folderIDs = validIDs(folderIDs)
	if len(folderIDs) == 0 {
		return result, nil
	}

	type countRow struct {
		ParentID string
		Total    int64
	}

	var folderRows []countRow
	if err := r.db.WithContext(ctx).
		Model(&drivedomain.Folder{}).
		Select("parent_id, COUNT(*) AS total").
		Where("family_id = ? AND parent_id IN ?", familyID, folderIDs).
		Group("parent_id").
		Scan(&folderRows).Error; err != nil {
		return nil, err
	}

	var fileRows []countRow
	if err := r.db.WithContext(ctx).
		Model(&drivedomain.File{}).
		Select("folder_id AS parent_id, COUNT(*) AS total").
		Where("family_id = ? AND folder_id IN ?", familyID, folderIDs).
		Group("folder_id").
		Scan(&fileRows).Error; err != nil {
		return nil, err
	}

	for _, row := range append(folderRows, fileRows...) {
		result[row.ParentID] += row.Total
	}
	return result, nil
}

func (r *PostgresRepository) CreateFolder(ctx context.Context, folder *drivedomain.Folder) error {
	emptySets(&folder.AssignedTo, &folder.SharedWith)
	return r.db.WithContext(ctx).Create(folder).Error
}

// UpdateFolder writes the named columns of folder and bumps updated_at.
// Columns that are not named keep their stored value.
func (r *PostgresRepository) UpdateFolder(ctx context.Context, folder *drivedomain.Folder, columns ...string) error {
	emptySets(&folder.AssignedTo, &folder.SharedWith)
	result := r.db.WithContext(ctx).
		Model(folder).
		Where("family_id = ?", folder.FamilyID).
		Select(withUpdatedAt(columns)).
		Updates(folder)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return drivedomain.ErrFolderNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteFolder(ctx context.Context, familyID, folderID string) (bool, error) {
	if !isUUID(folderID) {
		return false, nil
	}
	result := r.db.WithContext(ctx).Delete(&drivedomain.Folder{}, "family_id = ? AND id = ?", familyID, folderID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ReparentFolders(ctx context.Context, familyID, fromParentID string, toParentID *string) error {
	return r.db.WithContext(ctx).
		Model(&drivedomain.Folder{}).
		Where("family_id = ? AND parent_id = ?", familyID, fromParentID).
		Update("parent_id", toParentID).Error
}

func (r *PostgresRepository) GetFile(ctx context.Context, familyID, fileID string) (*drivedomain.File, error) {
	if !isUUID(fileID) {
		return nil, drivedomain.ErrFileNotFound
	}
	var file drivedomain.File
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, fileID).
		First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, drivedomain.ErrFileNotFound
		}
		return nil, err
	}
	return &file, nil
}

func (r *PostgresRepository) ListFilesByFamily(ctx context.Context, familyID string) ([]drivedomain.File, error) {
	var files []drivedomain.File
	if err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("name asc, id asc").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *PostgresRepository) ListFilesByFolder(ctx context.Context, familyID string, folderID *string) ([]drivedomain.File, error) {
	query := r.db.WithContext(ctx).Where("family_id = ?", familyID)
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else if !isUUID(*folderID) {
		return []drivedomain.File{}, nil
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}

	var files []drivedomain.File
	if err := query.Order("name asc, id asc").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *PostgresRepository) CreateFile(ctx context.Context, file *drivedomain.File) error {
	emptySets(&file.AssignedTo, &file.SharedWith, &file.Tags)
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *PostgresRepository) UpdateFile(ctx context.Context, file *drivedomain.File, columns ...string) error {
	emptySets(&file.AssignedTo, &file.SharedWith, &file.Tags)
	result := r.db.WithContext(ctx).
		Model(file).
		Where("family_id = ?", file.FamilyID).
		Select(withUpdatedAt(columns)).
		Updates(file)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return drivedomain.ErrFileNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteFile(ctx context.Context, familyID, fileID string) (bool, error) {
	if !isUUID(fileID) {
		return false, nil
	}
	result := r.db.WithContext(ctx).Delete(&drivedomain.File{}, "family_id = ? AND id = ?", familyID, fileID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) MoveFilesBetweenFolders(ctx context.Context, familyID, fromFolderID string, toFolderID *string) error {
	return r.db.WithContext(ctx).
		Model(&drivedomain.File{}).
		Where("family_id = ? AND folder_id = ?", familyID, fromFolderID).
		Update("folder_id", toFolderID).Error
}

// isUUID guards the uuid columns. Postgres rejects a malformed id with a cast
// error, which for a lookup means the row does not exist.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}

func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

// emptySets replaces nil sets with empty ones. The json serializer writes a
// nil slice as NULL and the set columns are NOT NULL.
func emptySets(sets ...*[]string) {
	for _, set := range sets {
		if *set == nil {
			*set = []string{}
		}
	}
}

func withUpdatedAt(columns []string) []string {
	selected := make([]string, 0, len(columns)+1)
	selected = append(selected, columns...)
	return append(selected, "updated_at")
}
