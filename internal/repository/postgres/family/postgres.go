package family

import (
	"context"
	"errors"
	"time"

	familydomain "family-drive-go/internal/domain/family"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(familydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// first loads one row and maps a miss to notFound.
func first[T any](query *gorm.DB, notFound error) (*T, error) {
	var row T
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &row, nil
}

func exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) families(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&familydomain.Family{})
}

func (r *PostgresRepository) members(ctx context.Context, familyID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).Where("family_id = ?", familyID)
}

func (r *PostgresRepository) GetFamilyByUser(ctx context.Context, userID string) (*familydomain.Family, error) {
	query := r.families(ctx).
		Joins("JOIN family_members ON family_members.family_id = families.id").
		Where("family_members.user_id = ?", userID)
	return first[familydomain.Family](query, familydomain.ErrFamilyNotFound)
}

func (r *PostgresRepository) GetFamilyByCode(ctx context.Context, code string) (*familydomain.Family, error) {
	return first[familydomain.Family](r.families(ctx).Where("code = ?", code), familydomain.ErrFamilyCodeNotFound)
}

// GetMemberByUser returns the membership of a user in whichever family they
// belong to. A user without one has no family.
func (r *PostgresRepository) GetMemberByUser(ctx context.Context, userID string) (*familydomain.FamilyMember, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	return first[familydomain.FamilyMember](query, familydomain.ErrFamilyNotFound)
}

func (r *PostgresRepository) GetMember(ctx context.Context, familyID, userID string) (*familydomain.FamilyMember, error) {
	return first[familydomain.FamilyMember](r.members(ctx, familyID).Where("user_id = ?", userID), familydomain.ErrMemberNotFound)
}

// ListMembers orders by seniority, which is also the ownership handover order.
func (r *PostgresRepository) ListMembers(ctx context.Context, familyID string) ([]familydomain.FamilyMember, error) {
	var members []familydomain.FamilyMember
	if err := r.members(ctx, familyID).Order("joined_at ASC, user_id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

type memberProfileRow struct {
	UserID      string
	Role        string
	JoinedAt    time.Time
	DisplayName *string
	Email       *string
	AvatarURL   *string
}

func (row memberProfileRow) profile() familydomain.FamilyMemberProfile {
	return familydomain.FamilyMemberProfile{
		UserID:      row.UserID,
		Role:        row.Role,
		JoinedAt:    row.JoinedAt,
		DisplayName: row.DisplayName,
		Email:       row.Email,
		AvatarURL:   row.AvatarURL,
	}
}

// ListMembersWithProfiles joins the profile of every member. Members seen
// before their first profile sync come back without one.
func (r *PostgresRepository) ListMembersWithProfiles(ctx context.Context, familyID string) ([]familydomain.FamilyMemberProfile, error) {
	var rows []memberProfileRow
	if err := r.db.WithContext(ctx).
		Table("family_members AS m").
		Select("m.user_id, m.role, m.joined_at, p.display_name, p.email, p.avatar_url").
		Joins("LEFT JOIN user_profiles AS p ON p.user_id = m.user_id").
		Where("m.family_id = ?", familyID).
		Order("m.joined_at ASC, m.user_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	profiles := make([]familydomain.FamilyMemberProfile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.profile())
	}
	return profiles, nil
}

func (r *PostgresRepository) CreateFamily(ctx context.Context, family *familydomain.Family) error {
	return r.db.WithContext(ctx).Create(family).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *familydomain.FamilyMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresRepository) UpdateFamilyName(ctx context.Context, familyID, name string) error {
	return r.families(ctx).Where("id = ?", familyID).Update("name", name).Error
}

func (r *PostgresRepository) UpdateFamilyOwner(ctx context.Context, familyID, ownerID string) error {
	return r.families(ctx).Where("id = ?", familyID).Update("owner_id", ownerID).Error
}

func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, familyID, userID, role string) error {
	return r.members(ctx, familyID).Where("user_id = ?", userID).Update("role", role).Error
}

func (r *PostgresRepository) DeleteFamily(ctx context.Context, familyID string) error {
	return r.db.WithContext(ctx).Where("id = ?", familyID).Delete(&familydomain.Family{}).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, familyID, userID string) error {
	return r.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Delete(&familydomain.FamilyMember{}).Error
}

func (r *PostgresRepository) DeleteMembersByFamily(ctx context.Context, familyID string) error {
	return r.db.WithContext(ctx).Where("family_id = ?", familyID).Delete(&familydomain.FamilyMember{}).Error
}

func (r *PostgresRepository) CountMembers(ctx context.Context, familyID string) (int64, error) {
	var count int64
	if err := r.members(ctx, familyID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) IsUserInFamily(ctx context.Context, userID string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).Where("user_id = ?", userID))
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	return exists(r.families(ctx).Where("code = ?", code))
}

// HasDriveContent reports whether any folder or file still belongs to the
// family. Deleting the family would cascade over them without releasing
// their stored objects.
func (r *PostgresRepository) HasDriveContent(ctx context.Context, familyID string) (bool, error) {
	folders, err := exists(r.db.WithContext(ctx).Table("drive_folders").Where("family_id = ?", familyID))
	if err != nil || folders {
		return folders, err
	}
	return exists(r.db.WithContext(ctx).Table("drive_files").Where("family_id = ?", familyID))
}
