package family

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"family-drive-go/pkg/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	familyCodeLength   = 6
	familyCodeAttempts = 10
	maxFamilyName      = 100
)

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	log      logger.Logger
}

func NewService(repo Repository, cache Cache, cacheTTL time.Duration, log logger.Logger) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL, log: log}
}

func (s *Service) GetFamilyByUser(ctx context.Context, userID string) (*Family, error) {
	return s.repo.GetFamilyByUser(ctx, userID)
}

// GetMembership returns the user's family id and role, or ErrFamilyNotFound
// for a user without a family.
func (s *Service) GetMembership(ctx context.Context, userID string) (*Membership, error) {
	if cached, ok := s.cache.GetByUserID(ctx, userID); ok {
		return cached, nil
	}

	member, err := s.repo.GetMemberByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	membership := &Membership{FamilyID: member.FamilyID, Role: member.Role}
	s.cache.SetByUserID(ctx, userID, membership, s.cacheTTL)
	return membership, nil
}

func (s *Service) CreateFamily(ctx context.Context, userID, name string) (*Family, error) {
	name, err := normalizeFamilyName(name)
	if err != nil {
		return nil, err
	}

	var result Family
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		inFamily, err := tx.IsUserInFamily(ctx, userID)
		if err != nil {
			return err
		}
		if inFamily {
			return ErrAlreadyInFamily
		}

		code, err := generateUniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		family := Family{
			ID:      uuid.NewString(),
			Name:    name,
			Code:    code,
			OwnerID: userID,
		}
		if err := tx.CreateFamily(ctx, &family); err != nil {
			return err
		}

		member := FamilyMember{
			FamilyID: family.ID,
			UserID:   userID,
			Role:     RoleOwner,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = family
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(ctx, userID)
	s.log.Info("family.create: family created", "family_id", result.ID, "user_id", userID)
	return &result, nil
}

func (s *Service) JoinFamily(ctx context.Context, userID, code string) (*Family, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validation.Validate(code, validation.Required, validation.RuneLength(familyCodeLength, familyCodeLength)); err != nil {
		return nil, fmt.Errorf("%w: code %v", ErrInvalidInput, err)
	}

	var result Family
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		inFamily, err := tx.IsUserInFamily(ctx, userID)
		if err != nil {
			return err
		}
		if inFamily {
			return ErrAlreadyInFamily
		}

		family, err := tx.GetFamilyByCode(ctx, code)
		if err != nil {
			return err
		}

		member := FamilyMember{
			FamilyID: family.ID,
			UserID:   userID,
			Role:     RoleMember,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = *family
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(ctx, userID)
	s.log.Info("family.join: member joined", "family_id", result.ID, "user_id", userID)
	return &result, nil
}

// LeaveFamily removes the user from their family. An owner with other
// members hands ownership to the longest-standing member. A sole owner takes
// the family down with them, once its drive is empty.
func (s *Service) LeaveFamily(ctx context.Context, userID string) error {
	invalidate := []string{userID}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMemberByUser(ctx, userID)
		if err != nil {
			return err
		}

		if member.Role != RoleOwner {
			return tx.DeleteMember(ctx, member.FamilyID, userID)
		}

		members, err := tx.ListMembers(ctx, member.FamilyID)
		if err != nil {
			return err
		}
		successor := nextOwner(members, userID)
		if successor == nil {
			hasContent, err := tx.HasDriveContent(ctx, member.FamilyID)
			if err != nil {
				return err
			}
			if hasContent {
				return ErrFamilyNotEmpty
			}
			if err := tx.DeleteMembersByFamily(ctx, member.FamilyID); err != nil {
				return err
			}
			return tx.DeleteFamily(ctx, member.FamilyID)
		}

		if err := tx.UpdateMemberRole(ctx, member.FamilyID, successor.UserID, RoleOwner); err != nil {
			return err
		}
		if err := tx.UpdateFamilyOwner(ctx, member.FamilyID, successor.UserID); err != nil {
			return err
		}
		invalidate = append(invalidate, successor.UserID)
		return tx.DeleteMember(ctx, member.FamilyID, userID)
	})
	if err != nil {
		return err
	}

	for _, id := range invalidate {
		s.cache.DeleteByUserID(ctx, id)
	}
	s.log.Info("family.leave: member left", "user_id", userID)
	return nil
}

func (s *Service) UpdateFamily(ctx context.Context, userID, name string) (*Family, error) {
	name, err := normalizeFamilyName(name)
	if err != nil {
		return nil, err
	}

	family, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if family.OwnerID != userID {
		return nil, ErrNotOwner
	}

	if err := s.repo.UpdateFamilyName(ctx, family.ID, name); err != nil {
		return nil, err
	}

	family.Name = name
	return family, nil
}

func (s *Service) ListMembers(ctx context.Context, userID string) ([]FamilyMemberProfile, error) {
	family, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListMembersWithProfiles(ctx, family.ID)
}

func (s *Service) RemoveMember(ctx context.Context, ownerID, targetUserID string) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		owner, err := tx.GetMemberByUser(ctx, ownerID)
		if err != nil {
			return err
		}
		if owner.Role != RoleOwner {
			return ErrNotOwner
		}
		if targetUserID == ownerID {
			return ErrCannotRemoveOwner
		}
		if _, err := tx.GetMember(ctx, owner.FamilyID, targetUserID); err != nil {
			return err
		}
		return tx.DeleteMember(ctx, owner.FamilyID, targetUserID)
	})
	if err != nil {
		return err
	}

	s.cache.DeleteByUserID(ctx, targetUserID)
	s.log.Info("family.remove_member: member removed", "user_id", ownerID, "target_user_id", targetUserID)
	return nil
}

// MemberNames maps every member of the family to a display name.
func (s *Service) MemberNames(ctx context.Context, familyID string) (map[string]string, error) {
	members, err := s.repo.ListMembersWithProfiles(ctx, familyID)
	if err != nil {
		if errors.Is(err, ErrFamilyNotFound) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	names := make(map[string]string, len(members))
	for _, member := range members {
		names[member.UserID] = member.Name()
	}
	return names, nil
}

func normalizeFamilyName(name string) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("name is required"),
		validation.RuneLength(1, maxFamilyName).Error("name is too long"),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return name, nil
}

func nextOwner(members []FamilyMember, leavingUserID string) *FamilyMember {
	candidates := make([]FamilyMember, 0, len(members))
	for _, member := range members {
		if member.UserID != leavingUserID {
			candidates = append(candidates, member)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].JoinedAt.Equal(candidates[j].JoinedAt) {
			return candidates[i].JoinedAt.Before(candidates[j].JoinedAt)
		}
		return candidates[i].UserID < candidates[j].UserID
	})
	return &candidates[0]
}

func generateUniqueCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < familyCodeAttempts; i++ {
		code, err := generateCode(familyCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
