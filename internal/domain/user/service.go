package user

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	return s.repo.GetProfile(ctx, userID)
}

// SyncProfile stores the provider display fields for a user. The write is
// skipped when the stored profile already matches. Blank values never
// overwrite stored ones.
func (s *Service) SyncProfile(ctx context.Context, userID, name, email, avatarURL string) (*Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	existing, err := s.repo.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	profile := Profile{UserID: userID}
	if existing != nil {
		profile = *existing
	}
	changed := existing == nil
	changed = setField(&profile.DisplayName, name) || changed
	changed = setField(&profile.Email, email) || changed
	changed = setField(&profile.AvatarURL, avatarURL) || changed

	if !changed {
		return existing, nil
	}
	if err := s.repo.UpsertProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func setField(field **string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if *field != nil && **field == value {
		return false
	}
	*field = &value
	return true
}
