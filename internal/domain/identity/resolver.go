package identity

import (
	"context"
	"errors"
	"strings"

	familydomain "family-drive-go/internal/domain/family"
	userdomain "family-drive-go/internal/domain/user"
	"family-drive-go/pkg/logger"
)

type ProfileSyncer interface {
	SyncProfile(ctx context.Context, userID, name, email, avatarURL string) (*userdomain.Profile, error)
}

type MembershipSource interface {
	GetMembership(ctx context.Context, userID string) (*familydomain.Membership, error)
}

type Resolver struct {
	profiles ProfileSyncer
	members  MembershipSource
	log      logger.Logger
}

func NewResolver(profiles ProfileSyncer, members MembershipSource, log logger.Logger) *Resolver {
	return &Resolver{profiles: profiles, members: members, log: log}
}

// Resolve maps an authenticated actor to a user. The stored profile is
// refreshed when the provider's display fields changed. A user without a
// family resolves with an empty FamilyID and Role.
func (r *Resolver) Resolve(ctx context.Context, actor Actor) (*User, error) {
	userID := strings.TrimSpace(actor.ID)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	profile, err := r.profiles.SyncProfile(ctx, userID, actor.Name, actor.Email, actor.AvatarURL)
	if err != nil {
		r.log.InternalError("identity.resolve: profile sync failed", err, "user_id", userID)
		return nil, err
	}

	user := &User{
		ID:        userID,
		Name:      profile.Name(),
		Email:     strings.TrimSpace(actor.Email),
		AvatarURL: strings.TrimSpace(actor.AvatarURL),
	}
	if profile != nil {
		if user.Email == "" && profile.Email != nil {
			user.Email = *profile.Email
		}
		if user.AvatarURL == "" && profile.AvatarURL != nil {
			user.AvatarURL = *profile.AvatarURL
		}
	}
	if user.Name == "" {
		user.Name = userID
	}

	membership, err := r.members.GetMembership(ctx, userID)
	switch {
	case errors.Is(err, familydomain.ErrFamilyNotFound):
	case err != nil:
		r.log.InternalError("identity.resolve: membership lookup failed", err, "user_id", userID)
		return nil, err
	default:
		user.FamilyID = membership.FamilyID
		user.Role = membership.Role
	}

	return user, nil
}
