package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	familydomain "family-drive-go/internal/domain/family"
	userdomain "family-drive-go/internal/domain/user"
	"family-drive-go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	calls int
	err   error
}

func (f *fakeProfiles) SyncProfile(ctx context.Context, userID, name, email, avatarURL string) (*userdomain.Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	profile := &userdomain.Profile{UserID: userID}
	if name != "" {
		profile.DisplayName = &name
	}
	if email != "" {
		profile.Email = &email
	}
	return profile, nil
}

type fakeMemberships map[string]familydomain.Membership

func (f fakeMemberships) GetMembership(ctx context.Context, userID string) (*familydomain.Membership, error) {
	membership, ok := f[userID]
	if !ok {
		return nil, familydomain.ErrFamilyNotFound
	}
	return &membership, nil
}

func newTestResolver(profiles *fakeProfiles, members fakeMemberships) *Resolver {
	return NewResolver(profiles, members, logger.New(io.Discard, slog.LevelError, "text"))
}

func TestResolveWithFamily(t *testing.T) {
	profiles := &fakeProfiles{}
	resolver := newTestResolver(profiles, fakeMemberships{
		"user-1": {FamilyID: "fam-1", Role: familydomain.RoleOwner},
	})

	user, err := resolver.Resolve(context.Background(), Actor{ID: "user-1", Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "fam-1", user.FamilyID)
	assert.True(t, user.HasFamily())
	assert.Equal(t, 1, profiles.calls)

	actor := user.DriveActor()
	assert.True(t, actor.IsOwner())
	assert.True(t, actor.InFamily())
}

func TestResolveWithoutFamily(t *testing.T) {
	resolver := newTestResolver(&fakeProfiles{}, fakeMemberships{})

	user, err := resolver.Resolve(context.Background(), Actor{ID: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, "user-2", user.Name)
	assert.False(t, user.HasFamily())
	assert.False(t, user.DriveActor().InFamily())
}

func TestResolveRejectsAnonymous(t *testing.T) {
	profiles := &fakeProfiles{}
	resolver := newTestResolver(profiles, fakeMemberships{})

	_, err := resolver.Resolve(context.Background(), Actor{ID: "  "})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, profiles.calls)
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	boom := errors.New("db down")
	resolver := newTestResolver(&fakeProfiles{err: boom}, fakeMemberships{})

	_, err := resolver.Resolve(context.Background(), Actor{ID: "user-1"})
	assert.ErrorIs(t, err, boom)
}
