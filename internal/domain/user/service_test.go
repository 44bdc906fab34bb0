package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	profiles map[string]Profile
	upserts  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: make(map[string]Profile)}
}

func (r *fakeUserRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func (r *fakeUserRepo) UpsertProfile(ctx context.Context, profile *Profile) error {
	r.upserts++
	r.profiles[profile.UserID] = *profile
	return nil
}

func TestSyncProfileCreatesOnFirstSight(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	profile, err := svc.SyncProfile(context.Background(), "user-1", " Alice ", "alice@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice", *profile.DisplayName)
	assert.Equal(t, "alice@example.com", *profile.Email)
	assert.Nil(t, profile.AvatarURL)
	assert.Equal(t, 1, repo.upserts)
}

func TestSyncProfileSkipsUnchanged(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.SyncProfile(ctx, "user-1", "Alice", "alice@example.com", "https://img/a.png")
	require.NoError(t, err)
	_, err = svc.SyncProfile(ctx, "user-1", "Alice", "", "https://img/a.png")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upserts)

	profile, err := svc.SyncProfile(ctx, "user-1", "Alice B", "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.upserts)
	assert.Equal(t, "Alice B", *profile.DisplayName)
	assert.Equal(t, "alice@example.com", *profile.Email)
}

func TestSyncProfileRequiresUserID(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	_, err := svc.SyncProfile(context.Background(), " ", "x", "", "")
	assert.ErrorIs(t, err, ErrUserIDRequired)
}

func TestProfileName(t *testing.T) {
	name := "Alice"
	email := "alice@example.com"

	assert.Equal(t, "Alice", (&Profile{UserID: "u", DisplayName: &name, Email: &email}).Name())
	assert.Equal(t, email, (&Profile{UserID: "u", Email: &email}).Name())
	assert.Equal(t, "u", (&Profile{UserID: "u"}).Name())
	assert.Equal(t, "", (*Profile)(nil).Name())
}
