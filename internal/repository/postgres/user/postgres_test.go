package user

import (
	"context"
	"testing"

	"family-drive-go/internal/db/dbtest"
	domain "family-drive-go/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertProfileKeepsUnsetFields(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	name := "Alice"
	email := "alice@example.com"
	require.NoError(t, repo.UpsertProfile(ctx, &domain.Profile{UserID: "user-1", DisplayName: &name, Email: &email}))

	renamed := "Alice B"
	require.NoError(t, repo.UpsertProfile(ctx, &domain.Profile{UserID: "user-1", DisplayName: &renamed}))

	profile, err := repo.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", *profile.DisplayName)
	assert.Equal(t, email, *profile.Email)

	_, err = repo.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
