package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	familydomain "family-drive-go/internal/domain/family"
	"family-drive-go/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestMembershipKey(t *testing.T) {
	assert.Equal(t, "family-drive:membership:user-1", membershipKey("user-1"))
}

func TestUnreachableRedisIsACacheMiss(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewMembershipCache(client, logger.New(io.Discard, slog.LevelError, "text"))
	ctx := context.Background()

	cache.SetByUserID(ctx, "user-1", &familydomain.Membership{FamilyID: "fam-1"}, time.Minute)
	_, ok := cache.GetByUserID(ctx, "user-1")
	assert.False(t, ok)
	cache.DeleteByUserID(ctx, "user-1")
}
