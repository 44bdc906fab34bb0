package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	familydomain "family-drive-go/internal/domain/family"
	"family-drive-go/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

const membershipKeyPrefix = "family-drive:membership:"

// MembershipCache stores memberships as JSON values with a TTL. Redis
// failures degrade to cache misses.
type MembershipCache struct {
	client goredis.Cmdable
	log    logger.Logger
}

func NewMembershipCache(client goredis.Cmdable, log logger.Logger) *MembershipCache {
	return &MembershipCache{client: client, log: log}
}

func (c *MembershipCache) GetByUserID(ctx context.Context, userID string) (*familydomain.Membership, bool) {
	value, err := c.client.Get(ctx, membershipKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.InternalError("cache.membership_get: redis get failed", err, "user_id", userID)
		}
		return nil, false
	}

	var membership familydomain.Membership
	if err := json.Unmarshal(value, &membership); err != nil {
		c.log.InternalError("cache.membership_get: decode failed", err, "user_id", userID)
		return nil, false
	}
	return &membership, true
}

func (c *MembershipCache) SetByUserID(ctx context.Context, userID string, membership *familydomain.Membership, ttl time.Duration) {
	if membership == nil || ttl <= 0 {
		c.DeleteByUserID(ctx, userID)
		return
	}

	payload, err := json.Marshal(membership)
	if err != nil {
		c.log.InternalError("cache.membership_set: encode failed", err, "user_id", userID)
		return
	}
	if err := c.client.Set(ctx, membershipKey(userID), payload, ttl).Err(); err != nil {
		c.log.InternalError("cache.membership_set: redis set failed", err, "user_id", userID)
	}
}

func (c *MembershipCache) DeleteByUserID(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, membershipKey(userID)).Err(); err != nil {
		c.log.InternalError("cache.membership_delete: redis del failed", err, "user_id", userID)
	}
}

func membershipKey(userID string) string {
	return membershipKeyPrefix + userID
}

// NewClient opens a client and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
