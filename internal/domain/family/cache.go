package family

import (
	"context"
	"time"
)

// Cache keeps resolved memberships keyed by user id.
type Cache interface {
	GetByUserID(ctx context.Context, userID string) (*Membership, bool)
	SetByUserID(ctx context.Context, userID string, membership *Membership, ttl time.Duration)
	DeleteByUserID(ctx context.Context, userID string)
}

type noopCache struct{}

func (noopCache) GetByUserID(context.Context, string) (*Membership, bool) {
	return nil, false
}

func (noopCache) SetByUserID(context.Context, string, *Membership, time.Duration) {}

func (noopCache) DeleteByUserID(context.Context, string) {}
