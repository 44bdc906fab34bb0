package inmemory

import (
	"context"
	"sync"
	"time"

	familydomain "family-drive-go/internal/domain/family"
)

type MembershipCache struct {
	mu    sync.RWMutex
	items map[string]membershipItem
	now   func() time.Time
}

type membershipItem struct {
	value     familydomain.Membership
	expiresAt time.Time
}

func NewMembershipCache() *MembershipCache {
	return &MembershipCache{
		items: make(map[string]membershipItem),
		now:   time.Now,
	}
}

func (c *MembershipCache) GetByUserID(_ context.Context, userID string) (*familydomain.Membership, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *MembershipCache) SetByUserID(ctx context.Context, userID string, membership *familydomain.Membership, ttl time.Duration) {
	if membership == nil || ttl <= 0 {
		c.DeleteByUserID(ctx, userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = membershipItem{
		value:     *membership,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *MembershipCache) DeleteByUserID(_ context.Context, userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}
