package storage

import (
	"context"
	"sync"

	"family-drive-go/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const defaultPurgeConcurrency = 4

// Purger removes the blobs behind deleted files. Failures are logged and
// reported back but never stop the remaining deletes.
type Purger struct {
	store       ObjectStore
	concurrency int
	log         logger.Logger
}

func NewPurger(store ObjectStore, concurrency int, log logger.Logger) *Purger {
	if concurrency <= 0 {
		concurrency = defaultPurgeConcurrency
	}
	return &Purger{store: store, concurrency: concurrency, log: log}
}

// Purge deletes every key and returns the ones that could not be deleted.
func (p *Purger) Purge(ctx context.Context, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}

	var (
		mu     sync.Mutex
		failed []string
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)
	for _, key := range keys {
		key := key
		group.Go(func() error {
			if err := p.store.Delete(groupCtx, key); err != nil {
				p.log.InternalError("storage.purge: delete failed", err, "storage_key", key)
				mu.Lock()
				failed = append(failed, key)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()

	if len(failed) > 0 {
		p.log.Warn("storage.purge: orphaned objects left", "failed", len(failed), "total", len(keys))
	} else {
		p.log.Debug("storage.purge: objects deleted", "total", len(keys))
	}
	return failed
}
