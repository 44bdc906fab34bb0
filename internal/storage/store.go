package storage

import "context"

// ObjectStore is the external blob store addressed by storage keys.
type ObjectStore interface {
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// NoopStore is used when no bucket is configured. Every object is assumed
// to exist and deletes succeed without doing anything.
type NoopStore struct{}

func (NoopStore) Delete(context.Context, string) error {
	return nil
}

func (NoopStore) Exists(context.Context, string) (bool, error) {
	return true, nil
}
