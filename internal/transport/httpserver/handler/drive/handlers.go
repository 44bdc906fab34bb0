package drive

import (
	"context"

	drivedomain "family-drive-go/internal/domain/drive"
	"family-drive-go/internal/storage"
	"family-drive-go/pkg/logger"
)

// PurgeObserver counts storage objects that could not be removed.
type PurgeObserver interface {
	ObservePurgeFailures(count int)
}

type Handlers struct {
	Drive   *drivedomain.Service
	Objects storage.ObjectStore
	Purger  *storage.Purger
	metrics PurgeObserver
	log     logger.Logger
}

func New(drive *drivedomain.Service, objects storage.ObjectStore, purger *storage.Purger, metrics PurgeObserver, log logger.Logger) *Handlers {
	return &Handlers{
		Drive:   drive,
		Objects: objects,
		Purger:  purger,
		metrics: metrics,
		log:     log,
	}
}

// purge removes blobs whose records are already gone. Failures leave
// orphaned objects behind, so they are logged and counted but never fail
// the request.
func (h *Handlers) purge(ctx context.Context, keys []string) {
	if h.Purger == nil || len(keys) == 0 {
		return
	}

	failed := h.Purger.Purge(context.WithoutCancel(ctx), keys)
	if len(failed) == 0 {
		return
	}
	h.log.Warn("drive.purge: storage objects left behind", "count", len(failed), "keys", failed)
	if h.metrics != nil {
		h.metrics.ObservePurgeFailures(len(failed))
	}
}
