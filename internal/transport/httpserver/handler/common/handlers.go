package common

import (
	"net/http"

	familydomain "family-drive-go/internal/domain/family"
	"family-drive-go/pkg/logger"
)

type Handlers struct {
	Families *familydomain.Service
	log      logger.Logger
}

func New(families *familydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Families: families,
		log:      log,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
