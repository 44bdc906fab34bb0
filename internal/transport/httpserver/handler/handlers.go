package handler

import (
	commonhandler "family-drive-go/internal/transport/httpserver/handler/common"
	drivehandler "family-drive-go/internal/transport/httpserver/handler/drive"
)

type Handlers struct {
	Common *commonhandler.Handlers
	Drive  *drivehandler.Handlers
}

func New(common *commonhandler.Handlers, drive *drivehandler.Handlers) *Handlers {
	return &Handlers{
		Common: common,
		Drive:  drive,
	}
}
