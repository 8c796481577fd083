package worker

import (
	"github.com/spec-kit/careteam-transfer/internal/service"
)

// StartRunEventWorker registers run event handlers.
func StartRunEventWorker(notifierService *service.NotifierService) {
	if notifierService == nil {
		return
	}
	notifierService.RegisterHandlers()
}
