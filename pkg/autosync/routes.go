package autosync

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes takes in Echo and adds the autosync routes. The service is
// passed in rather than constructed here because main owns its lifecycle.
func RegisterRoutes(e *echo.Echo, syncService *Service) {
	h := &handler{syncService: syncService}

	e.GET("/autosync/status", h.status)
	e.POST("/autosync/configure", h.configure)
	e.POST("/autosync/sync-now", h.syncNow)
}
