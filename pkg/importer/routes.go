package importer

import (
	"github.com/bookarr/bookarr/pkg/config"
	"github.com/bookarr/bookarr/pkg/settings"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config) {
	h := &handler{
		cfg:             cfg,
		importService:   NewService(db),
		settingsService: settings.NewService(db),
	}

	e.POST("/library/import/bookshelf", h.importBookshelf)
}
