package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bookarr/bookarr/pkg/authors"
	"github.com/bookarr/bookarr/pkg/autosync"
	"github.com/bookarr/bookarr/pkg/binder"
	"github.com/bookarr/bookarr/pkg/books"
	"github.com/bookarr/bookarr/pkg/config"
	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/bookarr/bookarr/pkg/importer"
	"github.com/bookarr/bookarr/pkg/openlibrary"
	"github.com/bookarr/bookarr/pkg/settings"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, syncService *autosync.Service) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())

	// Restrict CORS to the frontend when one is configured; otherwise keep
	// the permissive default.
	corsConfig := middleware.CORSConfig{}
	if cfg.FrontendURL != "" {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	}
	e.Use(middleware.CORSWithConfig(corsConfig))

	health.RegisterRoutes(e)

	openLibraryClient := openlibrary.New(openlibrary.ClientOptions{})

	authors.RegisterRoutes(e, db, openLibraryClient)
	books.RegisterRoutes(e, db, openLibraryClient)
	importer.RegisterRoutes(e, db, cfg)
	settings.RegisterRoutes(e, db)
	autosync.RegisterRoutes(e, syncService)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
