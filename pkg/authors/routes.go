package authors

import (
	"github.com/bookarr/bookarr/pkg/openlibrary"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes takes in Echo and adds the author routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, openLibraryClient *openlibrary.Client) {
	h := &handler{
		authorService:     NewService(db),
		openLibraryClient: openLibraryClient,
	}

	e.GET("/authors", h.list)
	e.POST("/authors", h.create)
	// Registered before /authors/:id so "search" isn't parsed as an ID.
	e.GET("/authors/search", h.search)
	e.GET("/authors/:id", h.retrieve)
	e.DELETE("/authors/:id", h.delete)
}
