package books

import (
	"github.com/bookarr/bookarr/pkg/authors"
	"github.com/bookarr/bookarr/pkg/openlibrary"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes takes in Echo and adds the book routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, openLibraryClient *openlibrary.Client) {
	h := &handler{
		bookService:       NewService(db),
		authorService:     authors.NewService(db),
		openLibraryClient: openLibraryClient,
	}

	e.GET("/authors/:id/books", h.listByAuthor)
	e.GET("/books/:id", h.retrieve)
}
