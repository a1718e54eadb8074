package books

import (
	"net/http"
	"strconv"

	"github.com/bookarr/bookarr/pkg/authors"
	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/bookarr/bookarr/pkg/openlibrary"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const worksFetchLimit = 200

type handler struct {
	bookService       *Service
	authorService     *authors.Service
	openLibraryClient *openlibrary.Client
}

// listByAuthor returns the author's books. With ?refresh=true it first pulls
// the author's OpenLibrary bibliography and merges it in; authors without an
// OpenLibrary id skip the refresh silently.
func (h *handler) listByAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	authorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := ListAuthorBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, authors.RetrieveAuthorOptions{ID: &authorID})
	if err != nil {
		return errors.WithStack(err)
	}

	if params.Refresh && author.OpenLibraryID != nil && *author.OpenLibraryID != "" {
		works, err := h.openLibraryClient.FetchAuthorWorks(ctx, *author.OpenLibraryID, worksFetchLimit)
		if err != nil {
			log.Err(err).Warn("openlibrary refresh failed", logger.Data{"author_id": authorID})
			return errcodes.BadGateway("Refresh from OpenLibrary failed: " + err.Error())
		}
		if err := h.bookService.RefreshFromOpenLibrary(ctx, authorID, works); err != nil {
			return errors.WithStack(err)
		}
	}

	books, err := h.bookService.ListBooks(ctx, ListBooksOptions{AuthorID: &authorID, Limit: params.Limit})
	if err != nil {
		return errors.WithStack(err)
	}

	response := make([]BookResponse, len(books))
	for i, book := range books {
		response[i] = newBookResponse(book)
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, newBookResponse(book)))
}
