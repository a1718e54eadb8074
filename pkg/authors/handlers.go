package authors

import (
	"net/http"
	"strconv"

	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/bookarr/bookarr/pkg/models"
	"github.com/bookarr/bookarr/pkg/openlibrary"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	authorService     *Service
	openLibraryClient *openlibrary.Client
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.authorService.ListAuthors(ctx, ListAuthorsOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	response := make([]AuthorResponse, len(authors))
	for i, author := range authors {
		response[i] = newAuthorResponse(author)
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	payload := CreateAuthorPayload{}
	if err := c.Bind(&payload); err != nil {
		return errors.WithStack(err)
	}

	monitored := true
	if payload.Monitored != nil {
		monitored = *payload.Monitored
	}

	author, err := h.authorService.CreateAuthor(ctx, &models.Author{
		Name:          payload.Name,
		OpenLibraryID: payload.OpenLibraryID,
		ImageURL:      payload.ImageURL,
		Monitored:     monitored,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, newAuthorResponse(author)))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, newAuthorResponse(author)))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	if err := h.authorService.DeleteAuthor(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchAuthorsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	results, err := h.openLibraryClient.SearchAuthors(ctx, params.Query, params.Limit)
	if err != nil {
		return errcodes.BadGateway("Search failed: " + err.Error())
	}

	return errors.WithStack(c.JSON(http.StatusOK, results))
}
