package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	settingsService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	snapshot, err := h.settingsService.Snapshot(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, snapshot))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	payload := UpdateSettingsPayload{}
	if err := c.Bind(&payload); err != nil {
		return errors.WithStack(err)
	}

	snapshot, err := h.settingsService.Update(ctx, payload.toMap())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"settings": snapshot,
	}))
}
