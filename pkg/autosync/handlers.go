package autosync

import (
	"net/http"

	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	syncService *Service
}

func (h *handler) status(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, h.syncService.Status()))
}

func (h *handler) configure(c echo.Context) error {
	ctx := c.Request().Context()

	payload := ConfigurePayload{}
	if err := c.Bind(&payload); err != nil {
		return errors.WithStack(err)
	}

	err := h.syncService.Configure(ctx, payload.Enabled, payload.IntervalHours)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return errcodes.BadRequest("Audiobookshelf base URL and API key must be configured first.")
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, h.syncService.Status()))
}

func (h *handler) syncNow(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.syncService.TriggerNow(ctx)
	if err != nil {
		if result != nil && result.Error == ErrNotConfigured.Error() {
			return errcodes.BadRequest("Audiobookshelf base URL and API key must be configured first.")
		}
		// A failed cycle is reported in the result body, not as a transport
		// error. Callers inspect result.error to detect failure.
		return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
			"status": "failed",
			"result": result,
		}))
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"result": result,
	}))
}
