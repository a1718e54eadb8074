package importer

import (
	"net/http"
	"strconv"

	"github.com/bookarr/bookarr/pkg/bookshelf"
	"github.com/bookarr/bookarr/pkg/config"
	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/bookarr/bookarr/pkg/settings"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// dryRunSampleSize limits how many outcomes a dry-run response carries.
const dryRunSampleSize = 25

type handler struct {
	cfg             *config.Config
	importService   *Service
	settingsService *settings.Service
}

func (h *handler) importBookshelf(c echo.Context) error {
	ctx := c.Request().Context()

	dryRun := true
	if v := c.QueryParam("dry_run"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return errcodes.ValidationTypeError(`"dry_run" should be of type bool`)
		}
		dryRun = parsed
	}

	baseURL, apiKey, err := h.settingsService.BookshelfConfig(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if baseURL == "" || apiKey == "" {
		return errcodes.BadRequest("Audiobookshelf base URL and API key must be configured first.")
	}

	client := bookshelf.New(baseURL, apiKey, bookshelf.ClientOptions{
		LibraryName: h.cfg.BookshelfLibraryName,
	})

	items, err := client.ListItems(ctx)
	if err != nil {
		return errcodes.BadGateway(err.Error())
	}

	batch := make([]bookshelf.NormalizedItem, 0, len(items))
	for _, item := range items {
		batch = append(batch, client.Normalize(item))
	}

	outcomes, err := h.importService.Import(ctx, batch, dryRun)
	if err != nil {
		return errors.WithStack(err)
	}

	imported := 0
	for _, outcome := range outcomes {
		if outcome.Action != ActionSkipped {
			imported++
		}
	}

	if dryRun {
		sample := outcomes
		if len(sample) > dryRunSampleSize {
			sample = sample[:dryRunSampleSize]
		}
		return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"dry_run":     true,
			"imported":    imported,
			"total_items": len(outcomes),
			"items":       sample,
			"note":        "Dry-run sample only. Full import will process all items.",
		}))
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"dry_run":  false,
		"imported": imported,
	}))
}
