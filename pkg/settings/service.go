package settings

import (
	"context"
	"strings"

	"github.com/bookarr/bookarr/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Keys recognized by the settings store. Unknown keys in an update payload are
// ignored rather than rejected so older frontends keep working.
const (
	KeyDelugeHost     = "deluge_host"
	KeyDelugePort     = "deluge_port"
	KeyDelugePassword = "deluge_password"
	KeyDelugeURL      = "deluge_url"
	KeyDelugeLabel    = "deluge_label"
	KeyIndexerURL     = "indexer_url"
	KeyIndexerAPIKey  = "indexer_api_key"
	KeyBookshelfURL   = "abs_base_url"
	KeyBookshelfKey   = "abs_api_key"
)

// maskedValue replaces sensitive values in API snapshots.
const maskedValue = "***"

var defaultValues = map[string]string{
	KeyDelugeHost:     "deluge",
	KeyDelugePort:     "8112",
	KeyDelugePassword: "deluge",
	KeyDelugeURL:      "",
	KeyDelugeLabel:    "bookarr",
	KeyIndexerURL:     "",
	KeyIndexerAPIKey:  "",
	KeyBookshelfURL:   "",
	KeyBookshelfKey:   "",
}

var sensitiveKeys = map[string]bool{
	KeyDelugePassword: true,
	KeyIndexerAPIKey:  true,
	KeyBookshelfKey:   true,
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// EnsureDefaults makes sure every known setting key exists in the database,
// seeding missing ones with their default value.
func (svc *Service) EnsureDefaults(ctx context.Context) error {
	existing := []*models.AppSetting{}
	err := svc.db.NewSelect().Model(&existing).Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	existingKeys := map[string]bool{}
	for _, row := range existing {
		existingKeys[row.Key] = true
	}

	missing := []*models.AppSetting{}
	for key, value := range defaultValues {
		if !existingKeys[key] {
			missing = append(missing, &models.AppSetting{Key: key, Value: value})
		}
	}
	if len(missing) == 0 {
		return nil
	}

	_, err = svc.db.NewInsert().Model(&missing).Exec(ctx)
	return errors.WithStack(err)
}

// Values returns raw setting values, unmasked. Use carefully.
func (svc *Service) Values(ctx context.Context) (map[string]string, error) {
	if err := svc.EnsureDefaults(ctx); err != nil {
		return nil, err
	}

	rows := []*models.AppSetting{}
	err := svc.db.NewSelect().Model(&rows).Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	values := map[string]string{}
	for key, value := range defaultValues {
		values[key] = value
	}
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	return values, nil
}

// Snapshot returns setting values with sensitive ones masked, suitable for API
// responses.
func (svc *Service) Snapshot(ctx context.Context) (map[string]string, error) {
	values, err := svc.Values(ctx)
	if err != nil {
		return nil, err
	}

	for key := range sensitiveKeys {
		if values[key] != "" {
			values[key] = maskedValue
		}
	}

	return values, nil
}

// Update persists the given partial settings. Unknown keys are skipped and a
// blank value never clobbers a stored secret.
func (svc *Service) Update(ctx context.Context, partial map[string]*string) (map[string]string, error) {
	if err := svc.EnsureDefaults(ctx); err != nil {
		return nil, err
	}

	for key, value := range partial {
		if _, known := defaultValues[key]; !known || value == nil {
			continue
		}
		if sensitiveKeys[key] && *value == "" {
			continue
		}

		setting := &models.AppSetting{Key: key, Value: *value}
		_, err := svc.db.NewInsert().
			Model(setting).
			On("CONFLICT (key) DO UPDATE").
			Set("value = EXCLUDED.value").
			Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return svc.Snapshot(ctx)
}

// BookshelfConfig returns the configured media-library base URL and API key.
// Either may be empty when the integration hasn't been configured yet.
func (svc *Service) BookshelfConfig(ctx context.Context) (string, string, error) {
	values, err := svc.Values(ctx)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(values[KeyBookshelfURL]), strings.TrimSpace(values[KeyBookshelfKey]), nil
}
