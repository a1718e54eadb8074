package models

import (
	"github.com/uptrace/bun"
)

// AppSetting is a single key-value pair of runtime configuration persisted in
// the database so it survives restarts and can be edited from the frontend.
type AppSetting struct {
	bun.BaseModel `bun:"table:app_settings,alias:s"`

	Key   string `bun:",pk" json:"key"`
	Value string `json:"value"`
}
