package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Name          string    `bun:",nullzero" json:"name"`
	OpenLibraryID *string   `bun:"ol_id" json:"ol_id"`
	ImageURL      *string   `json:"image_url"`
	Monitored     bool      `json:"monitored"`
	Books         []*Book   `bun:"rel:has-many,join:id=author_id" json:"books,omitempty"`
}
