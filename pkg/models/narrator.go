package models

import (
	"github.com/uptrace/bun"
)

type Narrator struct {
	bun.BaseModel `bun:"table:narrators,alias:n"`

	ID   int    `bun:",pk,nullzero" json:"id"`
	Name string `bun:",nullzero" json:"name"`
}

// BookNarrator is the join table between books and narrators. A narrator can
// voice many books and a book can have multiple narrators.
type BookNarrator struct {
	bun.BaseModel `bun:"table:book_narrators,alias:bn"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	BookID     int       `bun:",nullzero" json:"book_id"`
	Book       *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	NarratorID int       `bun:",nullzero" json:"narrator_id"`
	Narrator   *Narrator `bun:"rel:belongs-to,join:narrator_id=id" json:"narrator,omitempty"`
}
