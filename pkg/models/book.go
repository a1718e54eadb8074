package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID               int         `bun:",pk,nullzero" json:"id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	AuthorID         int         `bun:",nullzero" json:"author_id"`
	Author           *Author     `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Title            string      `bun:",nullzero" json:"title"`
	OpenLibraryID    *string     `bun:"ol_id" json:"ol_id"`
	FirstPublishYear *int        `json:"first_publish_year"`
	CoverURL         *string     `json:"cover_url"`
	BookshelfCoverURL *string    `bun:"bookshelf_cover_url" json:"bookshelf_cover_url"`
	Narrators        []*Narrator `bun:"m2m:book_narrators,join:Book=Narrator" json:"narrators,omitempty"`
}

// ResolveCover returns the cover that should be displayed for the book. A
// cover sourced from the media-library service wins over the OpenLibrary one
// once it has been set.
func (b *Book) ResolveCover() *string {
	if b.BookshelfCoverURL != nil && *b.BookshelfCoverURL != "" {
		return b.BookshelfCoverURL
	}
	return b.CoverURL
}
