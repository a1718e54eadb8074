package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/bookarr/bookarr/pkg/models"
	"github.com/bookarr/bookarr/pkg/openlibrary"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListBooksOptions struct {
	AuthorID *int
	Limit    *int
	Offset   *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveBook(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Relation("Narrators", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("n.name ASC")
		}).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Narrators", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("n.name ASC")
		}).
		Order("b.title ASC")

	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// RefreshFromOpenLibrary merges an author's OpenLibrary bibliography into the
// local books. Works whose title already exists for the author (ignoring case)
// backfill ol_id, cover, and publish year; the rest are inserted. Rows created
// from the media library are never deleted.
func (svc *Service) RefreshFromOpenLibrary(ctx context.Context, authorID int, works []openlibrary.Work) error {
	if len(works) == 0 {
		return nil
	}

	existing, err := svc.ListBooks(ctx, ListBooksOptions{AuthorID: &authorID})
	if err != nil {
		return err
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, work := range works {
			if work.Title == "" {
				continue
			}

			book := findByTitleFold(existing, work.Title)
			if book == nil {
				now := time.Now()
				book = &models.Book{
					CreatedAt:        now,
					UpdatedAt:        now,
					AuthorID:         authorID,
					Title:            work.Title,
					OpenLibraryID:    work.OpenLibraryID,
					FirstPublishYear: work.FirstPublishYear,
					CoverURL:         work.CoverURL,
				}
				_, err := tx.NewInsert().
					Model(book).
					Returning("*").
					Exec(ctx)
				if err != nil {
					return errors.WithStack(err)
				}
				existing = append(existing, book)
				continue
			}

			changed := false
			if work.OpenLibraryID != nil && book.OpenLibraryID == nil {
				book.OpenLibraryID = work.OpenLibraryID
				changed = true
			}
			if work.CoverURL != nil && book.CoverURL == nil {
				book.CoverURL = work.CoverURL
				changed = true
			}
			if work.FirstPublishYear != nil && book.FirstPublishYear == nil {
				book.FirstPublishYear = work.FirstPublishYear
				changed = true
			}
			if !changed {
				continue
			}

			book.UpdatedAt = time.Now()
			_, err := tx.NewUpdate().
				Model(book).
				Column("ol_id", "cover_url", "first_publish_year", "updated_at").
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
}

func findByTitleFold(books []*models.Book, title string) *models.Book {
	for _, book := range books {
		if strings.EqualFold(book.Title, title) {
			return book
		}
	}
	return nil
}
