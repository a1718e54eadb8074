package authors

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/bookarr/bookarr/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveAuthorOptions struct {
	ID            *int
	Name          *string
	OpenLibraryID *string
}

type ListAuthorsOptions struct {
	Limit  *int
	Offset *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateAuthor inserts the author. When the author carries an OpenLibrary id
// that already exists locally, the existing row is returned instead of
// creating a duplicate.
func (svc *Service) CreateAuthor(ctx context.Context, author *models.Author) (*models.Author, error) {
	if author.OpenLibraryID != nil && *author.OpenLibraryID != "" {
		existing, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{OpenLibraryID: author.OpenLibraryID})
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, errcodes.NotFound("Author")) {
			return nil, err
		}
	}

	now := time.Now()
	if author.CreatedAt.IsZero() {
		author.CreatedAt = now
	}
	author.UpdatedAt = author.CreatedAt

	_, err := svc.db.NewInsert().
		Model(author).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return author, nil
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrieveAuthorOptions) (*models.Author, error) {
	author := &models.Author{}

	q := svc.db.
		NewSelect().
		Model(author).
		Relation("Books", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("b.title ASC")
		})

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("a.name = ? COLLATE NOCASE", *opts.Name)
	}
	if opts.OpenLibraryID != nil {
		q = q.Where("a.ol_id = ?", *opts.OpenLibraryID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

func (svc *Service) ListAuthors(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, error) {
	authors := []*models.Author{}

	q := svc.db.
		NewSelect().
		Model(&authors).
		Relation("Books", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("b.title ASC")
		}).
		Order("a.name ASC")

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

	return authors, nil
}

// DeleteAuthor removes the author. Its books and their narrator associations
// go with it via the cascade FKs; shared narrators stay.
func (svc *Service) DeleteAuthor(ctx context.Context, id int) error {
	result, err := svc.db.NewDelete().
		Model((*models.Author)(nil)).
		Where("a.id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Author")
	}

	return nil
}
