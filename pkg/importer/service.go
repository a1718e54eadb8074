package importer

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bookarr/bookarr/pkg/bookshelf"
	"github.com/bookarr/bookarr/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Outcome actions.
const (
	ActionImported    = "imported"
	ActionWouldImport = "would_import"
	ActionSkipped     = "skipped"
)

// Outcome records what happened to a single normalized item during an import.
type Outcome struct {
	Action        string   `json:"action"`
	BookID        int      `json:"book_id,omitempty"`
	Title         string   `json:"title"`
	AuthorName    string   `json:"author,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	NarratorNames []string `json:"narrators"`
	CoverURL      *string  `json:"cover_url"`
	SkipReason    string   `json:"skip_reason,omitempty"`
}

// Service reconciles normalized media-library items against the local author,
// book, and narrator tables without creating duplicates.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Import upserts a batch of normalized items. Items missing a title or any
// author are reported as skipped and cause no writes. Only the first author of
// a multi-author item is attached; the rest are discarded for now.
//
// Import is idempotent: running the same batch twice produces no new rows and
// never detaches a narrator. In dry-run mode nothing is written at all.
func (svc *Service) Import(ctx context.Context, batch []bookshelf.NormalizedItem, dryRun bool) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(batch))

	for _, item := range batch {
		if item.Title == "" || len(item.Authors) == 0 {
			outcomes = append(outcomes, Outcome{
				Action:     ActionSkipped,
				Title:      item.Title,
				Authors:    item.Authors,
				SkipReason: "missing title or author",
			})
			continue
		}

		if dryRun {
			outcomes = append(outcomes, Outcome{
				Action:        ActionWouldImport,
				Title:         item.Title,
				Authors:       item.Authors,
				NarratorNames: item.Narrators,
				CoverURL:      item.CoverURL,
			})
			continue
		}

		outcome, err := svc.importItem(ctx, item)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, *outcome)
	}

	return outcomes, nil
}

func (svc *Service) importItem(ctx context.Context, item bookshelf.NormalizedItem) (*Outcome, error) {
	outcome := &Outcome{
		Action:   ActionImported,
		Title:    item.Title,
		CoverURL: item.CoverURL,
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		primaryAuthor := strings.TrimSpace(item.Authors[0])

		author, err := resolveAuthor(ctx, tx, primaryAuthor)
		if err != nil {
			return err
		}

		book, err := resolveBook(ctx, tx, author, item.Title, item.CoverURL)
		if err != nil {
			return err
		}

		narratorNames, err := resolveNarrators(ctx, tx, book, item.Narrators)
		if err != nil {
			return err
		}

		outcome.BookID = book.ID
		outcome.Title = book.Title
		outcome.AuthorName = author.Name
		outcome.NarratorNames = narratorNames
		outcome.CoverURL = book.BookshelfCoverURL
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// resolveAuthor returns the author with the given name, matched
// case-insensitively, creating a monitored local-only author if none exists.
func resolveAuthor(ctx context.Context, tx bun.Tx, name string) (*models.Author, error) {
	author := &models.Author{}
	err := tx.NewSelect().
		Model(author).
		Where("a.name = ? COLLATE NOCASE", name).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	author = &models.Author{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Monitored: true,
	}
	_, err = tx.NewInsert().
		Model(author).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return author, nil
}

// resolveBook returns the author's book with the given title, matched
// case-insensitively, creating it if absent. An incoming cover backfills a
// missing bookshelf cover on an existing book but never replaces one.
func resolveBook(ctx context.Context, tx bun.Tx, author *models.Author, title string, coverURL *string) (*models.Book, error) {
	book := &models.Book{}
	err := tx.NewSelect().
		Model(book).
		Where("b.author_id = ?", author.ID).
		Where("b.title = ? COLLATE NOCASE", title).
		Limit(1).
		Scan(ctx)
	if err == nil {
		if coverURL != nil && book.BookshelfCoverURL == nil {
			book.BookshelfCoverURL = coverURL
			book.UpdatedAt = time.Now()
			_, err = tx.NewUpdate().
				Model(book).
				Column("bookshelf_cover_url", "updated_at").
				WherePK().
				Exec(ctx)
			if err != nil {
				return nil, errors.WithStack(err)
			}
		}
		return book, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	book = &models.Book{
		CreatedAt:         now,
		UpdatedAt:         now,
		AuthorID:          author.ID,
		Title:             title,
		BookshelfCoverURL: coverURL,
	}
	_, err = tx.NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// resolveNarrators attaches the given narrator names to the book, creating
// global narrators as needed. Attachment is monotonic: existing associations
// are never removed, and names already attached (compared case-insensitively)
// are left alone. It returns the full attached name list afterwards.
func resolveNarrators(ctx context.Context, tx bun.Tx, book *models.Book, names []string) ([]string, error) {
	attached := []*models.Narrator{}
	err := tx.NewSelect().
		Model(&attached).
		Join("JOIN book_narrators AS bn ON bn.narrator_id = n.id").
		Where("bn.book_id = ?", book.ID).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	attachedNames := make([]string, 0, len(attached))
	for _, narrator := range attached {
		attachedNames = append(attachedNames, narrator.Name)
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || containsFold(attachedNames, name) {
			continue
		}

		narrator, err := resolveNarrator(ctx, tx, name)
		if err != nil {
			return nil, err
		}

		_, err = tx.NewInsert().
			Model(&models.BookNarrator{BookID: book.ID, NarratorID: narrator.ID}).
			Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		attachedNames = append(attachedNames, narrator.Name)
	}

	return attachedNames, nil
}

func resolveNarrator(ctx context.Context, tx bun.Tx, name string) (*models.Narrator, error) {
	narrator := &models.Narrator{}
	err := tx.NewSelect().
		Model(narrator).
		Where("n.name = ? COLLATE NOCASE", name).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return narrator, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	narrator = &models.Narrator{Name: name}
	_, err = tx.NewInsert().
		Model(narrator).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return narrator, nil
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
