// AngelaMos | 2026
// book_repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/bookshelf-api/internal/core"
)

type BookRepository interface {
	List(ctx context.Context, ownerID string, filter BookFilter) ([]Book, error)
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, ownerID string, id int64) (*Book, error)
	Update(ctx context.Context, book *Book, setTags, setAuthors bool) error
	Delete(ctx context.Context, ownerID string, id int64) error
	UpdateCover(
		ctx context.Context,
		ownerID string,
		id int64,
		coverPath string,
	) error
}

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, user_id, title, pages, year, price_cents, link,
       cover_path, created_at, updated_at`

func (r *bookRepository) List(
	ctx context.Context,
	ownerID string,
	filter BookFilter,
) ([]Book, error) {
	conditions := []string{"user_id = ?"}
	args := []any{ownerID}

	// An empty non-nil id set matches nothing, which `id IN ()` cannot
	// express; short-circuit with FALSE instead.
	if filter.TagIDs != nil {
		if len(filter.TagIDs) == 0 {
			conditions = append(conditions, "FALSE")
		} else {
			conditions = append(conditions, `EXISTS (
				SELECT 1 FROM book_tags bt
				WHERE bt.book_id = books.id AND bt.tag_id IN (?))`)
			args = append(args, filter.TagIDs)
		}
	}

	if filter.AuthorIDs != nil {
		if len(filter.AuthorIDs) == 0 {
			conditions = append(conditions, "FALSE")
		} else {
			conditions = append(conditions, `EXISTS (
				SELECT 1 FROM book_authors ba
				WHERE ba.book_id = books.id AND ba.author_id IN (?))`)
			args = append(args, filter.AuthorIDs)
		}
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM books
		WHERE %s
		ORDER BY id DESC`,
		bookColumns, strings.Join(conditions, " AND "))

	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	books := []Book{}
	err = r.db.SelectContext(ctx, &books, r.db.Rebind(query), expanded...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	if err := r.loadLinks(ctx, books); err != nil {
		return nil, err
	}

	return books, nil
}

func (r *bookRepository) Create(ctx context.Context, book *Book) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO books (user_id, title, pages, year, price_cents, link)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			book.UserID,
			book.Title,
			book.Pages,
			book.Year,
			book.Price,
			book.Link,
		).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}

		if err := insertLinks(ctx, tx, "book_tags", "tag_id", book.ID, book.TagIDs); err != nil {
			return err
		}

		return insertLinks(
			ctx, tx, "book_authors", "author_id", book.ID, book.AuthorIDs,
		)
	})
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	return nil
}

func (r *bookRepository) GetByID(
	ctx context.Context,
	ownerID string,
	id int64,
) (*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM books
		WHERE id = $1 AND user_id = $2`,
		bookColumns)

	var book Book
	err := r.db.GetContext(ctx, &book, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get book: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	books := []Book{book}
	if err := r.loadLinks(ctx, books); err != nil {
		return nil, err
	}

	return &books[0], nil
}

func (r *bookRepository) Update(
	ctx context.Context,
	book *Book,
	setTags, setAuthors bool,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE books
			SET title = $3, pages = $4, year = $5, price_cents = $6,
			    link = $7, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING updated_at`

		err := tx.QueryRowxContext(ctx, query,
			book.ID,
			book.UserID,
			book.Title,
			book.Pages,
			book.Year,
			book.Price,
			book.Link,
		).Scan(&book.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}

		if setTags {
			if err := replaceLinks(ctx, tx, "book_tags", "tag_id", book.ID, book.TagIDs); err != nil {
				return err
			}
		}

		if setAuthors {
			if err := replaceLinks(ctx, tx, "book_authors", "author_id", book.ID, book.AuthorIDs); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("update book: %w", core.ErrNotFound)
		}
		return fmt.Errorf("update book: %w", err)
	}

	return nil
}

func (r *bookRepository) Delete(
	ctx context.Context,
	ownerID string,
	id int64,
) error {
	query := `DELETE FROM books WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete book: %w", core.ErrNotFound)
	}

	return nil
}

func (r *bookRepository) UpdateCover(
	ctx context.Context,
	ownerID string,
	id int64,
	coverPath string,
) error {
	query := `
		UPDATE books
		SET cover_path = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID, coverPath)
	if err != nil {
		return fmt.Errorf("update cover: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cover: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update cover: %w", core.ErrNotFound)
	}

	return nil
}

// loadLinks fills TagIDs and AuthorIDs for a page of books with one
// query per link table.
func (r *bookRepository) loadLinks(ctx context.Context, books []Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(books))
	index := make(map[int64]*Book, len(books))
	for i := range books {
		books[i].TagIDs = []int64{}
		books[i].AuthorIDs = []int64{}
		ids = append(ids, books[i].ID)
		index[books[i].ID] = &books[i]
	}

	type link struct {
		BookID int64 `db:"book_id"`
		RefID  int64 `db:"ref_id"`
	}

	load := func(table, column string, assign func(b *Book, id int64)) error {
		query, args, err := sqlx.In(fmt.Sprintf(`
			SELECT book_id, %s AS ref_id
			FROM %s
			WHERE book_id IN (?)`,
			column, table), ids)
		if err != nil {
			return fmt.Errorf("load %s: %w", table, err)
		}

		links := []link{}
		err = r.db.SelectContext(ctx, &links, r.db.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("load %s: %w", table, err)
		}

		for _, l := range links {
			if b, ok := index[l.BookID]; ok {
				assign(b, l.RefID)
			}
		}

		return nil
	}

	err := load("book_tags", "tag_id", func(b *Book, id int64) {
		b.TagIDs = append(b.TagIDs, id)
	})
	if err != nil {
		return err
	}

	return load("book_authors", "author_id", func(b *Book, id int64) {
		b.AuthorIDs = append(b.AuthorIDs, id)
	})
}

func insertLinks(
	ctx context.Context,
	tx *sqlx.Tx,
	table, column string,
	bookID int64,
	refIDs []int64,
) error {
	if len(refIDs) == 0 {
		return nil
	}

	values := make([]string, 0, len(refIDs))
	args := make([]any, 0, len(refIDs)+1)
	args = append(args, bookID)

	for i, refID := range refIDs {
		values = append(values, fmt.Sprintf("($1, $%d)", i+2))
		args = append(args, refID)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (book_id, %s) VALUES %s",
		table, column, strings.Join(values, ", "),
	)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("link %s: %w", table, err)
	}

	return nil
}

func replaceLinks(
	ctx context.Context,
	tx *sqlx.Tx,
	table, column string,
	bookID int64,
	refIDs []int64,
) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE book_id = $1", table)
	if _, err := tx.ExecContext(ctx, query, bookID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	return insertLinks(ctx, tx, table, column, bookID, refIDs)
}
