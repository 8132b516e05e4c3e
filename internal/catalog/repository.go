// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/bookshelf-api/internal/core"
)

// Every query below carries the owner predicate in SQL. Rows belonging
// to other users are invisible to it, so a foreign id behaves exactly
// like a missing one.
type AttributeRepository interface {
	List(
		ctx context.Context,
		kind AttributeKind,
		ownerID string,
		assignedOnly bool,
	) ([]Attribute, error)
	Create(ctx context.Context, kind AttributeKind, attr *Attribute) error
	GetByID(
		ctx context.Context,
		kind AttributeKind,
		ownerID string,
		id int64,
	) (*Attribute, error)
	UpdateName(
		ctx context.Context,
		kind AttributeKind,
		ownerID string,
		id int64,
		name string,
	) (*Attribute, error)
	Delete(
		ctx context.Context,
		kind AttributeKind,
		ownerID string,
		id int64,
	) error
	GetMany(
		ctx context.Context,
		kind AttributeKind,
		ownerID string,
		ids []int64,
	) ([]Attribute, error)
}

// tableFor maps an attribute kind to its table and book link table.
func tableFor(kind AttributeKind) (table, linkTable, linkColumn string) {
	switch kind {
	case KindAuthor:
		return "authors", "book_authors", "author_id"
	default:
		return "tags", "book_tags", "tag_id"
	}
}

type attributeRepository struct {
	db core.DBTX
}

func NewAttributeRepository(db core.DBTX) AttributeRepository {
	return &attributeRepository{db: db}
}

func (r *attributeRepository) List(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	assignedOnly bool,
) ([]Attribute, error) {
	table, linkTable, linkColumn := tableFor(kind)

	var query string
	if assignedOnly {
		// DISTINCT collapses attributes linked to several books into
		// one row. Joining through books repeats the owner predicate so
		// stale links can never surface another user's data.
		query = fmt.Sprintf(`
			SELECT DISTINCT a.id, a.name, a.user_id
			FROM %s a
			JOIN %s l ON l.%s = a.id
			JOIN books b ON b.id = l.book_id AND b.user_id = $1
			WHERE a.user_id = $1
			ORDER BY a.name DESC`,
			table, linkTable, linkColumn)
	} else {
		query = fmt.Sprintf(`
			SELECT id, name, user_id
			FROM %s
			WHERE user_id = $1
			ORDER BY name DESC`,
			table)
	}

	attrs := []Attribute{}
	if err := r.db.SelectContext(ctx, &attrs, query, ownerID); err != nil {
		return nil, fmt.Errorf("list %ss: %w", kind, err)
	}

	return attrs, nil
}

func (r *attributeRepository) Create(
	ctx context.Context,
	kind AttributeKind,
	attr *Attribute,
) error {
	table, _, _ := tableFor(kind)

	query := fmt.Sprintf(`
		INSERT INTO %s (name, user_id)
		VALUES ($1, $2)
		RETURNING id`,
		table)

	err := r.db.GetContext(ctx, &attr.ID, query, attr.Name, attr.UserID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create %s: %w", kind, core.ErrDuplicateKey)
		}
		return fmt.Errorf("create %s: %w", kind, err)
	}

	return nil
}

func (r *attributeRepository) GetByID(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
) (*Attribute, error) {
	table, _, _ := tableFor(kind)

	query := fmt.Sprintf(`
		SELECT id, name, user_id
		FROM %s
		WHERE id = $1 AND user_id = $2`,
		table)

	var attr Attribute
	err := r.db.GetContext(ctx, &attr, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", kind, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}

	return &attr, nil
}

func (r *attributeRepository) UpdateName(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
	name string,
) (*Attribute, error) {
	table, _, _ := tableFor(kind)

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, name, user_id`,
		table)

	var attr Attribute
	err := r.db.GetContext(ctx, &attr, query, id, ownerID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update %s: %w", kind, core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("update %s: %w", kind, core.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}

	return &attr, nil
}

func (r *attributeRepository) Delete(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
) error {
	table, _, _ := tableFor(kind)

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2`,
		table)

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	if rows == 0 {
		return fmt.Errorf("delete %s: %w", kind, core.ErrNotFound)
	}

	return nil
}

func (r *attributeRepository) GetMany(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	ids []int64,
) ([]Attribute, error) {
	if len(ids) == 0 {
		return []Attribute{}, nil
	}

	table, _, _ := tableFor(kind)

	query, args, err := sqlx.In(fmt.Sprintf(`
		SELECT id, name, user_id
		FROM %s
		WHERE user_id = ? AND id IN (?)
		ORDER BY name DESC`,
		table), ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("get %ss: %w", kind, err)
	}

	attrs := []Attribute{}
	err = r.db.SelectContext(ctx, &attrs, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("get %ss: %w", kind, err)
	}

	return attrs, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
