package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/Inkwell/internal/domain/tag"

	"github.com/jackc/pgx/v5"
)

var _ tag.Repo = (*TagRepo)(nil)

type TagRepo struct {
	db *DB
}

func NewTagRepo(db *DB) *TagRepo { return &TagRepo{db: db} }

const tagCols = `t.id, t.name, t.slug, t.description, t.color,
       (SELECT COUNT(*) FROM post_tags pt WHERE pt.tag_id = t.id)`

const (
	qTagInsert = `
INSERT INTO tags (name, slug, description, color)
VALUES ($1, $2, $3, $4)
RETURNING id;`

	qTagByID   = `SELECT ` + tagCols + ` FROM tags t WHERE t.id = $1;`
	qTagBySlug = `SELECT ` + tagCols + ` FROM tags t WHERE t.slug = $1;`
	qTagByIDs  = `SELECT ` + tagCols + ` FROM tags t WHERE t.id = ANY($1) ORDER BY t.name;`
	qTagList   = `SELECT ` + tagCols + ` FROM tags t ORDER BY t.name;`

	qTagUpdate = `
UPDATE tags
SET name = $2, slug = $3, description = $4, color = $5
WHERE id = $1;`

	qTagDelete = `DELETE FROM tags WHERE id = $1;`
)

func (r *TagRepo) Create(ctx context.Context, t *tag.Tag) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qTagInsert,
		t.Name, t.Slug, nullStr(t.Description), nullStr(t.Color),
	).Scan(&t.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("tag insert: %w", err)
	}
	return nil
}

func (r *TagRepo) GetByID(ctx context.Context, id int64) (*tag.Tag, error) {
	return r.getOne(ctx, qTagByID, id)
}

func (r *TagRepo) GetBySlug(ctx context.Context, slug string) (*tag.Tag, error) {
	return r.getOne(ctx, qTagBySlug, slug)
}

func (r *TagRepo) getOne(ctx context.Context, query string, arg any) (*tag.Tag, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var t tag.Tag
	if err := scanTag(r.db.Pool.QueryRow(ctx, query, arg), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) GetByIDs(ctx context.Context, ids []int64) ([]tag.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	return r.list(ctx, qTagByIDs, ids)
}

func (r *TagRepo) List(ctx context.Context) ([]tag.Tag, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	return r.list(ctx, qTagList)
}

func (r *TagRepo) list(ctx context.Context, query string, args ...any) ([]tag.Tag, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tag list: %w", err)
	}
	defer rows.Close()

	var out []tag.Tag
	for rows.Next() {
		var t tag.Tag
		if err := scanTag(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TagRepo) Update(ctx context.Context, t *tag.Tag) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	ct, err := r.db.Pool.Exec(ctx, qTagUpdate,
		t.ID, t.Name, t.Slug, nullStr(t.Description), nullStr(t.Color))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("tag update: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TagRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	ct, err := r.db.Pool.Exec(ctx, qTagDelete, id)
	if err != nil {
		return fmt.Errorf("tag delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTag(row pgx.Row, t *tag.Tag) error {
	var desc, color *string
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &desc, &color, &t.PostsCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan tag: %w", err)
	}
	t.Description = deref(desc)
	t.Color = deref(color)
	return nil
}
