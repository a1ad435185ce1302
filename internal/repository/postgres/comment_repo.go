package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/Inkwell/internal/domain/comment"
	"github.com/NordCoder/Inkwell/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

var _ comment.Repo = (*CommentRepo)(nil)

type CommentRepo struct {
	db *DB
}

func NewCommentRepo(db *DB) *CommentRepo { return &CommentRepo{db: db} }

const commentCols = `c.id, c.post_id, c.user_id, c.parent_id, c.content, c.is_approved,
       c.created_at, c.updated_at,
       u.id, u.email, u.username, u.role, u.avatar_url, u.is_active, u.is_verified`

const (
	qCommentInsert = `
INSERT INTO comments (post_id, user_id, parent_id, content, is_approved)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at;`

	qCommentByID = `
SELECT ` + commentCols + `
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.id = $1;`

	qCommentsByPost = `
SELECT ` + commentCols + `
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.post_id = $1 AND ($2 = FALSE OR c.is_approved)
ORDER BY c.created_at;`

	qCommentUpdate = `
UPDATE comments
SET content = $2, is_approved = $3, updated_at = NOW()
WHERE id = $1;`

	qCommentDelete = `DELETE FROM comments WHERE id = $1;`
)

func (r *CommentRepo) Create(ctx context.Context, c *comment.Comment) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.execQueryer(ctx).QueryRow(ctx, qCommentInsert,
		c.PostID, c.UserID, c.ParentID, c.Content, c.IsApproved,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("comment insert: %w", err)
	}
	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*comment.Comment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c comment.Comment
	if err := scanComment(r.db.Pool.QueryRow(ctx, qCommentByID, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByPost returns top-level comments with replies nested one level deep,
// ordered oldest first.
func (r *CommentRepo) ListByPost(ctx context.Context, postID int64, approvedOnly bool) ([]*comment.Comment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qCommentsByPost, postID, approvedOnly)
	if err != nil {
		return nil, fmt.Errorf("comments by post: %w", err)
	}
	defer rows.Close()

	var (
		roots []*comment.Comment
		byID  = map[int64]*comment.Comment{}
	)
	for rows.Next() {
		var c comment.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, err
		}
		byID[c.ID] = &c
		if c.ParentID == nil {
			roots = append(roots, &c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comment rows: %w", err)
	}
	for _, c := range byID {
		if c.ParentID == nil {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}
	return roots, nil
}

func (r *CommentRepo) Update(ctx context.Context, c *comment.Comment) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	ct, err := r.db.Pool.Exec(ctx, qCommentUpdate, c.ID, c.Content, c.IsApproved)
	if err != nil {
		return fmt.Errorf("comment update: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	ct, err := r.db.Pool.Exec(ctx, qCommentDelete, id)
	if err != nil {
		return fmt.Errorf("comment delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanComment(row pgx.Row, c *comment.Comment) error {
	var (
		u      user.User
		avatar *string
	)
	if err := row.Scan(
		&c.ID, &c.PostID, &c.UserID, &c.ParentID, &c.Content, &c.IsApproved,
		&c.CreatedAt, &c.UpdatedAt,
		&u.ID, &u.Email, &u.Username, &u.Role, &avatar, &u.IsActive, &u.IsVerified,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan comment: %w", err)
	}
	u.AvatarURL = deref(avatar)
	c.User = &u
	return nil
}
