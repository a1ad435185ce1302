package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/Inkwell/internal/domain/post"
)

var _ post.LikeRepo = (*LikeRepo)(nil)

type LikeRepo struct {
	db *DB
}

func NewLikeRepo(db *DB) *LikeRepo { return &LikeRepo{db: db} }

const (
	qLikeExists = `SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2);`
	qLikeAdd    = `INSERT INTO likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`
	qLikeRemove = `DELETE FROM likes WHERE post_id = $1 AND user_id = $2;`
)

func (r *LikeRepo) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, qLikeExists, postID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("like exists: %w", err)
	}
	return exists, nil
}

func (r *LikeRepo) Add(ctx context.Context, postID, userID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qLikeAdd, postID, userID); err != nil {
		return fmt.Errorf("like add: %w", err)
	}
	return nil
}

func (r *LikeRepo) Remove(ctx context.Context, postID, userID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qLikeRemove, postID, userID); err != nil {
		return fmt.Errorf("like remove: %w", err)
	}
	return nil
}
