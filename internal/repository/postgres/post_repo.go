package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NordCoder/Inkwell/internal/domain/post"
	"github.com/NordCoder/Inkwell/internal/domain/tag"
	"github.com/NordCoder/Inkwell/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

var _ post.Repo = (*PostRepo)(nil)

type PostRepo struct {
	db *DB
}

func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

const postCols = `p.id, p.author_id, p.title, p.slug, p.content, p.excerpt, p.cover_image,
       p.status, p.view_count, p.published_at, p.meta_title, p.meta_description,
       p.created_at, p.updated_at,
       u.id, u.email, u.username, u.role, u.avatar_url, u.is_active, u.is_verified,
       (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)`

const postFrom = `
FROM posts p
JOIN users u ON u.id = p.author_id`

const (
	qPostInsert = `
INSERT INTO posts (author_id, title, slug, content, excerpt, cover_image, status,
                   published_at, meta_title, meta_description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, view_count, created_at, updated_at;`

	qPostUpdate = `
UPDATE posts
SET title            = $2,
    slug             = $3,
    content          = $4,
    excerpt          = $5,
    cover_image      = $6,
    status           = $7,
    published_at     = $8,
    meta_title       = $9,
    meta_description = $10,
    updated_at       = NOW()
WHERE id = $1;`

	qPostDelete = `DELETE FROM posts WHERE id = $1;`

	qPostSlugExists = `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2);`

	qPostBumpViews = `UPDATE posts SET view_count = view_count + 1 WHERE id = $1;`

	qPostTagsDelete = `DELETE FROM post_tags WHERE post_id = $1;`
	qPostTagsInsert = `
INSERT INTO post_tags (post_id, tag_id)
SELECT $1, t.id FROM tags t WHERE t.id = ANY($2)
ON CONFLICT DO NOTHING;`

	qTagsForPosts = `
SELECT pt.post_id, t.id, t.name, t.slug, t.description, t.color
FROM post_tags pt
JOIN tags t ON t.id = pt.tag_id
WHERE pt.post_id = ANY($1)
ORDER BY t.name;`
)

func (r *PostRepo) Create(ctx context.Context, p *post.Post, tagIDs []int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if err := eq.QueryRow(ctx, qPostInsert,
		p.AuthorID, p.Title, p.Slug, p.Content, nullStr(p.Excerpt), nullStr(p.CoverImage),
		p.Status, p.PublishedAt, nullStr(p.MetaTitle), nullStr(p.MetaDescription),
	).Scan(&p.ID, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("post insert: %w", err)
	}
	if len(tagIDs) > 0 {
		if _, err := eq.Exec(ctx, qPostTagsInsert, p.ID, tagIDs); err != nil {
			return fmt.Errorf("post tags insert: %w", err)
		}
	}
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*post.Post, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

func (r *PostRepo) getOne(ctx context.Context, where string, arg any) (*post.Post, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p post.Post
	row := r.db.Pool.QueryRow(ctx, "SELECT "+postCols+postFrom+"\nWHERE "+where+";", arg)
	if err := scanPost(row, &p); err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, []*post.Post{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepo) List(ctx context.Context, f post.Filter) ([]*post.Post, int64, error) {
	f = f.Normalized()
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		conds = append(conds, "p.status = "+arg(f.Status))
	}
	if f.AuthorID != 0 {
		conds = append(conds, "p.author_id = "+arg(f.AuthorID))
	}
	if f.TagSlug != "" {
		conds = append(conds, `EXISTS (
    SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
    WHERE pt.post_id = p.id AND t.slug = `+arg(f.TagSlug)+")")
	}
	if f.Search != "" {
		conds = append(conds, "p.search_vector @@ plainto_tsquery('english', "+arg(f.Search)+")")
	}
	where := ""
	if len(conds) > 0 {
		where = "\nWHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx,
		"SELECT COUNT(*)"+postFrom+where+";", args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("post count: %w", err)
	}

	query := "SELECT " + postCols + postFrom + where +
		"\nORDER BY COALESCE(p.published_at, p.created_at) DESC, p.id DESC" +
		"\nLIMIT " + arg(f.PerPage) + " OFFSET " + arg((f.Page-1)*f.PerPage) + ";"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("post list: %w", err)
	}
	defer rows.Close()

	var out []*post.Post
	for rows.Next() {
		var p post.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, 0, err
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("post rows: %w", err)
	}
	if err := r.attachTags(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostRepo) Update(ctx context.Context, p *post.Post, tagIDs []int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	ct, err := eq.Exec(ctx, qPostUpdate,
		p.ID, p.Title, p.Slug, p.Content, nullStr(p.Excerpt), nullStr(p.CoverImage),
		p.Status, p.PublishedAt, nullStr(p.MetaTitle), nullStr(p.MetaDescription))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("post update: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	if tagIDs != nil {
		if _, err := eq.Exec(ctx, qPostTagsDelete, p.ID); err != nil {
			return fmt.Errorf("post tags clear: %w", err)
		}
		if len(tagIDs) > 0 {
			if _, err := eq.Exec(ctx, qPostTagsInsert, p.ID, tagIDs); err != nil {
				return fmt.Errorf("post tags insert: %w", err)
			}
		}
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	ct, err := r.db.Pool.Exec(ctx, qPostDelete, id)
	if err != nil {
		return fmt.Errorf("post delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, qPostSlugExists, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

func (r *PostRepo) IncrementViews(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qPostBumpViews, id); err != nil {
		return fmt.Errorf("bump views: %w", err)
	}
	return nil
}

func (r *PostRepo) attachTags(ctx context.Context, posts []*post.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(posts))
	byID := make(map[int64]*post.Post, len(posts))
	for _, p := range posts {
		p.Tags = []tag.Tag{}
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := r.db.Pool.Query(ctx, qTagsForPosts, ids)
	if err != nil {
		return fmt.Errorf("tags for posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID      int64
			t           tag.Tag
			desc, color *string
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &desc, &color); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		t.Description = deref(desc)
		t.Color = deref(color)
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	return rows.Err()
}

func scanPost(row pgx.Row, p *post.Post) error {
	var (
		excerpt, cover, metaTitle, metaDesc *string
		author                              user.User
		avatar                              *string
	)
	if err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Content, &excerpt, &cover,
		&p.Status, &p.ViewCount, &p.PublishedAt, &metaTitle, &metaDesc,
		&p.CreatedAt, &p.UpdatedAt,
		&author.ID, &author.Email, &author.Username, &author.Role, &avatar,
		&author.IsActive, &author.IsVerified,
		&p.LikesCount, &p.CommentsCount,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan post: %w", err)
	}
	p.Excerpt = deref(excerpt)
	p.CoverImage = deref(cover)
	p.MetaTitle = deref(metaTitle)
	p.MetaDescription = deref(metaDesc)
	author.AvatarURL = deref(avatar)
	p.Author = &author
	return nil
}
