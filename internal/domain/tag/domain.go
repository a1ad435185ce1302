package tag

import "context"

type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	PostsCount  int64  `json:"posts_count"`
}

type Repo interface {
	Create(ctx context.Context, t *Tag) error
	GetByID(ctx context.Context, id int64) (*Tag, error)
	GetBySlug(ctx context.Context, slug string) (*Tag, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Tag, error)
	List(ctx context.Context) ([]Tag, error)
	Update(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id int64) error
}
