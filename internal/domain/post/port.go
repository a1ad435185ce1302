package post

import "context"

type Repo interface {
	Create(ctx context.Context, p *Post, tagIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, f Filter) ([]*Post, int64, error)
	Update(ctx context.Context, p *Post, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	IncrementViews(ctx context.Context, id int64) error
}

type LikeRepo interface {
	Exists(ctx context.Context, postID, userID int64) (bool, error)
	Add(ctx context.Context, postID, userID int64) error
	Remove(ctx context.Context, postID, userID int64) error
}
