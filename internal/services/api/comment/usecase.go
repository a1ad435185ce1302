package comment

import (
	"context"
	"errors"

	"github.com/NordCoder/Inkwell/internal/domain/comment"
	"github.com/NordCoder/Inkwell/internal/domain/post"
	"github.com/NordCoder/Inkwell/internal/domain/user"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"
)

var (
	ErrNotFound      = errors.New("comment not found")
	ErrPostNotFound  = errors.New("post not found")
	ErrForbidden     = errors.New("not allowed to modify this comment")
	ErrInvalidParent = errors.New("parent comment belongs to another post")
)

type Usecase struct {
	comments comment.Repo
	posts    post.Repo
}

func NewUseCase(comments comment.Repo, posts post.Repo) *Usecase {
	return &Usecase{comments: comments, posts: posts}
}

func (u *Usecase) Create(ctx context.Context, actor *user.User, postID int64, content string, parentID *int64) (*comment.Comment, error) {
	p, err := u.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !p.IsPublished() && !actor.IsAdmin() && actor.ID != p.AuthorID {
		return nil, ErrPostNotFound
	}
	if parentID != nil {
		parent, err := u.comments.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, pg.ErrNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrInvalidParent
		}
	}

	c := &comment.Comment{
		PostID:     postID,
		UserID:     actor.ID,
		ParentID:   parentID,
		Content:    content,
		IsApproved: true,
	}
	if err := u.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return u.comments.GetByID(ctx, c.ID)
}

// ListBySlug returns the comment tree for the post at slug. Unapproved
// comments show up for admins only.
func (u *Usecase) ListBySlug(ctx context.Context, slug string, viewer *user.User) ([]*comment.Comment, error) {
	p, err := u.posts.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	approvedOnly := viewer == nil || !viewer.IsAdmin()
	out, err := u.comments.ListByPost(ctx, p.ID, approvedOnly)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*comment.Comment{}
	}
	return out, nil
}

func (u *Usecase) Update(ctx context.Context, actor *user.User, id int64, content string) (*comment.Comment, error) {
	c, err := u.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	c.Content = content
	if err := u.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return u.comments.GetByID(ctx, id)
}

// Approve flips moderation state, admin only.
func (u *Usecase) Approve(ctx context.Context, actor *user.User, id int64, approved bool) (*comment.Comment, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	c, err := u.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.IsApproved = approved
	if err := u.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return u.comments.GetByID(ctx, id)
}

func (u *Usecase) Delete(ctx context.Context, actor *user.User, id int64) error {
	c, err := u.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if c.UserID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return u.comments.Delete(ctx, id)
}
