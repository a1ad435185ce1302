package tag

import (
	"context"
	"errors"

	"github.com/NordCoder/Inkwell/internal/domain/tag"
	"github.com/NordCoder/Inkwell/internal/domain/user"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"

	"github.com/gosimple/slug"
)

var (
	ErrNotFound  = errors.New("tag not found")
	ErrExists    = errors.New("tag already exists")
	ErrForbidden = errors.New("admin access required")
)

type Update struct {
	Name        *string
	Description *string
	Color       *string
}

type Usecase struct {
	tags tag.Repo
}

func NewUseCase(tags tag.Repo) *Usecase { return &Usecase{tags: tags} }

func (u *Usecase) Create(ctx context.Context, actor *user.User, name, description, color string) (*tag.Tag, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	t := &tag.Tag{
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		Color:       color,
	}
	if err := u.tags.Create(ctx, t); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, ErrExists
		}
		return nil, err
	}
	return u.tags.GetByID(ctx, t.ID)
}

func (u *Usecase) List(ctx context.Context) ([]tag.Tag, error) {
	out, err := u.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []tag.Tag{}
	}
	return out, nil
}

func (u *Usecase) GetBySlug(ctx context.Context, s string) (*tag.Tag, error) {
	t, err := u.tags.GetBySlug(ctx, s)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (u *Usecase) Update(ctx context.Context, actor *user.User, id int64, in Update) (*tag.Tag, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	t, err := u.tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if in.Name != nil && *in.Name != t.Name {
		t.Name = *in.Name
		t.Slug = slug.Make(t.Name)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Color != nil {
		t.Color = *in.Color
	}
	if err := u.tags.Update(ctx, t); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, ErrExists
		}
		return nil, err
	}
	return u.tags.GetByID(ctx, id)
}

func (u *Usecase) Delete(ctx context.Context, actor *user.User, id int64) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := u.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
