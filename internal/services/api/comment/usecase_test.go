package comment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/Inkwell/internal/domain/comment"
	"github.com/NordCoder/Inkwell/internal/domain/post"
	"github.com/NordCoder/Inkwell/internal/domain/user"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"

	"github.com/stretchr/testify/require"
)

type fakeComments struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*comment.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{nextID: 1, byID: map[int64]*comment.Comment{}}
}

func (f *fakeComments) Create(_ context.Context, c *comment.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.nextID
	f.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id int64) (*comment.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, pg.ErrNotFound
}

func (f *fakeComments) ListByPost(_ context.Context, postID int64, approvedOnly bool) ([]*comment.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*comment.Comment
	for _, c := range f.byID {
		if c.PostID != postID {
			continue
		}
		if approvedOnly && !c.IsApproved {
			continue
		}
		if c.ParentID != nil {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeComments) Update(_ context.Context, c *comment.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return pg.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pg.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakePosts serves two fixed posts: 1 published, 2 draft (author 1).
type fakePosts struct{}

func (fakePosts) GetByID(_ context.Context, id int64) (*post.Post, error) {
	switch id {
	case 1:
		return &post.Post{ID: 1, AuthorID: 1, Slug: "published", Status: post.StatusPublished}, nil
	case 2:
		return &post.Post{ID: 2, AuthorID: 1, Slug: "draft", Status: post.StatusDraft}, nil
	}
	return nil, pg.ErrNotFound
}

func (f fakePosts) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	switch slug {
	case "published":
		return f.GetByID(ctx, 1)
	case "draft":
		return f.GetByID(ctx, 2)
	}
	return nil, pg.ErrNotFound
}

func (fakePosts) Create(context.Context, *post.Post, []int64) error { return nil }
func (fakePosts) List(context.Context, post.Filter) ([]*post.Post, int64, error) {
	return nil, 0, nil
}
func (fakePosts) Update(context.Context, *post.Post, []int64) error { return nil }
func (fakePosts) Delete(context.Context, int64) error               { return nil }
func (fakePosts) SlugExists(context.Context, string, int64) (bool, error) {
	return false, nil
}
func (fakePosts) IncrementViews(context.Context, int64) error { return nil }

func users() (author, stranger, admin *user.User) {
	author = &user.User{ID: 1, Role: user.RoleUser, IsActive: true}
	stranger = &user.User{ID: 2, Role: user.RoleUser, IsActive: true}
	admin = &user.User{ID: 9, Role: user.RoleAdmin, IsActive: true}
	return
}

func TestCreateComment(t *testing.T) {
	t.Parallel()
	uc := NewUseCase(newFakeComments(), fakePosts{})
	ctx := context.Background()
	author, stranger, _ := users()

	c, err := uc.Create(ctx, stranger, 1, "nice post", nil)
	require.NoError(t, err)
	require.True(t, c.IsApproved)
	require.Equal(t, stranger.ID, c.UserID)

	// replies must stay on the same post
	reply, err := uc.Create(ctx, author, 1, "thanks", &c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, *reply.ParentID)

	other, err := uc.Create(ctx, author, 2, "draft note", nil)
	require.NoError(t, err)
	_, err = uc.Create(ctx, stranger, 1, "cross-post reply", &other.ID)
	require.ErrorIs(t, err, ErrInvalidParent)

	missing := int64(404)
	_, err = uc.Create(ctx, stranger, 1, "orphan", &missing)
	require.ErrorIs(t, err, ErrInvalidParent)

	// drafts accept comments from their author only
	_, err = uc.Create(ctx, stranger, 2, "sneaky", nil)
	require.ErrorIs(t, err, ErrPostNotFound)

	_, err = uc.Create(ctx, stranger, 404, "void", nil)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestListBySlug(t *testing.T) {
	t.Parallel()
	repo := newFakeComments()
	uc := NewUseCase(repo, fakePosts{})
	ctx := context.Background()
	author, stranger, admin := users()

	c1, err := uc.Create(ctx, stranger, 1, "first", nil)
	require.NoError(t, err)
	_, err = uc.Create(ctx, author, 1, "second", nil)
	require.NoError(t, err)

	_, err = uc.Approve(ctx, admin, c1.ID, false)
	require.NoError(t, err)

	visible, err := uc.ListBySlug(ctx, "published", nil)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	all, err := uc.ListBySlug(ctx, "published", admin)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = uc.ListBySlug(ctx, "missing", nil)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdateAndDeleteComment(t *testing.T) {
	t.Parallel()
	uc := NewUseCase(newFakeComments(), fakePosts{})
	ctx := context.Background()
	author, stranger, admin := users()

	c, err := uc.Create(ctx, stranger, 1, "original", nil)
	require.NoError(t, err)

	_, err = uc.Update(ctx, author, c.ID, "hijacked")
	require.ErrorIs(t, err, ErrForbidden)

	got, err := uc.Update(ctx, stranger, c.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", got.Content)

	_, err = uc.Approve(ctx, stranger, c.ID, false)
	require.ErrorIs(t, err, ErrForbidden)

	require.ErrorIs(t, uc.Delete(ctx, author, c.ID), ErrForbidden)
	require.NoError(t, uc.Delete(ctx, admin, c.ID))
	require.ErrorIs(t, uc.Delete(ctx, admin, c.ID), ErrNotFound)
}
