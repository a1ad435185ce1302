package post

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/NordCoder/Inkwell/internal/domain/post"
	"github.com/NordCoder/Inkwell/internal/domain/tag"
	"github.com/NordCoder/Inkwell/internal/domain/user"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePosts struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*post.Post
	tags   map[int64][]int64
	views  map[int64]int
}

func newFakePosts() *fakePosts {
	return &fakePosts{nextID: 1, byID: map[int64]*post.Post{}, tags: map[int64][]int64{}, views: map[int64]int{}}
}

func (f *fakePosts) Create(_ context.Context, p *post.Post, tagIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	cp := *p
	f.byID[p.ID] = &cp
	f.tags[p.ID] = tagIDs
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, id int64) (*post.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, pg.ErrNotFound
}

func (f *fakePosts) GetBySlug(_ context.Context, slug string) (*post.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pg.ErrNotFound
}

func (f *fakePosts) List(_ context.Context, filter post.Filter) ([]*post.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*post.Post
	for _, p := range f.byID {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.AuthorID != 0 && p.AuthorID != filter.AuthorID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakePosts) Update(_ context.Context, p *post.Post, tagIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; !ok {
		return pg.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	if tagIDs != nil {
		f.tags[p.ID] = tagIDs
	}
	return nil
}

func (f *fakePosts) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pg.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePosts) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePosts) IncrementViews(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[id]++
	return nil
}

type fakeLikes struct {
	mu    sync.Mutex
	likes map[[2]int64]bool
}

func newFakeLikes() *fakeLikes { return &fakeLikes{likes: map[[2]int64]bool{}} }

func (f *fakeLikes) Exists(_ context.Context, postID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likes[[2]int64{postID, userID}], nil
}

func (f *fakeLikes) Add(_ context.Context, postID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likes[[2]int64{postID, userID}] = true
	return nil
}

func (f *fakeLikes) Remove(_ context.Context, postID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.likes, [2]int64{postID, userID})
	return nil
}

type fakeTags struct {
	byID map[int64]tag.Tag
}

func (f *fakeTags) Create(context.Context, *tag.Tag) error                 { return nil }
func (f *fakeTags) GetByID(_ context.Context, id int64) (*tag.Tag, error) { return nil, pg.ErrNotFound }
func (f *fakeTags) GetBySlug(context.Context, string) (*tag.Tag, error)   { return nil, pg.ErrNotFound }
func (f *fakeTags) List(context.Context) ([]tag.Tag, error)               { return nil, nil }
func (f *fakeTags) Update(context.Context, *tag.Tag) error                { return nil }
func (f *fakeTags) Delete(context.Context, int64) error                   { return nil }

func (f *fakeTags) GetByIDs(_ context.Context, ids []int64) ([]tag.Tag, error) {
	var out []tag.Tag
	for _, id := range ids {
		if t, ok := f.byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu     sync.Mutex
	bySlug map[string]*post.Post
	sets   int
	hits   int
}

func newFakeCache() *fakeCache { return &fakeCache{bySlug: map[string]*post.Post{}} }

func (f *fakeCache) Get(_ context.Context, slug string) (*post.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.bySlug[slug]; ok {
		f.hits++
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCache) Set(_ context.Context, p *post.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.bySlug[p.Slug] = &cp
	f.sets++
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bySlug, slug)
	return nil
}

func author() *user.User {
	return &user.User{ID: 1, Username: "ada", Role: user.RoleUser, IsActive: true}
}

func admin() *user.User {
	return &user.User{ID: 99, Username: "root", Role: user.RoleAdmin, IsActive: true}
}

func newPostFixture() (*Usecase, *fakePosts, *fakeCache, *fakeLikes) {
	posts := newFakePosts()
	cache := newFakeCache()
	likes := newFakeLikes()
	tags := &fakeTags{byID: map[int64]tag.Tag{
		1: {ID: 1, Name: "Go", Slug: "go"},
		2: {ID: 2, Name: "Databases", Slug: "databases"},
	}}
	uc := NewUseCase(posts, likes, tags, cache, zap.NewNop())
	return uc, posts, cache, likes
}

func TestCreateSlugAndExcerpt(t *testing.T) {
	t.Parallel()
	uc, _, _, _ := newPostFixture()
	ctx := context.Background()

	p1, err := uc.Create(ctx, author(), Input{Title: "Hello, World!", Content: "short body"})
	require.NoError(t, err)
	require.Equal(t, "hello-world", p1.Slug)
	require.Equal(t, "short body", p1.Excerpt)
	require.Equal(t, post.StatusDraft, p1.Status)
	require.Nil(t, p1.PublishedAt)

	// same title gets a numbered slug
	p2, err := uc.Create(ctx, author(), Input{Title: "Hello, World!", Content: "x"})
	require.NoError(t, err)
	require.Equal(t, "hello-world-2", p2.Slug)

	long := strings.Repeat("a", 500)
	p3, err := uc.Create(ctx, author(), Input{Title: "Long", Content: long})
	require.NoError(t, err)
	require.Len(t, []rune(p3.Excerpt), excerptLimit)
	require.True(t, strings.HasSuffix(p3.Excerpt, "..."))
}

func TestCreatePublished(t *testing.T) {
	t.Parallel()
	uc, _, _, _ := newPostFixture()

	p, err := uc.Create(context.Background(), author(), Input{
		Title: "Launch", Content: "body", Status: post.StatusPublished, TagIDs: []int64{1, 2},
	})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)

	_, err = uc.Create(context.Background(), author(), Input{
		Title: "Bad tags", Content: "body", TagIDs: []int64{1, 42},
	})
	require.ErrorIs(t, err, ErrTagNotFound)
}

func TestGetBySlug(t *testing.T) {
	t.Parallel()
	uc, posts, cache, _ := newPostFixture()
	ctx := context.Background()

	pub, err := uc.Create(ctx, author(), Input{Title: "Public", Content: "body", Status: post.StatusPublished})
	require.NoError(t, err)
	draft, err := uc.Create(ctx, author(), Input{Title: "Secret", Content: "body"})
	require.NoError(t, err)

	// published: served, cached, view counted
	got, err := uc.GetBySlug(ctx, pub.Slug, nil)
	require.NoError(t, err)
	require.Equal(t, pub.ID, got.ID)
	require.Equal(t, 1, cache.sets)
	require.Equal(t, 1, posts.views[pub.ID])

	// second read comes from cache but still counts the view
	_, err = uc.GetBySlug(ctx, pub.Slug, nil)
	require.NoError(t, err)
	require.Equal(t, 1, cache.hits)
	require.Equal(t, 2, posts.views[pub.ID])

	// drafts hide from strangers, show to author and admin
	_, err = uc.GetBySlug(ctx, draft.Slug, nil)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = uc.GetBySlug(ctx, draft.Slug, &user.User{ID: 7, Role: user.RoleUser})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = uc.GetBySlug(ctx, draft.Slug, author())
	require.NoError(t, err)
	_, err = uc.GetBySlug(ctx, draft.Slug, admin())
	require.NoError(t, err)
	require.Equal(t, 0, posts.views[draft.ID])
}

func TestUpdatePermissions(t *testing.T) {
	t.Parallel()
	uc, _, cache, _ := newPostFixture()
	ctx := context.Background()

	p, err := uc.Create(ctx, author(), Input{Title: "Mine", Content: "body", Status: post.StatusPublished})
	require.NoError(t, err)
	_, err = uc.GetBySlug(ctx, p.Slug, nil)
	require.NoError(t, err)
	require.Len(t, cache.bySlug, 1)

	stranger := &user.User{ID: 7, Role: user.RoleUser}
	_, err = uc.Update(ctx, stranger, p.ID, Update{})
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, uc.Delete(ctx, stranger, p.ID), ErrForbidden)

	newTitle := "Renamed"
	updated, err := uc.Update(ctx, author(), p.ID, Update{Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Slug)
	// old cache entry dropped on rename
	require.Empty(t, cache.bySlug)

	require.NoError(t, uc.Delete(ctx, admin(), p.ID))
	_, err = uc.Update(ctx, author(), p.ID, Update{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPublishSetsTimestampOnce(t *testing.T) {
	t.Parallel()
	uc, _, _, _ := newPostFixture()
	ctx := context.Background()

	p, err := uc.Create(ctx, author(), Input{Title: "Draft first", Content: "body"})
	require.NoError(t, err)
	require.Nil(t, p.PublishedAt)

	published := post.StatusPublished
	p, err = uc.Update(ctx, author(), p.ID, Update{Status: &published})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	first := *p.PublishedAt

	draft := post.StatusDraft
	p, err = uc.Update(ctx, author(), p.ID, Update{Status: &draft})
	require.NoError(t, err)

	p, err = uc.Update(ctx, author(), p.ID, Update{Status: &published})
	require.NoError(t, err)
	require.Equal(t, first, *p.PublishedAt)
}

func TestToggleLike(t *testing.T) {
	t.Parallel()
	uc, _, _, likes := newPostFixture()
	ctx := context.Background()

	p, err := uc.Create(ctx, author(), Input{Title: "Likeable", Content: "body", Status: post.StatusPublished})
	require.NoError(t, err)

	u := &user.User{ID: 5, Role: user.RoleUser}
	liked, err := uc.ToggleLike(ctx, u, p.ID)
	require.NoError(t, err)
	require.True(t, liked)

	on, err := likes.Exists(ctx, p.ID, u.ID)
	require.NoError(t, err)
	require.True(t, on)

	liked, err = uc.ToggleLike(ctx, u, p.ID)
	require.NoError(t, err)
	require.False(t, liked)

	_, err = uc.ToggleLike(ctx, u, 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListVisibility(t *testing.T) {
	t.Parallel()
	uc, _, _, _ := newPostFixture()
	ctx := context.Background()

	_, err := uc.Create(ctx, author(), Input{Title: "Pub", Content: "b", Status: post.StatusPublished})
	require.NoError(t, err)
	_, err = uc.Create(ctx, author(), Input{Title: "Dra", Content: "b"})
	require.NoError(t, err)

	// anonymous sees published only
	out, total, err := uc.List(ctx, post.Filter{}.Normalized(), nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, out, 1)

	// author asking for drafts is scoped to their own
	f := post.Filter{Status: post.StatusDraft}.Normalized()
	_, total, err = uc.List(ctx, f, author())
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	// admin sees everything
	_, total, err = uc.List(ctx, post.Filter{}.Normalized(), admin())
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}
