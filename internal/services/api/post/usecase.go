package post

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/NordCoder/Inkwell/internal/domain/post"
	"github.com/NordCoder/Inkwell/internal/domain/tag"
	"github.com/NordCoder/Inkwell/internal/domain/user"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("post not found")
	ErrForbidden   = errors.New("not allowed to modify this post")
	ErrTagNotFound = errors.New("unknown tag")
)

const excerptLimit = 200

// Cache is the read-through cache for published posts keyed by slug.
type Cache interface {
	Get(ctx context.Context, slug string) (*post.Post, error)
	Set(ctx context.Context, p *post.Post) error
	Invalidate(ctx context.Context, slug string) error
}

type Input struct {
	Title           string
	Content         string
	Excerpt         string
	CoverImage      string
	Status          post.Status
	TagIDs          []int64
	MetaTitle       string
	MetaDescription string
}

type Update struct {
	Title           *string
	Content         *string
	Excerpt         *string
	CoverImage      *string
	Status          *post.Status
	TagIDs          *[]int64
	MetaTitle       *string
	MetaDescription *string
}

type Usecase struct {
	posts post.Repo
	likes post.LikeRepo
	tags  tag.Repo
	cache Cache
	log   *zap.Logger
	now   func() time.Time
}

func NewUseCase(posts post.Repo, likes post.LikeRepo, tags tag.Repo, cache Cache, log *zap.Logger) *Usecase {
	return &Usecase{
		posts: posts, likes: likes, tags: tags, cache: cache, log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) Create(ctx context.Context, author *user.User, in Input) (*post.Post, error) {
	if in.Status == "" {
		in.Status = post.StatusDraft
	}
	if err := u.checkTags(ctx, in.TagIDs); err != nil {
		return nil, err
	}

	s, err := u.uniqueSlug(ctx, in.Title, 0)
	if err != nil {
		return nil, err
	}

	p := &post.Post{
		AuthorID:        author.ID,
		Title:           in.Title,
		Slug:            s,
		Content:         in.Content,
		Excerpt:         in.Excerpt,
		CoverImage:      in.CoverImage,
		Status:          in.Status,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
	}
	if p.Excerpt == "" {
		p.Excerpt = makeExcerpt(in.Content)
	}
	if p.Status == post.StatusPublished {
		now := u.now()
		p.PublishedAt = &now
	}
	if err := u.posts.Create(ctx, p, in.TagIDs); err != nil {
		return nil, err
	}
	return u.posts.GetByID(ctx, p.ID)
}

// GetBySlug serves published posts through the cache and counts the view.
// Drafts are only visible to their author or an admin and bypass the cache.
func (u *Usecase) GetBySlug(ctx context.Context, slug string, viewer *user.User) (*post.Post, error) {
	if cached, err := u.cache.Get(ctx, slug); err != nil {
		u.log.Warn("post cache read failed", zap.Error(err))
	} else if cached != nil && cached.IsPublished() {
		u.countView(ctx, cached.ID)
		return cached, nil
	}

	p, err := u.posts.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.IsPublished() && !canEdit(viewer, p) {
		return nil, ErrNotFound
	}
	if p.IsPublished() {
		if err := u.cache.Set(ctx, p); err != nil {
			u.log.Warn("post cache write failed", zap.Error(err))
		}
		u.countView(ctx, p.ID)
	}
	return p, nil
}

func (u *Usecase) List(ctx context.Context, f post.Filter, viewer *user.User) ([]*post.Post, int64, error) {
	// Only staff and the author themselves may browse drafts.
	if f.Status != post.StatusPublished {
		if viewer == nil {
			f.Status = post.StatusPublished
		} else if !viewer.IsAdmin() {
			f.AuthorID = viewer.ID
		}
	}
	return u.posts.List(ctx, f)
}

func (u *Usecase) Update(ctx context.Context, actor *user.User, id int64, in Update) (*post.Post, error) {
	p, err := u.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canEdit(actor, p) {
		return nil, ErrForbidden
	}

	oldSlug := p.Slug
	if in.Title != nil && *in.Title != p.Title {
		p.Title = *in.Title
		if p.Slug, err = u.uniqueSlug(ctx, p.Title, p.ID); err != nil {
			return nil, err
		}
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if p.Excerpt == "" {
		p.Excerpt = makeExcerpt(p.Content)
	}
	if in.CoverImage != nil {
		p.CoverImage = *in.CoverImage
	}
	if in.MetaTitle != nil {
		p.MetaTitle = *in.MetaTitle
	}
	if in.MetaDescription != nil {
		p.MetaDescription = *in.MetaDescription
	}
	if in.Status != nil && *in.Status != p.Status {
		p.Status = *in.Status
		if p.Status == post.StatusPublished && p.PublishedAt == nil {
			now := u.now()
			p.PublishedAt = &now
		}
	}

	var tagIDs []int64
	if in.TagIDs != nil {
		tagIDs = *in.TagIDs
		if tagIDs == nil {
			tagIDs = []int64{}
		}
		if err := u.checkTags(ctx, tagIDs); err != nil {
			return nil, err
		}
	}

	if err := u.posts.Update(ctx, p, tagIDs); err != nil {
		return nil, err
	}
	u.invalidate(ctx, oldSlug, p.Slug)
	return u.posts.GetByID(ctx, p.ID)
}

func (u *Usecase) Delete(ctx context.Context, actor *user.User, id int64) error {
	p, err := u.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !canEdit(actor, p) {
		return ErrForbidden
	}
	if err := u.posts.Delete(ctx, id); err != nil {
		return err
	}
	u.invalidate(ctx, p.Slug)
	return nil
}

// ToggleLike flips the like for (post, user) and reports the new state.
func (u *Usecase) ToggleLike(ctx context.Context, actor *user.User, postID int64) (liked bool, err error) {
	p, err := u.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	exists, err := u.likes.Exists(ctx, postID, actor.ID)
	if err != nil {
		return false, err
	}
	if exists {
		err = u.likes.Remove(ctx, postID, actor.ID)
	} else {
		err = u.likes.Add(ctx, postID, actor.ID)
	}
	if err != nil {
		return false, err
	}
	u.invalidate(ctx, p.Slug)
	return !exists, nil
}

func (u *Usecase) checkTags(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := u.tags.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(dedupe(ids)) {
		return ErrTagNotFound
	}
	return nil
}

// uniqueSlug slugifies title and appends -2, -3, ... until no other post
// holds the result.
func (u *Usecase) uniqueSlug(ctx context.Context, title string, excludeID int64) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "post"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := u.posts.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("slug check: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

func (u *Usecase) countView(ctx context.Context, id int64) {
	if err := u.posts.IncrementViews(ctx, id); err != nil {
		u.log.Warn("view increment failed", zap.Int64("post_id", id), zap.Error(err))
	}
}

func (u *Usecase) invalidate(ctx context.Context, slugs ...string) {
	seen := map[string]struct{}{}
	for _, s := range slugs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		if err := u.cache.Invalidate(ctx, s); err != nil {
			u.log.Warn("post cache invalidate failed", zap.String("slug", s), zap.Error(err))
		}
	}
}

func canEdit(actor *user.User, p *post.Post) bool {
	return actor != nil && (actor.IsAdmin() || actor.ID == p.AuthorID)
}

func makeExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLimit {
		return content
	}
	return string(runes[:excerptLimit-3]) + "..."
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
