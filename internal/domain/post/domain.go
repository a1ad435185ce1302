package post

import (
	"time"

	"github.com/NordCoder/Inkwell/internal/domain/tag"
	"github.com/NordCoder/Inkwell/internal/domain/user"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Post struct {
	ID              int64      `json:"id"`
	AuthorID        int64      `json:"author_id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content,omitempty"`
	Excerpt         string     `json:"excerpt,omitempty"`
	CoverImage      string     `json:"cover_image,omitempty"`
	Status          Status     `json:"status"`
	ViewCount       int64      `json:"view_count"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Author        *user.User `json:"author,omitempty"`
	Tags          []tag.Tag  `json:"tags"`
	LikesCount    int64      `json:"likes_count"`
	CommentsCount int64      `json:"comments_count"`
}

func (p *Post) IsPublished() bool { return p.Status == StatusPublished }

// Filter narrows List results. Zero values mean "no filter".
type Filter struct {
	Page     int
	PerPage  int
	Status   Status
	AuthorID int64
	TagSlug  string
	Search   string
}

func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 50 {
		f.PerPage = 50
	}
	return f
}
