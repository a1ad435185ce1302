package comment

import (
	"time"

	"github.com/NordCoder/Inkwell/internal/domain/user"
)

type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"post_id"`
	UserID     int64     `json:"user_id"`
	ParentID   *int64    `json:"parent_id,omitempty"`
	Content    string    `json:"content"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User    *user.User `json:"user,omitempty"`
	Replies []*Comment `json:"replies,omitempty"`
}
