package repo

import (
	"context"

	"github.com/NordCoder/Inkwell/internal/domain/notification"
	"github.com/NordCoder/Inkwell/internal/domain/user"
)

type UserReader struct{ R user.Repo }
type NotificationRepo struct{ R notification.Repo }

func (a UserReader) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := a.R.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user.User{ID: u.ID, Email: u.Email, Username: u.Username, IsVerified: u.IsVerified}, nil
}

func (a NotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	return a.R.Create(ctx, &notification.Notification{
		UserID: n.UserID, Type: n.Type, SentAt: n.SentAt, Payload: n.Payload,
	})
}
