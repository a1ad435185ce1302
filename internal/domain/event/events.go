package event

import "context"

// VerificationEmail asks the notifier to send a signup confirmation
// to a freshly registered (or re-requesting) user.
type VerificationEmail struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type UserEvents interface {
	PublishVerificationEmail(ctx context.Context, ev VerificationEmail) error
}
