package notifier

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/NordCoder/Inkwell/internal/domain/event"
	"github.com/NordCoder/Inkwell/internal/domain/notification"
	"github.com/NordCoder/Inkwell/internal/services/email-notifier/repo"

	"go.uber.org/zap"
)

type Handler struct {
	Users     repo.UserReader
	Store     repo.NotificationRepo
	Out       notification.EmailSender
	Clock     notification.Clock
	VerifyURL string
	Log       *zap.Logger
}

func (h *Handler) HandleVerificationEmail(ctx context.Context, ev event.VerificationEmail) error {
	u, err := h.Users.GetByID(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u.IsVerified {
		h.Log.Debug("user already verified, skipping", zap.Int64("user_id", u.ID))
		return nil
	}

	link := h.verifyLink(ev.Token)
	subject := "Confirm your email"
	body := fmt.Sprintf(
		"Hi %s!\n\nWelcome aboard. Confirm your email address by opening the link below:\n\n%s\n\nIf you didn't sign up, just ignore this message.",
		ev.Username, link,
	)

	if err := h.Out.Send(ctx, u.Email, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if err := h.Store.Create(ctx, &notification.Notification{
		UserID:  u.ID,
		Type:    "email",
		SentAt:  h.Clock.Now().UTC(),
		Payload: body,
	}); err != nil {
		h.Log.Warn("store notification", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	return nil
}

func (h *Handler) verifyLink(token string) string {
	base := strings.TrimRight(h.VerifyURL, "/")
	return base + "?token=" + url.QueryEscape(token)
}
