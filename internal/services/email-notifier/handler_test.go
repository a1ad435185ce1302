package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NordCoder/Inkwell/internal/domain/event"
	"github.com/NordCoder/Inkwell/internal/domain/notification"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"
	"github.com/NordCoder/Inkwell/internal/services/email-notifier/repo"

	"github.com/NordCoder/Inkwell/internal/domain/user"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeUsers struct {
	byID map[int64]*user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pg.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(context.Context, *user.User) error { return nil }
func (f *fakeUsers) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, pg.ErrNotFound
}
func (f *fakeUsers) GetByUsername(context.Context, string) (*user.User, error) {
	return nil, pg.ErrNotFound
}
func (f *fakeUsers) GetByVerificationToken(context.Context, string) (*user.User, error) {
	return nil, pg.ErrNotFound
}
func (f *fakeUsers) Update(context.Context, *user.User) error { return nil }

type fakeNotifs struct {
	rows []*notification.Notification
	fail error
}

func (f *fakeNotifs) Create(_ context.Context, n *notification.Notification) error {
	if f.fail != nil {
		return f.fail
	}
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotifs) ListByUser(context.Context, int64, int) ([]*notification.Notification, error) {
	return nil, nil
}

type fakeSender struct {
	to, subject, body string
	fail              error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if f.fail != nil {
		return f.fail
	}
	f.to, f.subject, f.body = to, subject, body
	return nil
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func newTestHandler(users *fakeUsers, notifs *fakeNotifs, out *fakeSender, log *zap.Logger) *Handler {
	return &Handler{
		Users:     repo.UserReader{R: users},
		Store:     repo.NotificationRepo{R: notifs},
		Out:       out,
		Clock:     fixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
		VerifyURL: "http://localhost:8080/api/v1/auth/verify",
		Log:       log,
	}
}

func TestHandleVerificationEmail(t *testing.T) {
	users := &fakeUsers{byID: map[int64]*user.User{
		7: {ID: 7, Email: "bob@example.com", Username: "bob"},
	}}
	notifs := &fakeNotifs{}
	out := &fakeSender{}
	h := newTestHandler(users, notifs, out, zap.NewNop())

	err := h.HandleVerificationEmail(context.Background(), event.VerificationEmail{
		UserID: 7, Email: "bob@example.com", Username: "bob", Token: "tok-123",
	})
	require.NoError(t, err)

	require.Equal(t, "bob@example.com", out.to)
	require.Equal(t, "Confirm your email", out.subject)
	require.Contains(t, out.body, "bob")
	require.Contains(t, out.body, "http://localhost:8080/api/v1/auth/verify?token=tok-123")

	require.Len(t, notifs.rows, 1)
	require.Equal(t, int64(7), notifs.rows[0].UserID)
	require.Equal(t, "email", notifs.rows[0].Type)
	require.Equal(t, out.body, notifs.rows[0].Payload)
}

func TestHandleVerificationEmail_SkipsVerified(t *testing.T) {
	users := &fakeUsers{byID: map[int64]*user.User{
		7: {ID: 7, Email: "bob@example.com", Username: "bob", IsVerified: true},
	}}
	notifs := &fakeNotifs{}
	out := &fakeSender{}
	h := newTestHandler(users, notifs, out, zap.NewNop())

	err := h.HandleVerificationEmail(context.Background(), event.VerificationEmail{
		UserID: 7, Token: "tok-123",
	})
	require.NoError(t, err)
	require.Empty(t, out.to)
	require.Empty(t, notifs.rows)
}

func TestHandleVerificationEmail_SendFailure(t *testing.T) {
	users := &fakeUsers{byID: map[int64]*user.User{
		7: {ID: 7, Email: "bob@example.com", Username: "bob"},
	}}
	notifs := &fakeNotifs{}
	out := &fakeSender{fail: errors.New("smtp down")}
	h := newTestHandler(users, notifs, out, zap.NewNop())

	err := h.HandleVerificationEmail(context.Background(), event.VerificationEmail{
		UserID: 7, Token: "tok-123",
	})
	require.Error(t, err)
	require.Empty(t, notifs.rows)
}

func TestHandleVerificationEmail_StoreFailureIsLoggedNotFatal(t *testing.T) {
	users := &fakeUsers{byID: map[int64]*user.User{
		7: {ID: 7, Email: "bob@example.com", Username: "bob"},
	}}
	notifs := &fakeNotifs{fail: errors.New("db down")}
	out := &fakeSender{}
	core, logged := observer.New(zap.WarnLevel)
	h := newTestHandler(users, notifs, out, zap.New(core))

	err := h.HandleVerificationEmail(context.Background(), event.VerificationEmail{
		UserID: 7, Token: "tok-123",
	})
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", out.to)

	entries := logged.FilterMessage("store notification").All()
	require.Len(t, entries, 1)
}
