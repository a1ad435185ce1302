package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/Inkwell/internal/auth"
	"github.com/NordCoder/Inkwell/internal/domain/event"
	"github.com/NordCoder/Inkwell/internal/domain/outbox"
	"github.com/NordCoder/Inkwell/internal/domain/user"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrUserInactive        = errors.New("user account is disabled")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailExists         = errors.New("email already registered")
	ErrUsernameExists      = errors.New("username already taken")
	ErrWeakPassword        = errors.New("password is too weak")
	ErrInvalidVerification = errors.New("invalid verification token")
	ErrAlreadyVerified     = errors.New("email already verified")
)

type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Usecase struct {
	users   user.Repo
	codec   *auth.Codec
	revoked auth.RevocationStore
	outbox  outbox.Repository
	tx      pg.Transactor
	cfg     Config
}

func NewUseCase(
	users user.Repo,
	codec *auth.Codec,
	revoked auth.RevocationStore,
	ob outbox.Repository,
	tx pg.Transactor,
	cfg Config,
) *Usecase {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Usecase{users: users, codec: codec, revoked: revoked, outbox: ob, tx: tx, cfg: cfg}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (u *Usecase) Register(ctx context.Context, email, username, password string) (*user.User, *TokenPair, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if len(password) < 8 {
		return nil, nil, ErrWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	newUser := &user.User{
		Email:             email,
		Username:          username,
		PasswordHash:      hash,
		Role:              user.RoleUser,
		IsActive:          true,
		VerificationToken: uuid.NewString(),
	}

	err = u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.users.Create(ctx, newUser); err != nil {
			return err
		}
		return u.enqueueVerification(ctx, newUser)
	})
	if err != nil {
		if errors.Is(err, pg.ErrConflict) {
			if _, e := u.users.GetByEmail(ctx, email); e == nil {
				return nil, nil, ErrEmailExists
			}
			return nil, nil, ErrUsernameExists
		}
		return nil, nil, err
	}

	pair, err := u.issuePair(newUser)
	if err != nil {
		return nil, nil, err
	}
	return newUser, pair, nil
}

func (u *Usecase) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	rec, err := u.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, rec.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !rec.IsActive {
		return nil, nil, ErrUserInactive
	}
	pair, err := u.issuePair(rec)
	if err != nil {
		return nil, nil, err
	}
	return rec, pair, nil
}

// Authenticate resolves a bearer access token into the user it belongs to.
func (u *Usecase) Authenticate(ctx context.Context, token string) (*user.User, error) {
	claims, err := u.decode(token, auth.TokenAccess)
	if err != nil {
		return nil, err
	}
	if err := u.ensureNotRevoked(ctx, token); err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	rec, err := u.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !rec.IsActive {
		return nil, ErrUserInactive
	}
	return rec, nil
}

// Refresh trades a live refresh token for a new pair. The presented token
// is revoked first, so each refresh token works exactly once.
func (u *Usecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := u.decode(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, err
	}
	if err := u.ensureNotRevoked(ctx, refreshToken); err != nil {
		return nil, err
	}
	if err := u.revoked.Revoke(ctx, refreshToken, u.codec.RemainingTTL(refreshToken)); err != nil {
		return nil, fmt.Errorf("revoke refresh: %w", err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	rec, err := u.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !rec.IsActive {
		return nil, ErrUserInactive
	}
	return u.issuePair(rec)
}

// Logout blacklists both tokens for the rest of their lifetime. Tokens that
// are already expired or malformed are ignored, so repeated logouts succeed.
func (u *Usecase) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, t := range []string{accessToken, refreshToken} {
		if t == "" {
			continue
		}
		if err := u.revoked.Revoke(ctx, t, u.codec.RemainingTTL(t)); err != nil {
			return fmt.Errorf("revoke on logout: %w", err)
		}
	}
	return nil
}

func (u *Usecase) VerifyEmail(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrInvalidVerification
	}
	rec, err := u.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrInvalidVerification
		}
		return nil, err
	}
	rec.IsVerified = true
	rec.VerificationToken = ""
	if err := u.users.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *Usecase) ResendVerification(ctx context.Context, email string) error {
	rec, err := u.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if rec.IsVerified {
		return ErrAlreadyVerified
	}
	rec.VerificationToken = uuid.NewString()
	return u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.users.Update(ctx, rec); err != nil {
			return err
		}
		return u.enqueueVerification(ctx, rec)
	})
}

func (u *Usecase) enqueueVerification(ctx context.Context, rec *user.User) error {
	payload, err := json.Marshal(event.VerificationEmail{
		UserID:   rec.ID,
		Email:    rec.Email,
		Username: rec.Username,
		Token:    rec.VerificationToken,
	})
	if err != nil {
		return fmt.Errorf("marshal verification payload: %w", err)
	}
	key := "verification:" + strconv.FormatInt(rec.ID, 10) + ":" + rec.VerificationToken
	if err := u.outbox.Enqueue(ctx, key, outbox.KindVerificationEmail, payload); err != nil {
		return fmt.Errorf("enqueue verification: %w", err)
	}
	return nil
}

func (u *Usecase) issuePair(rec *user.User) (*TokenPair, error) {
	sub := strconv.FormatInt(rec.ID, 10)
	access, err := u.codec.Issue(sub, auth.TokenAccess, u.cfg.AccessTTL, string(rec.Role))
	if err != nil {
		return nil, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := u.codec.Issue(sub, auth.TokenRefresh, u.cfg.RefreshTTL, string(rec.Role))
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (u *Usecase) decode(token string, want auth.TokenType) (*auth.Claims, error) {
	claims, err := u.codec.Decode(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (u *Usecase) ensureNotRevoked(ctx context.Context, token string) error {
	revoked, err := u.revoked.IsRevoked(ctx, token)
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}
