package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/Inkwell/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, email, username, password_hash, role, avatar_url, bio,
       is_active, is_verified, verification_token, created_at, updated_at`

const (
	qUserInsert = `
INSERT INTO users (email, username, password_hash, role, verification_token)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userCols + `;`

	qUserByID = `
SELECT ` + userCols + `
FROM users
WHERE id = $1;`

	qUserByEmail = `
SELECT ` + userCols + `
FROM users
WHERE email = $1;`

	qUserByUsername = `
SELECT ` + userCols + `
FROM users
WHERE username = $1;`

	qUserByVerification = `
SELECT ` + userCols + `
FROM users
WHERE verification_token = $1;`

	qUserUpdate = `
UPDATE users
SET email              = $2,
    username           = $3,
    password_hash      = $4,
    role               = $5,
    avatar_url         = $6,
    bio                = $7,
    is_active          = $8,
    is_verified        = $9,
    verification_token = $10,
    updated_at         = NOW()
WHERE id = $1
RETURNING ` + userCols + `;`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if err := scanUser(eq.QueryRow(ctx, qUserInsert,
		u.Email, u.Username, u.PasswordHash, u.Role, nullStr(u.VerificationToken)), u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, qUserByID, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, qUserByEmail, email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, qUserByUsername, username)
}

func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	return r.getOne(ctx, qUserByVerification, token)
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if err := scanUser(eq.QueryRow(ctx, qUserUpdate,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Role,
		nullStr(u.AvatarURL), nullStr(u.Bio),
		u.IsActive, u.IsVerified, nullStr(u.VerificationToken)), u); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, query, arg), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUser(row pgx.Row, out *user.User) error {
	var avatar, bio, verification *string
	if err := row.Scan(
		&out.ID, &out.Email, &out.Username, &out.PasswordHash, &out.Role,
		&avatar, &bio, &out.IsActive, &out.IsVerified, &verification,
		&out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	out.AvatarURL = deref(avatar)
	out.Bio = deref(bio)
	out.VerificationToken = deref(verification)
	return nil
}
