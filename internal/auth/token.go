package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrNoSecret     = errors.New("token secret is empty")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the fixed claim set carried by every token. Role is the open
// extension claim; refresh tokens additionally carry a random jti so a single
// rotation can be tracked in the revocation store.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"type"`
	Role      string    `json:"role,omitempty"`
}

// Codec signs and verifies the compact HS256 tokens used for sessions. It is
// stateless: revocation is the session manager's concern, not the codec's.
type Codec struct {
	secret []byte
	now    func() time.Time
}

type CodecConfig struct {
	Secret []byte
	Now    func() time.Time
}

func NewCodec(cfg CodecConfig) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrNoSecret
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Codec{secret: cfg.Secret, now: now}, nil
}

// Issue builds and signs a token for subject. Refresh tokens get a random
// unique id (uuid v4, url-safe) to support fine-grained revocation.
func (c *Codec) Issue(subject string, typ TokenType, ttl time.Duration, role string) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: typ,
		Role:      role,
	}
	if typ == TokenRefresh {
		claims.ID = uuid.NewString()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Decode verifies signature and expiry and returns the typed claims.
// It reports ErrTokenExpired for a natural TTL lapse and ErrTokenInvalid for
// everything else (malformed structure, bad signature, wrong algorithm).
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != TokenAccess && claims.TokenType != TokenRefresh {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// RemainingTTL returns how long the token stays valid, used as the TTL for
// revocation entries. Invalid or already expired tokens yield 0, never a
// negative duration.
func (c *Codec) RemainingTTL(token string) time.Duration {
	claims, err := c.Decode(token)
	if err != nil {
		return 0
	}
	remaining := claims.ExpiresAt.Time.Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
