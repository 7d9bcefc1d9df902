package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// AccessClaims is the verified claim set carried by an access token.
type AccessClaims struct {
	AccountID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type accessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type CodecOption func(*AccessTokenCodec)

func WithCodecClock(now func() time.Time) CodecOption {
	return func(c *AccessTokenCodec) {
		if c == nil || now == nil {
			return
		}
		c.now = now
	}
}

// AccessTokenCodec signs and verifies HS256 access tokens. The key is fixed
// at construction and never mutated, so a single codec is safe for concurrent
// use without synchronization.
type AccessTokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAccessTokenCodec(secret string, ttl time.Duration, options ...CodecOption) (*AccessTokenCodec, error) {
	if len(strings.TrimSpace(secret)) < minSigningSecretBytes {
		return nil, fmt.Errorf("core: token codec secret must be at least %d bytes", minSigningSecretBytes)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("core: token codec ttl must be positive")
	}
	codec := &AccessTokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(codec)
		}
	}
	return codec, nil
}

func (c *AccessTokenCodec) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

func (c *AccessTokenCodec) Issue(accountID string, email string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("core: token codec is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", fmt.Errorf("core: account id is required to issue an access token")
	}

	now := c.now()
	claims := accessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Email: strings.TrimSpace(email),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("core: sign access token: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry against the codec clock. The
// failure kinds are distinguished for diagnostics; callers treat them all as
// an unauthenticated request.
func (c *AccessTokenCodec) Verify(token string) (AccessClaims, error) {
	if c == nil {
		return AccessClaims{}, newAuthError("token codec is not configured", goerrors.CategoryInternal, AuthErrorInternal)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return AccessClaims{}, newAuthError("access token is empty", goerrors.CategoryAuth, AuthErrorTokenMalformed)
	}

	parsed := accessTokenClaims{}
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return AccessClaims{}, mapAccessTokenError(err)
	}

	if strings.TrimSpace(parsed.Subject) == "" {
		return AccessClaims{}, newAuthError("access token claims are empty", goerrors.CategoryAuth, AuthErrorClaimsEmpty)
	}

	claims := AccessClaims{
		AccountID: strings.TrimSpace(parsed.Subject),
		Email:     strings.TrimSpace(parsed.Email),
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}

func mapAccessTokenError(err error) *goerrors.Error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return newAuthError("access token has expired", goerrors.CategoryAuth, AuthErrorTokenExpired)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return newAuthError("access token signature is invalid", goerrors.CategoryAuth, AuthErrorSignatureInvalid)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return newAuthError("access token format is unsupported", goerrors.CategoryAuth, AuthErrorTokenUnsupported)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newAuthError("access token is malformed", goerrors.CategoryAuth, AuthErrorTokenMalformed)
	default:
		return newAuthError("access token is invalid: "+err.Error(), goerrors.CategoryAuth, AuthErrorTokenMalformed)
	}
}
