package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidAuthProvider = errors.New("core: invalid auth provider")
	ErrInvalidRole         = errors.New("core: invalid role")
)

type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
	ProviderKakao  AuthProvider = "kakao"
)

func ParseAuthProvider(raw string) (AuthProvider, error) {
	normalized := AuthProvider(strings.TrimSpace(strings.ToLower(raw)))
	if err := normalized.Validate(); err != nil {
		return "", err
	}
	return normalized, nil
}

func (p AuthProvider) Validate() error {
	switch p {
	case ProviderGoogle, ProviderKakao:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAuthProvider, string(p))
	}
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
	}
}

// Account is a local identity federated from an OAuth2 provider. The pair
// (Provider, ProviderSubjectID) and the email are each unique across the
// account store.
type Account struct {
	ID                string
	Email             string
	DisplayName       string
	AvatarURL         string
	Provider          AuthProvider
	ProviderSubjectID string
	Role              Role
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WithProfile returns a copy with the mutable profile fields replaced. The
// receiver is left untouched so reconciliation stays referentially
// transparent.
func (a Account) WithProfile(displayName string, avatarURL string, now time.Time) Account {
	updated := a
	updated.DisplayName = strings.TrimSpace(displayName)
	updated.AvatarURL = strings.TrimSpace(avatarURL)
	updated.UpdatedAt = now
	return updated
}

// Profile is the canonical shape extracted from a provider attribute set.
type Profile struct {
	Provider    AuthProvider
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
}

func (p Profile) Validate() error {
	if err := p.Provider.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.SubjectID) == "" {
		return fmt.Errorf("core: profile subject id is required")
	}
	return nil
}

// RefreshToken is a long-lived, store-tracked opaque credential. Once revoked
// (by rotation, expiry detection, or logout) it never becomes usable again;
// records are retained for replay detection rather than deleted.
type RefreshToken struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

func (t RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && !t.Expired(now)
}

// TokenPair is the credential set returned to callers after federation or
// rotation. ExpiresIn is the access token lifetime in milliseconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AccountView is the read-only projection exposed to transport layers.
type AccountView struct {
	ID          string
	Email       string
	DisplayName string
	AvatarURL   string
	Provider    AuthProvider
	Role        Role
	CreatedAt   time.Time
}

func NewAccountView(account Account) AccountView {
	return AccountView{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		AvatarURL:   account.AvatarURL,
		Provider:    account.Provider,
		Role:        account.Role,
		CreatedAt:   account.CreatedAt,
	}
}
