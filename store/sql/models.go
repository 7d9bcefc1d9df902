package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type accountRecord struct {
	bun.BaseModel `bun:"table:auth_accounts,alias:aa"`

	ID                string    `bun:"id,pk"`
	Email             string    `bun:"email,notnull,unique"`
	DisplayName       string    `bun:"display_name,notnull"`
	AvatarURL         *string   `bun:"avatar_url"`
	Provider          string    `bun:"provider,notnull,unique:ux_auth_accounts_provider_subject"`
	ProviderSubjectID string    `bun:"provider_subject_id,notnull,unique:ux_auth_accounts_provider_subject"`
	Role              string    `bun:"role,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type refreshTokenRecord struct {
	bun.BaseModel `bun:"table:auth_refresh_tokens,alias:art"`

	ID               string    `bun:"id,pk"`
	AccountID        string    `bun:"account_id,notnull"`
	Token            string    `bun:"token,notnull,unique"`
	ExpiresAt        time.Time `bun:"expires_at,notnull"`
	Revoked          bool      `bun:"revoked,notnull"`
	RevocationReason string    `bun:"revocation_reason"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
