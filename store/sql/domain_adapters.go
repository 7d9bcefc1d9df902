package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-authkit/core"
)

func newAccountRecord(account core.Account, now time.Time) *accountRecord {
	record := &accountRecord{
		ID:                strings.TrimSpace(account.ID),
		Email:             strings.TrimSpace(account.Email),
		DisplayName:       strings.TrimSpace(account.DisplayName),
		Provider:          string(account.Provider),
		ProviderSubjectID: strings.TrimSpace(account.ProviderSubjectID),
		Role:              string(account.Role),
		CreatedAt:         account.CreatedAt,
		UpdatedAt:         account.UpdatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}
	if avatar := strings.TrimSpace(account.AvatarURL); avatar != "" {
		record.AvatarURL = &avatar
	}
	return record
}

func (r *accountRecord) toDomain() core.Account {
	if r == nil {
		return core.Account{}
	}
	account := core.Account{
		ID:                r.ID,
		Email:             r.Email,
		DisplayName:       r.DisplayName,
		Provider:          core.AuthProvider(r.Provider),
		ProviderSubjectID: r.ProviderSubjectID,
		Role:              core.Role(r.Role),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.AvatarURL != nil {
		account.AvatarURL = *r.AvatarURL
	}
	return account
}

func newRefreshTokenRecord(token core.RefreshToken, now time.Time) *refreshTokenRecord {
	record := &refreshTokenRecord{
		ID:        strings.TrimSpace(token.ID),
		AccountID: strings.TrimSpace(token.AccountID),
		Token:     strings.TrimSpace(token.Token),
		ExpiresAt: token.ExpiresAt,
		Revoked:   token.Revoked,
		CreatedAt: token.CreatedAt,
		UpdatedAt: now,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	return record
}

func (r *refreshTokenRecord) toDomain() core.RefreshToken {
	if r == nil {
		return core.RefreshToken{}
	}
	return core.RefreshToken{
		ID:        r.ID,
		AccountID: r.AccountID,
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
		Revoked:   r.Revoked,
		CreatedAt: r.CreatedAt,
	}
}
