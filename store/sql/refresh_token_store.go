package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-authkit/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RefreshTokenStore persists the opaque rotation chain. Revocation is a
// conditional update on the unrevoked row so that concurrent rotations of the
// same token resolve to exactly one winner.
type RefreshTokenStore struct {
	db   *bun.DB
	repo repository.Repository[*refreshTokenRecord]
}

func (s *RefreshTokenStore) Create(ctx context.Context, token core.RefreshToken) (core.RefreshToken, error) {
	if s == nil || s.repo == nil {
		return core.RefreshToken{}, fmt.Errorf("sqlstore: refresh token store is not configured")
	}
	if strings.TrimSpace(token.ID) == "" {
		return core.RefreshToken{}, fmt.Errorf("sqlstore: refresh token id is required")
	}
	if strings.TrimSpace(token.AccountID) == "" {
		return core.RefreshToken{}, fmt.Errorf("sqlstore: account id is required")
	}
	if strings.TrimSpace(token.Token) == "" {
		return core.RefreshToken{}, fmt.Errorf("sqlstore: token value is required")
	}
	if token.ExpiresAt.IsZero() {
		return core.RefreshToken{}, fmt.Errorf("sqlstore: token expiry is required")
	}

	record := newRefreshTokenRecord(token, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.RefreshToken{}, err
	}
	return created.toDomain(), nil
}

func (s *RefreshTokenStore) FindByToken(ctx context.Context, value string) (core.RefreshToken, bool, error) {
	if s == nil || s.repo == nil {
		return core.RefreshToken{}, false, fmt.Errorf("sqlstore: refresh token store is not configured")
	}
	trimmedValue := strings.TrimSpace(value)
	if trimmedValue == "" {
		return core.RefreshToken{}, false, nil
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("token", "=", trimmedValue),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.RefreshToken{}, false, err
	}
	if len(records) == 0 {
		return core.RefreshToken{}, false, nil
	}
	return records[0].toDomain(), true, nil
}

// CompareAndRevoke flips the row to revoked only when it is still unrevoked.
// The rows-affected count decides the winner under concurrent use of the same
// token: true means this caller performed the revocation, false means another
// caller (or an earlier cleanup) got there first.
func (s *RefreshTokenStore) CompareAndRevoke(ctx context.Context, id string, reason string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: refresh token store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return false, fmt.Errorf("sqlstore: refresh token id is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "revoked"
	}

	result, err := s.db.NewUpdate().
		Model((*refreshTokenRecord)(nil)).
		Set("revoked = ?", true).
		Set("revocation_reason = ?", reason).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", trimmedID).
		Where("revoked = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// RevokeAllForAccount revokes every live token the account holds and reports
// how many rows changed. Already revoked rows are left untouched so their
// original revocation reason survives.
func (s *RefreshTokenStore) RevokeAllForAccount(ctx context.Context, accountID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: refresh token store is not configured")
	}
	trimmedAccountID := strings.TrimSpace(accountID)
	if trimmedAccountID == "" {
		return 0, fmt.Errorf("sqlstore: account id is required")
	}

	result, err := s.db.NewUpdate().
		Model((*refreshTokenRecord)(nil)).
		Set("revoked = ?", true).
		Set("revocation_reason = ?", "logout_all").
		Set("updated_at = ?", time.Now().UTC()).
		Where("account_id = ?", trimmedAccountID).
		Where("revoked = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
