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

// AccountStore persists federated accounts. Lookups report existence through
// the boolean return so callers can distinguish a miss from a store failure.
type AccountStore struct {
	db   *bun.DB
	repo repository.Repository[*accountRecord]
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (core.Account, bool, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, false, fmt.Errorf("sqlstore: account store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.Account{}, false, fmt.Errorf("sqlstore: account id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("id", "=", trimmedID),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Account{}, false, err
	}
	if len(records) == 0 {
		return core.Account{}, false, nil
	}
	return records[0].toDomain(), true, nil
}

func (s *AccountStore) FindByProviderSubject(ctx context.Context, provider core.AuthProvider, subjectID string) (core.Account, bool, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, false, fmt.Errorf("sqlstore: account store is not configured")
	}
	trimmedSubject := strings.TrimSpace(subjectID)
	if trimmedSubject == "" {
		return core.Account{}, false, fmt.Errorf("sqlstore: provider subject id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("provider", "=", string(provider)),
		repository.SelectBy("provider_subject_id", "=", trimmedSubject),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Account{}, false, err
	}
	if len(records) == 0 {
		return core.Account{}, false, nil
	}
	return records[0].toDomain(), true, nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (core.Account, bool, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, false, fmt.Errorf("sqlstore: account store is not configured")
	}
	trimmedEmail := strings.TrimSpace(email)
	if trimmedEmail == "" {
		return core.Account{}, false, fmt.Errorf("sqlstore: email is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("email", "=", trimmedEmail),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Account{}, false, err
	}
	if len(records) == 0 {
		return core.Account{}, false, nil
	}
	return records[0].toDomain(), true, nil
}

// Save inserts the account when its id is unseen and updates the existing row
// otherwise. Uniqueness on email and on (provider, provider_subject_id) is
// enforced by the schema; violations surface as driver errors for the caller
// to classify.
func (s *AccountStore) Save(ctx context.Context, account core.Account) (core.Account, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	trimmedID := strings.TrimSpace(account.ID)
	if trimmedID == "" {
		return core.Account{}, fmt.Errorf("sqlstore: account id is required")
	}
	if err := account.Provider.Validate(); err != nil {
		return core.Account{}, err
	}
	if strings.TrimSpace(account.Email) == "" && strings.TrimSpace(account.ProviderSubjectID) == "" {
		return core.Account{}, fmt.Errorf("sqlstore: account requires an email or a provider subject id")
	}

	now := time.Now().UTC()
	record := newAccountRecord(account, now)

	_, found, err := s.FindByID(ctx, trimmedID)
	if err != nil {
		return core.Account{}, err
	}
	if !found {
		created, createErr := s.repo.Create(ctx, record)
		if createErr != nil {
			return core.Account{}, createErr
		}
		return created.toDomain(), nil
	}

	record.UpdatedAt = now
	updated, err := s.repo.Update(ctx, record, repository.UpdateByID(trimmedID))
	if err != nil {
		return core.Account{}, err
	}
	return updated.toDomain(), nil
}
