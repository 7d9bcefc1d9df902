package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

const testSigningSecret = "0123456789abcdef0123456789abcdef"

func testClock(at time.Time) *fakeClock {
	return &fakeClock{current: at}
}

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

type memoryAccountStore struct {
	mu   sync.Mutex
	byID map[string]Account

	saveErr error
}

func newMemoryAccountStore() *memoryAccountStore {
	return &memoryAccountStore{byID: map[string]Account{}}
}

func (s *memoryAccountStore) FindByID(_ context.Context, id string) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byID[strings.TrimSpace(id)]
	return account, ok, nil
}

func (s *memoryAccountStore) FindByProviderSubject(_ context.Context, provider AuthProvider, subjectID string) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.byID {
		if account.Provider == provider && account.ProviderSubjectID == strings.TrimSpace(subjectID) {
			return account, true, nil
		}
	}
	return Account{}, false, nil
}

func (s *memoryAccountStore) FindByEmail(_ context.Context, email string) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.byID {
		if account.Email == strings.TrimSpace(email) {
			return account, true, nil
		}
	}
	return Account{}, false, nil
}

func (s *memoryAccountStore) Save(_ context.Context, account Account) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return Account{}, s.saveErr
	}
	if strings.TrimSpace(account.ID) == "" {
		return Account{}, fmt.Errorf("account id is required")
	}
	for id, existing := range s.byID {
		if id == account.ID {
			continue
		}
		if existing.Email == account.Email {
			return Account{}, fmt.Errorf("UNIQUE constraint failed: auth_accounts.email")
		}
		if existing.Provider == account.Provider && existing.ProviderSubjectID == account.ProviderSubjectID {
			return Account{}, fmt.Errorf("UNIQUE constraint failed: auth_accounts.provider_subject_id")
		}
	}
	s.byID[account.ID] = account
	return account, nil
}

type memoryRefreshTokenStore struct {
	mu   sync.Mutex
	byID map[string]RefreshToken

	createErr error
}

func newMemoryRefreshTokenStore() *memoryRefreshTokenStore {
	return &memoryRefreshTokenStore{byID: map[string]RefreshToken{}}
}

func (s *memoryRefreshTokenStore) Create(_ context.Context, token RefreshToken) (RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return RefreshToken{}, s.createErr
	}
	for _, existing := range s.byID {
		if existing.Token == token.Token {
			return RefreshToken{}, fmt.Errorf("UNIQUE constraint failed: auth_refresh_tokens.token")
		}
	}
	s.byID[token.ID] = token
	return token, nil
}

func (s *memoryRefreshTokenStore) FindByToken(_ context.Context, value string) (RefreshToken, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, token := range s.byID {
		if token.Token == strings.TrimSpace(value) {
			return token, true, nil
		}
	}
	return RefreshToken{}, false, nil
}

func (s *memoryRefreshTokenStore) CompareAndRevoke(_ context.Context, id string, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.byID[strings.TrimSpace(id)]
	if !ok || token.Revoked {
		return false, nil
	}
	token.Revoked = true
	s.byID[token.ID] = token
	return true, nil
}

func (s *memoryRefreshTokenStore) RevokeAllForAccount(_ context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, token := range s.byID {
		if token.AccountID != strings.TrimSpace(accountID) || token.Revoked {
			continue
		}
		token.Revoked = true
		s.byID[id] = token
		count++
	}
	return count, nil
}

func (s *memoryRefreshTokenStore) activeCount(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, token := range s.byID {
		if token.AccountID == accountID && !token.Revoked {
			count++
		}
	}
	return count
}

type staticExtractor struct {
	provider AuthProvider
	profile  Profile
	err      error
}

func (e staticExtractor) Provider() AuthProvider { return e.provider }

func (e staticExtractor) Extract(map[string]any) (Profile, error) {
	if e.err != nil {
		return Profile{}, e.err
	}
	return e.profile, nil
}

type testServiceEnv struct {
	service  *Service
	accounts *memoryAccountStore
	tokens   *memoryRefreshTokenStore
	clock    *fakeClock
}

func newTestService(t *testing.T, opts ...Option) testServiceEnv {
	t.Helper()
	accounts := newMemoryAccountStore()
	tokens := newMemoryRefreshTokenStore()
	clock := testClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	base := []Option{
		WithAccountStore(accounts),
		WithRefreshTokenStore(tokens),
		WithClock(clock.Now),
	}
	service, err := NewService(Config{
		SigningSecret:   testSigningSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 14 * 24 * time.Hour,
	}, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return testServiceEnv{
		service:  service,
		accounts: accounts,
		tokens:   tokens,
		clock:    clock,
	}
}

func seedAccount(t *testing.T, store *memoryAccountStore, account Account) Account {
	t.Helper()
	saved, err := store.Save(context.Background(), account)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return saved
}
