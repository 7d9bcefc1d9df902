package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// AccountStore persists federated identities. Save upserts by id; uniqueness
// of email and (provider, provider_subject_id) is enforced by the store and
// surfaces as a conflict error.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (Account, bool, error)
	FindByProviderSubject(ctx context.Context, provider AuthProvider, subjectID string) (Account, bool, error)
	FindByEmail(ctx context.Context, email string) (Account, bool, error)
	Save(ctx context.Context, account Account) (Account, error)
}

// RefreshTokenStore persists refresh credentials. CompareAndRevoke is the
// atomic conditional-update primitive backing the single-use invariant: it
// flips revoked to true only when the record is still unrevoked and reports
// whether this caller won the flip.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) (RefreshToken, error)
	FindByToken(ctx context.Context, value string) (RefreshToken, bool, error)
	CompareAndRevoke(ctx context.Context, id string, reason string) (bool, error)
	RevokeAllForAccount(ctx context.Context, accountID string) (int, error)
}

// ProfileExtractor maps one provider's raw attribute payload to the canonical
// profile shape. Extraction is total over optional fields and fails only on
// missing required ones.
type ProfileExtractor interface {
	Provider() AuthProvider
	Extract(attrs map[string]any) (Profile, error)
}

// TokenCodec issues and verifies self-contained access tokens. Verify does no
// store I/O.
type TokenCodec interface {
	Issue(accountID string, email string) (string, error)
	Verify(token string) (AccessClaims, error)
	TTL() time.Duration
}

type StoreProvider interface {
	Accounts() AccountStore
	RefreshTokens() RefreshTokenStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
