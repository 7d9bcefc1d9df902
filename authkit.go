package authkit

import "github.com/goliatone/go-authkit/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type Account = core.Account
type AccountView = core.AccountView
type Profile = core.Profile
type RefreshToken = core.RefreshToken
type TokenPair = core.TokenPair
type AccessClaims = core.AccessClaims
type AuthProvider = core.AuthProvider
type Role = core.Role

type AccountStore = core.AccountStore
type RefreshTokenStore = core.RefreshTokenStore
type ProfileExtractor = core.ProfileExtractor
type TokenCodec = core.TokenCodec
type StoreProvider = core.StoreProvider
type RepositoryStoreFactory = core.RepositoryStoreFactory

type Reconciler = core.Reconciler
type ReconcileResult = core.ReconcileResult

const (
	ProviderGoogle = core.ProviderGoogle
	ProviderKakao  = core.ProviderKakao

	RoleUser  = core.RoleUser
	RoleAdmin = core.RoleAdmin
)

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithAccountStore      = core.WithAccountStore
	WithRefreshTokenStore = core.WithRefreshTokenStore
	WithTokenCodec        = core.WithTokenCodec
	WithProfileExtractors = core.WithProfileExtractors
	WithClock             = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
