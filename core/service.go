package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	revokeReasonRotated = "rotated"
	revokeReasonExpired = "expired"
	revokeReasonLogout  = "logout"
)

// Service is the token lifecycle engine: it issues credential pairs on
// federation, rotates refresh tokens on use, and revokes them on logout.
// Refresh token single-use rides on the store's CompareAndRevoke primitive;
// the engine holds no mutable state beyond its immutable configuration.
type Service struct {
	config        Config
	logger        Logger
	errorMapper   ErrorMapper
	accounts      AccountStore
	refreshTokens RefreshTokenStore
	codec         TokenCodec
	reconciler    *Reconciler
	now           func() time.Time
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := serviceBuilder{
		runtimeConfig: cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("authkit", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("authkit"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorMapper == nil {
		builder.errorMapper = authErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if (builder.accountStore == nil || builder.refreshTokenStore == nil) && builder.repositoryFactory != nil {
		factory, ok := builder.repositoryFactory.(RepositoryStoreFactory)
		if !ok {
			return nil, fmt.Errorf("core: repository factory does not implement RepositoryStoreFactory")
		}
		stores, buildErr := factory.BuildStores(builder.persistenceClient)
		if buildErr != nil {
			return nil, mapBuildError(builder.errorMapper, buildErr)
		}
		if builder.accountStore == nil {
			builder.accountStore = stores.Accounts()
		}
		if builder.refreshTokenStore == nil {
			builder.refreshTokenStore = stores.RefreshTokens()
		}
	}
	if builder.accountStore == nil {
		return nil, fmt.Errorf("core: account store is required")
	}
	if builder.refreshTokenStore == nil {
		return nil, fmt.Errorf("core: refresh token store is required")
	}

	if builder.codec == nil {
		codec, codecErr := NewAccessTokenCodec(
			finalConfig.SigningSecret,
			finalConfig.AccessTokenTTL,
			WithCodecClock(builder.now),
		)
		if codecErr != nil {
			return nil, mapBuildError(builder.errorMapper, codecErr)
		}
		builder.codec = codec
	}

	service := &Service{
		config:        finalConfig,
		logger:        logger,
		errorMapper:   builder.errorMapper,
		accounts:      builder.accountStore,
		refreshTokens: builder.refreshTokenStore,
		codec:         builder.codec,
		now:           builder.now,
	}

	if len(builder.extractors) > 0 {
		reconciler, reconcilerErr := NewReconciler(
			builder.accountStore,
			builder.extractors,
			WithReconcilerClock(builder.now),
		)
		if reconcilerErr != nil {
			return nil, mapBuildError(builder.errorMapper, reconcilerErr)
		}
		service.reconciler = reconciler
	}

	return service, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// Federate reconciles a verified provider attribute set into an account and
// issues its first credential pair.
func (s *Service) Federate(ctx context.Context, provider AuthProvider, attrs map[string]any) (Account, TokenPair, error) {
	if s == nil || s.reconciler == nil {
		return Account{}, TokenPair{}, newAuthError("no profile extractors configured", goerrors.CategoryInternal, AuthErrorInternal)
	}
	result, err := s.reconciler.Reconcile(ctx, provider, attrs)
	if err != nil {
		err = s.mapError(err)
		s.logAuthFailure(ctx, "federate", err, map[string]any{"provider": string(provider)})
		return Account{}, TokenPair{}, err
	}
	pair, err := s.IssuePair(ctx, result.Account)
	if err != nil {
		return Account{}, TokenPair{}, err
	}
	s.logDebug(ctx, "federation succeeded", map[string]any{
		"provider":   string(provider),
		"account_id": result.Account.ID,
		"created":    result.Created,
	})
	return result.Account, pair, nil
}

// IssuePair mints an access token and persists a fresh refresh token for the
// account.
func (s *Service) IssuePair(ctx context.Context, account Account) (TokenPair, error) {
	if s == nil {
		return TokenPair{}, fmt.Errorf("core: service is nil")
	}
	if strings.TrimSpace(account.ID) == "" {
		return TokenPair{}, newAuthError("account id is required", goerrors.CategoryBadInput, AuthErrorMissingField)
	}

	accessToken, err := s.codec.Issue(account.ID, account.Email)
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "access token issuance failed", err, map[string]any{"account_id": account.ID})
		return TokenPair{}, err
	}

	value, err := generateRefreshTokenValue()
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "refresh token generation failed", err, map[string]any{"account_id": account.ID})
		return TokenPair{}, err
	}

	created, err := s.refreshTokens.Create(ctx, newRefreshToken(account.ID, value, s.now(), s.config.RefreshTokenTTL))
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "refresh token persistence failed", err, map[string]any{"account_id": account.ID})
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: created.Token,
		ExpiresIn:    s.codec.TTL().Milliseconds(),
	}, nil
}

// Rotate exchanges a live refresh token for a fresh pair. The presented token
// is revoked before its replacement is issued; of two concurrent calls with
// the same token exactly one wins the conditional revoke, the other observes
// an already-revoked record.
func (s *Service) Rotate(ctx context.Context, presented string) (TokenPair, error) {
	if s == nil {
		return TokenPair{}, fmt.Errorf("core: service is nil")
	}
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return TokenPair{}, newAuthError("refresh token is required", goerrors.CategoryAuth, AuthErrorInvalidToken)
	}

	stored, found, err := s.refreshTokens.FindByToken(ctx, presented)
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "refresh token lookup failed", err, nil)
		return TokenPair{}, err
	}
	if !found {
		err = newAuthError("refresh token is not recognized", goerrors.CategoryAuth, AuthErrorInvalidToken)
		s.logAuthFailure(ctx, "rotate", err, nil)
		return TokenPair{}, err
	}
	if stored.Revoked {
		err = newAuthError("refresh token has been revoked", goerrors.CategoryAuth, AuthErrorTokenRevoked)
		s.logAuthFailure(ctx, "rotate", err, map[string]any{"account_id": stored.AccountID, "token_id": stored.ID})
		return TokenPair{}, err
	}

	now := s.now()
	if stored.Expired(now) {
		// Lazy cleanup: an expired token is retired on first detection so it
		// can never linger in an ACTIVE state.
		if _, revokeErr := s.refreshTokens.CompareAndRevoke(ctx, stored.ID, revokeReasonExpired); revokeErr != nil {
			revokeErr = s.mapError(revokeErr)
			s.logError(ctx, "expired refresh token revocation failed", revokeErr, map[string]any{"token_id": stored.ID})
			return TokenPair{}, revokeErr
		}
		err = newAuthError("refresh token has expired", goerrors.CategoryAuth, AuthErrorTokenExpired)
		s.logAuthFailure(ctx, "rotate", err, map[string]any{"account_id": stored.AccountID, "token_id": stored.ID})
		return TokenPair{}, err
	}

	revoked, err := s.refreshTokens.CompareAndRevoke(ctx, stored.ID, revokeReasonRotated)
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "refresh token revocation failed", err, map[string]any{"token_id": stored.ID})
		return TokenPair{}, err
	}
	if !revoked {
		err = newAuthError("refresh token has been revoked", goerrors.CategoryAuth, AuthErrorTokenRevoked)
		s.logAuthFailure(ctx, "rotate", err, map[string]any{"account_id": stored.AccountID, "token_id": stored.ID})
		return TokenPair{}, err
	}

	account, found, err := s.accounts.FindByID(ctx, stored.AccountID)
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "account lookup failed", err, map[string]any{"account_id": stored.AccountID})
		return TokenPair{}, err
	}
	if !found {
		err = newAuthError("account not found for refresh token", goerrors.CategoryNotFound, AuthErrorUserNotFound)
		s.logError(ctx, "refresh token references missing account", err, map[string]any{"account_id": stored.AccountID})
		return TokenPair{}, err
	}

	pair, err := s.IssuePair(ctx, account)
	if err != nil {
		return TokenPair{}, err
	}
	s.logDebug(ctx, "refresh token rotated", map[string]any{"account_id": account.ID, "token_id": stored.ID})
	return pair, nil
}

// Revoke retires a refresh token on logout. The token must belong to the
// requesting account; a mismatch leaves the stored record untouched.
func (s *Service) Revoke(ctx context.Context, accountID string, presented string) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return newAuthError("refresh token is required", goerrors.CategoryAuth, AuthErrorInvalidToken)
	}

	stored, found, err := s.refreshTokens.FindByToken(ctx, presented)
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "refresh token lookup failed", err, nil)
		return err
	}
	if !found {
		err = newAuthError("refresh token is not recognized", goerrors.CategoryAuth, AuthErrorInvalidToken)
		s.logAuthFailure(ctx, "revoke", err, map[string]any{"account_id": accountID})
		return err
	}
	if stored.AccountID != strings.TrimSpace(accountID) {
		err = newAuthError("refresh token does not belong to the current user", goerrors.CategoryAuth, AuthErrorTokenMismatch)
		s.logAuthFailure(ctx, "revoke", err, map[string]any{"account_id": accountID, "token_id": stored.ID})
		return err
	}

	if _, err := s.refreshTokens.CompareAndRevoke(ctx, stored.ID, revokeReasonLogout); err != nil {
		err = s.mapError(err)
		s.logError(ctx, "refresh token revocation failed", err, map[string]any{"token_id": stored.ID})
		return err
	}
	s.logDebug(ctx, "refresh token revoked", map[string]any{"account_id": stored.AccountID, "token_id": stored.ID})
	return nil
}

// RevokeAll retires every live refresh token owned by the account and reports
// how many were flipped. Used for global logout.
func (s *Service) RevokeAll(ctx context.Context, accountID string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("core: service is nil")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return 0, newAuthError("account id is required", goerrors.CategoryBadInput, AuthErrorMissingField)
	}
	count, err := s.refreshTokens.RevokeAllForAccount(ctx, accountID)
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "bulk refresh token revocation failed", err, map[string]any{"account_id": accountID})
		return 0, err
	}
	s.logDebug(ctx, "refresh tokens revoked for account", map[string]any{"account_id": accountID, "count": count})
	return count, nil
}

// CurrentUser returns the read-only account projection for a verified
// access-token subject.
func (s *Service) CurrentUser(ctx context.Context, accountID string) (AccountView, error) {
	if s == nil {
		return AccountView{}, fmt.Errorf("core: service is nil")
	}
	account, found, err := s.accounts.FindByID(ctx, strings.TrimSpace(accountID))
	if err != nil {
		err = s.mapError(err)
		s.logError(ctx, "account lookup failed", err, map[string]any{"account_id": accountID})
		return AccountView{}, err
	}
	if !found {
		return AccountView{}, newAuthError("user not found", goerrors.CategoryNotFound, AuthErrorUserNotFound)
	}
	return NewAccountView(account), nil
}

// VerifyAccess validates a bearer access token without touching the stores.
func (s *Service) VerifyAccess(token string) (AccessClaims, error) {
	if s == nil {
		return AccessClaims{}, fmt.Errorf("core: service is nil")
	}
	claims, err := s.codec.Verify(token)
	if err != nil {
		return AccessClaims{}, s.mapError(err)
	}
	return claims, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

// logAuthFailure records expected authentication failures (invalid, revoked,
// expired, mismatched tokens). These are frequent and never logged at error
// severity.
func (s *Service) logAuthFailure(ctx context.Context, operation string, err error, fields map[string]any) {
	merged := cloneFields(fields)
	merged["operation"] = operation
	if err != nil {
		merged["error"] = err.Error()
	}
	s.logWithLevel(ctx, "debug", operation+" rejected", merged)
}

func (s *Service) logDebug(ctx context.Context, message string, fields map[string]any) {
	s.logWithLevel(ctx, "debug", message, fields)
}

func (s *Service) logError(ctx context.Context, message string, err error, fields map[string]any) {
	merged := cloneFields(fields)
	if err != nil {
		merged["error"] = err.Error()
	}
	s.logWithLevel(ctx, "error", message, merged)
}

func (s *Service) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if s == nil || s.logger == nil {
		return
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
