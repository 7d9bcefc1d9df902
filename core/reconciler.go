package core

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type ReconcilerOption func(*Reconciler)

func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if r == nil || now == nil {
			return
		}
		r.now = now
	}
}

// Reconciler maps a verified provider attribute set onto a local account:
// one store read by (provider, subject id), one store write. A hit refreshes
// the mutable profile fields; a miss creates a USER-role account. Email
// uniqueness is left to the store, where a collision surfaces as a conflict.
type Reconciler struct {
	accounts   AccountStore
	extractors map[AuthProvider]ProfileExtractor
	now        func() time.Time
}

func NewReconciler(accounts AccountStore, extractors []ProfileExtractor, options ...ReconcilerOption) (*Reconciler, error) {
	if accounts == nil {
		return nil, fmt.Errorf("core: account store is required")
	}
	if len(extractors) == 0 {
		return nil, fmt.Errorf("core: at least one profile extractor is required")
	}

	byProvider := make(map[AuthProvider]ProfileExtractor, len(extractors))
	for _, extractor := range extractors {
		if extractor == nil {
			continue
		}
		provider := extractor.Provider()
		if err := provider.Validate(); err != nil {
			return nil, err
		}
		if _, exists := byProvider[provider]; exists {
			return nil, fmt.Errorf("core: duplicate profile extractor for provider %q", string(provider))
		}
		byProvider[provider] = extractor
	}
	if len(byProvider) == 0 {
		return nil, fmt.Errorf("core: at least one profile extractor is required")
	}

	r := &Reconciler{
		accounts:   accounts,
		extractors: byProvider,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

type ReconcileResult struct {
	Account Account
	Created bool
}

func (r *Reconciler) Reconcile(ctx context.Context, provider AuthProvider, attrs map[string]any) (ReconcileResult, error) {
	if r == nil || r.accounts == nil {
		return ReconcileResult{}, fmt.Errorf("core: reconciler account store is required")
	}
	if err := provider.Validate(); err != nil {
		return ReconcileResult{}, newAuthError(err.Error(), goerrors.CategoryBadInput, AuthErrorProviderUnsupported)
	}
	extractor, ok := r.extractors[provider]
	if !ok {
		return ReconcileResult{}, newAuthError(
			fmt.Sprintf("no profile extractor registered for provider %q", string(provider)),
			goerrors.CategoryBadInput,
			AuthErrorProviderUnsupported,
		)
	}

	profile, err := extractor.Extract(attrs)
	if err != nil {
		return ReconcileResult{}, err
	}
	if err := profile.Validate(); err != nil {
		return ReconcileResult{}, err
	}

	existing, found, err := r.accounts.FindByProviderSubject(ctx, provider, profile.SubjectID)
	if err != nil {
		return ReconcileResult{}, err
	}

	now := r.now()
	if found {
		updated := existing.WithProfile(profile.DisplayName, profile.AvatarURL, now)
		saved, saveErr := r.accounts.Save(ctx, updated)
		if saveErr != nil {
			return ReconcileResult{}, saveErr
		}
		return ReconcileResult{Account: saved, Created: false}, nil
	}

	account := Account{
		ID:                uuid.NewString(),
		Email:             profile.Email,
		DisplayName:       profile.DisplayName,
		AvatarURL:         profile.AvatarURL,
		Provider:          provider,
		ProviderSubjectID: profile.SubjectID,
		Role:              RoleUser,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	saved, err := r.accounts.Save(ctx, account)
	if err != nil {
		return ReconcileResult{}, err
	}
	return ReconcileResult{Account: saved, Created: true}, nil
}
