package core

import (
	"context"
	"testing"
	"time"
)

func TestReconcile_CreatesAccountOnFirstLogin(t *testing.T) {
	store := newMemoryAccountStore()
	clock := testClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	reconciler, err := NewReconciler(store, []ProfileExtractor{googleTestExtractor()}, WithReconcilerClock(clock.Now))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	result, err := reconciler.Reconcile(context.Background(), ProviderGoogle, map[string]any{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected created account")
	}
	if result.Account.ID == "" {
		t.Fatalf("expected generated account id")
	}
	if result.Account.Role != RoleUser {
		t.Fatalf("expected role user, got %q", result.Account.Role)
	}
	if result.Account.Provider != ProviderGoogle || result.Account.ProviderSubjectID != "google-sub-1" {
		t.Fatalf("unexpected provider binding %+v", result.Account)
	}
	if !result.Account.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("expected created_at from injected clock")
	}
}

func TestReconcile_SecondLoginUpdatesProfileInPlace(t *testing.T) {
	store := newMemoryAccountStore()
	clock := testClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	first := googleTestExtractor()
	reconciler, err := NewReconciler(store, []ProfileExtractor{first}, WithReconcilerClock(clock.Now))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	created, err := reconciler.Reconcile(context.Background(), ProviderGoogle, map[string]any{})
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}

	second := first
	second.profile.DisplayName = "Renamed Person"
	second.profile.AvatarURL = "https://example.com/new.png"
	reconciler, err = NewReconciler(store, []ProfileExtractor{second}, WithReconcilerClock(clock.Now))
	if err != nil {
		t.Fatalf("rebuild reconciler: %v", err)
	}
	clock.Advance(time.Hour)

	updated, err := reconciler.Reconcile(context.Background(), ProviderGoogle, map[string]any{})
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if updated.Created {
		t.Fatalf("expected existing account, not a new one")
	}
	if updated.Account.ID != created.Account.ID {
		t.Fatalf("expected stable account id")
	}
	if updated.Account.DisplayName != "Renamed Person" {
		t.Fatalf("expected refreshed display name, got %q", updated.Account.DisplayName)
	}
	if updated.Account.AvatarURL != "https://example.com/new.png" {
		t.Fatalf("expected refreshed avatar url, got %q", updated.Account.AvatarURL)
	}
	if !updated.Account.CreatedAt.Equal(created.Account.CreatedAt) {
		t.Fatalf("expected created_at to survive updates")
	}
	if !updated.Account.UpdatedAt.After(created.Account.UpdatedAt) {
		t.Fatalf("expected updated_at to advance")
	}
}

func TestReconcile_UnregisteredProviderRejected(t *testing.T) {
	store := newMemoryAccountStore()
	reconciler, err := NewReconciler(store, []ProfileExtractor{googleTestExtractor()})
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	if _, err := reconciler.Reconcile(context.Background(), ProviderKakao, map[string]any{}); !HasErrorCode(err, AuthErrorProviderUnsupported) {
		t.Fatalf("expected %s, got %v", AuthErrorProviderUnsupported, err)
	}
	if _, err := reconciler.Reconcile(context.Background(), AuthProvider("github"), map[string]any{}); !HasErrorCode(err, AuthErrorProviderUnsupported) {
		t.Fatalf("expected %s for unknown provider, got %v", AuthErrorProviderUnsupported, err)
	}
}

func TestReconcile_ExtractorErrorPropagates(t *testing.T) {
	store := newMemoryAccountStore()
	failing := staticExtractor{
		provider: ProviderGoogle,
		err:      NewMissingFieldError(ProviderGoogle, "sub"),
	}
	reconciler, err := NewReconciler(store, []ProfileExtractor{failing})
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	if _, err := reconciler.Reconcile(context.Background(), ProviderGoogle, map[string]any{}); !HasErrorCode(err, AuthErrorMissingField) {
		t.Fatalf("expected %s, got %v", AuthErrorMissingField, err)
	}
}

func TestNewReconciler_RejectsDuplicateProviders(t *testing.T) {
	store := newMemoryAccountStore()
	if _, err := NewReconciler(store, []ProfileExtractor{googleTestExtractor(), googleTestExtractor()}); err == nil {
		t.Fatalf("expected duplicate provider error")
	}
}

func TestNewReconciler_RequiresExtractors(t *testing.T) {
	store := newMemoryAccountStore()
	if _, err := NewReconciler(store, nil); err == nil {
		t.Fatalf("expected missing extractor error")
	}
	if _, err := NewReconciler(nil, []ProfileExtractor{googleTestExtractor()}); err == nil {
		t.Fatalf("expected missing store error")
	}
}
