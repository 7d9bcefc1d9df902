package core

import (
	"strings"
	"testing"
	"time"
)

func TestParseAuthProvider(t *testing.T) {
	cases := map[string]AuthProvider{
		"google":  ProviderGoogle,
		"GOOGLE":  ProviderGoogle,
		" kakao ": ProviderKakao,
	}
	for raw, want := range cases {
		got, err := ParseAuthProvider(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", raw, want, got)
		}
	}

	for _, raw := range []string{"", "github", "naver"} {
		if _, err := ParseAuthProvider(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestRoleValidate(t *testing.T) {
	if err := RoleUser.Validate(); err != nil {
		t.Fatalf("role user: %v", err)
	}
	if err := RoleAdmin.Validate(); err != nil {
		t.Fatalf("role admin: %v", err)
	}
	if err := Role("root").Validate(); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestAccountWithProfile(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	original := Account{
		ID:          "acc-1",
		DisplayName: "Old Name",
		AvatarURL:   "https://example.com/old.png",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	now := createdAt.Add(time.Hour)
	updated := original.WithProfile("  New Name  ", "https://example.com/new.png", now)

	if updated.DisplayName != "New Name" {
		t.Fatalf("expected trimmed display name, got %q", updated.DisplayName)
	}
	if updated.AvatarURL != "https://example.com/new.png" {
		t.Fatalf("unexpected avatar url %q", updated.AvatarURL)
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at %v, got %v", now, updated.UpdatedAt)
	}
	if original.DisplayName != "Old Name" {
		t.Fatalf("expected receiver to be untouched")
	}
}

func TestRefreshTokenLifetime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := newRefreshToken("acc-1", "opaque", now, time.Hour)

	if token.ID == "" {
		t.Fatalf("expected generated token id")
	}
	if token.Expired(now) {
		t.Fatalf("fresh token must not be expired")
	}
	if !token.Active(now) {
		t.Fatalf("fresh token must be active")
	}
	if !token.Expired(now.Add(2 * time.Hour)) {
		t.Fatalf("token past expiry must report expired")
	}

	revoked := token
	revoked.Revoked = true
	if revoked.Active(now) {
		t.Fatalf("revoked token must not be active")
	}
}

func TestGenerateRefreshTokenValue(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 64; i++ {
		value, err := generateRefreshTokenValue()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(value) < 43 {
			t.Fatalf("expected at least 43 url-safe chars, got %d", len(value))
		}
		if strings.ContainsAny(value, "+/=") {
			t.Fatalf("expected url-safe alphabet, got %q", value)
		}
		if _, dup := seen[value]; dup {
			t.Fatalf("expected unique values, saw %q twice", value)
		}
		seen[value] = struct{}{}
	}
}

func TestProfileValidate(t *testing.T) {
	valid := Profile{Provider: ProviderGoogle, SubjectID: "sub-1"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid profile, got %v", err)
	}
	if err := (Profile{Provider: ProviderGoogle}).Validate(); err == nil {
		t.Fatalf("expected missing subject id to fail")
	}
	if err := (Profile{SubjectID: "sub-1"}).Validate(); err == nil {
		t.Fatalf("expected missing provider to fail")
	}
}
