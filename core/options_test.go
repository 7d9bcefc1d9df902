package core

import (
	"context"
	"testing"
	"time"
)

type mapConfigLoader struct {
	values map[string]any
}

func (l mapConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	return l.values, nil
}

func TestGoOptionsResolver_RuntimeWinsOverLoaded(t *testing.T) {
	resolver := GoOptionsResolver{}

	loaded := Config{
		SigningSecret:   testSigningSecret,
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	runtime := Config{AccessTokenTTL: 2 * time.Hour}

	resolved, err := resolver.Resolve(DefaultConfig(), loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.AccessTokenTTL != 2*time.Hour {
		t.Fatalf("expected runtime ttl to win, got %v", resolved.AccessTokenTTL)
	}
	if resolved.SigningSecret != testSigningSecret {
		t.Fatalf("expected loaded secret to survive, got %q", resolved.SigningSecret)
	}
	if resolved.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("expected loaded refresh ttl, got %v", resolved.RefreshTokenTTL)
	}
}

func TestGoOptionsResolver_DefaultsFillGaps(t *testing.T) {
	resolver := GoOptionsResolver{}

	resolved, err := resolver.Resolve(DefaultConfig(), Config{}, Config{SigningSecret: testSigningSecret})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	defaults := DefaultConfig()
	if resolved.AccessTokenTTL != defaults.AccessTokenTTL {
		t.Fatalf("expected default access ttl, got %v", resolved.AccessTokenTTL)
	}
	if resolved.RefreshTokenTTL != defaults.RefreshTokenTTL {
		t.Fatalf("expected default refresh ttl, got %v", resolved.RefreshTokenTTL)
	}
}

func TestGoOptionsResolver_ValidatesResolvedConfig(t *testing.T) {
	resolver := GoOptionsResolver{}
	if _, err := resolver.Resolve(DefaultConfig(), Config{}, Config{}); err == nil {
		t.Fatalf("expected missing signing secret to fail validation")
	}
	if _, err := resolver.Resolve(DefaultConfig(), Config{}, Config{SigningSecret: "short"}); err == nil {
		t.Fatalf("expected short signing secret to fail validation")
	}
}

func TestCfgxConfigProvider_MergesLoaderValuesOverDefaults(t *testing.T) {
	provider := NewCfgxConfigProvider(mapConfigLoader{values: map[string]any{
		"signing_secret":   testSigningSecret,
		"access_token_ttl": 45 * time.Minute,
	}})

	loaded, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.SigningSecret != testSigningSecret {
		t.Fatalf("expected loader secret, got %q", loaded.SigningSecret)
	}
	if loaded.AccessTokenTTL != 45*time.Minute {
		t.Fatalf("expected loader ttl, got %v", loaded.AccessTokenTTL)
	}
	if loaded.RefreshTokenTTL != DefaultConfig().RefreshTokenTTL {
		t.Fatalf("expected default refresh ttl, got %v", loaded.RefreshTokenTTL)
	}
}

func TestCfgxConfigProvider_AllowsSecretlessLoad(t *testing.T) {
	provider := NewCfgxConfigProvider(nil)
	loaded, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.SigningSecret != "" {
		t.Fatalf("expected empty secret from defaults, got %q", loaded.SigningSecret)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		SigningSecret:   testSigningSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 14 * 24 * time.Hour,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]Config{
		"missing secret":      {AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour},
		"short secret":        {SigningSecret: "short", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour},
		"zero access ttl":     {SigningSecret: testSigningSecret, RefreshTokenTTL: time.Hour},
		"zero refresh ttl":    {SigningSecret: testSigningSecret, AccessTokenTTL: time.Hour},
		"negative access ttl": {SigningSecret: testSigningSecret, AccessTokenTTL: -time.Hour, RefreshTokenTTL: time.Hour},
	}
	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected %s to fail validation", name)
		}
	}
}
