package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/memo/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if got := cfg.App.HTTP.Address(); got != "127.0.0.1:8080" {
		t.Errorf("address = %q", got)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg = AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Errorf("empty token: err = %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestConfig_BadPortAndDebounce(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port 70000 accepted")
	}

	cfg = NewDefaultConfig()
	cfg.Watch.Debounce = time.Minute
	if err := cfg.Validate(); err == nil {
		t.Error("one minute debounce accepted")
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cases := map[string]HTTPConfig{
		"127.0.0.1:8080": {Host: "127.0.0.1", Port: 8080},
		":9000":          {Port: 9000},
		"[::1]:80":       {Host: "::1", Port: 80},
	}
	for want, cfg := range cases {
		if got := cfg.Address(); got != want {
			t.Errorf("Address(%+v) = %q, want %q", cfg, got, want)
		}
	}
}

func TestConfig_LockTimeout(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Memo.LockTimeout != 5*time.Second {
		t.Errorf("default lock timeout = %v", cfg.Memo.LockTimeout)
	}
	cfg.Memo.LockTimeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("negative lock timeout accepted")
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	t.Setenv("MEMO_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "memo.yaml")
	body := `app:
  log_level: debug
  http:
    port: 9090
memo:
  path: /tmp/serve.memo
  lock_timeout: 2s
watch:
  debounce: 50ms
auth:
  mode: token
  token: ${MEMO_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.HTTP.Host != "127.0.0.1" {
		t.Errorf("http = %+v", cfg.App.HTTP)
	}
	if cfg.Memo.Path != "/tmp/serve.memo" || cfg.Memo.LockTimeout != 2*time.Second {
		t.Errorf("memo = %+v", cfg.Memo)
	}
	if cfg.Watch.Debounce != 50*time.Millisecond || !cfg.Watch.Enabled {
		t.Errorf("watch = %+v", cfg.Watch)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q", cfg.Auth.Token)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
}
