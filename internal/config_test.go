package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/mathlinks/internal/exclusion"
	"github.com/starford/mathlinks/internal/template"
	pkgconfig "github.com/starford/mathlinks/pkg/config"
)

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
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.MathLinks.BlockPrefix != "^" || !cfg.MathLinks.EnableAPI {
		t.Errorf("mathlinks defaults = %+v", cfg.MathLinks)
	}
}

func TestFullConfig_MathLinksValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MathLinks.Templates = []template.Template{
		{Title: "a", Replaced: "x"},
		{Title: "a", Replaced: "y"},
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "mathlinks") {
		t.Fatalf("duplicate template titles should fail: %v", err)
	}

	cfg = NewDefaultConfig()
	cfg.MathLinks.Exclusions = []exclusion.Entry{{Path: ""}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty exclusion path should fail")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("MATHLINKS_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: 9090
vault:
  path: ./notes
sqlite:
  path: ./cache.db
auth:
  mode: token
  token: ${MATHLINKS_TEST_TOKEN}
events:
  refresh_throttle: 1s
mathlinks:
  templates:
    - title: greek
      replaced: alpha
      replacement: α
      global_match: true
  exclusions:
    - path: Archive
  prefix_block_links_with_filename: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.Auth.Token != "s3cret" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Events.RefreshThrottle != time.Second {
		t.Errorf("refresh throttle = %v", cfg.Events.RefreshThrottle)
	}
	ml := cfg.MathLinks
	if len(ml.Templates) != 1 || !ml.Templates[0].GlobalMatch || !ml.PrefixBlockLinksWithFilename {
		t.Errorf("mathlinks = %+v", ml)
	}
	// Keys absent from the file keep their defaults.
	if ml.BlockPrefix != "^" || !ml.EnableAPI {
		t.Errorf("defaults lost: %+v", ml)
	}
	if !ml.IsExcluded("Archive/old.md") {
		t.Error("exclusion not loaded")
	}
}

func TestLoadConfigFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mathlinks:\n  block_prefx: \"#\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := pkgconfig.Load(path, NewDefaultConfig()); err == nil {
		t.Fatal("misspelled key should be rejected")
	}
}
