package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"

	"github.com/CRDigitalAndMining/go-service-template/internal/logging"
)

func writeEnvFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Sources{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.IsLocal {
		t.Fatalf("expected IsLocal default true")
	}
	if cfg.Debug {
		t.Fatalf("expected Debug default false")
	}
	if cfg.Title != defaultTitle {
		t.Fatalf("expected default title %q, got %q", defaultTitle, cfg.Title)
	}
	if cfg.Version != defaultVersion {
		t.Fatalf("expected default version %q, got %q", defaultVersion, cfg.Version)
	}
	if cfg.APIPrefix != defaultAPIPrefix {
		t.Fatalf("expected default API prefix %q, got %q", defaultAPIPrefix, cfg.APIPrefix)
	}
	if len(cfg.AllowedHosts) != 1 || cfg.AllowedHosts[0] != "*" {
		t.Fatalf("expected default allowed hosts [*], got %v", cfg.AllowedHosts)
	}
	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %q, got %q", defaultPort, cfg.Port)
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limit defaults: %v / %v", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.ConnectionString != "" {
		t.Fatalf("expected empty connection string, got %q", cfg.ConnectionString)
	}
}

func TestLoadMissingFilesContributeNothing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(Sources{
		Base:     filepath.Join(dir, "absent.env"),
		Override: filepath.Join(dir, "absent.local.env"),
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Title != defaultTitle {
		t.Fatalf("expected defaults when both files are missing")
	}
}

func TestLoadPrecedence(t *testing.T) {
	base := writeEnvFile(t, "base.env", "DEBUG=true\nTITLE=Base Title\nPORT=9000\n")
	override := writeEnvFile(t, "local.env", "DEBUG=false\nTITLE=Override Title\n")

	cfg, err := Load(Sources{Base: base, Override: override})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Debug {
		t.Fatalf("expected override DEBUG=false to win over base DEBUG=true")
	}
	if cfg.Title != "Override Title" {
		t.Fatalf("expected override title, got %q", cfg.Title)
	}
	if cfg.Port != "9000" {
		t.Fatalf("expected base-only PORT to survive, got %q", cfg.Port)
	}
	if cfg.Version != defaultVersion {
		t.Fatalf("expected declared default for untouched field, got %q", cfg.Version)
	}
}

func TestBooleanLiterals(t *testing.T) {
	for _, raw := range []string{"true", "TRUE", "1", "yes"} {
		t.Run("true/"+raw, func(t *testing.T) {
			cfg, err := Load(Sources{Base: writeEnvFile(t, "base.env", "DEBUG="+raw+"\n")})
			if err != nil {
				t.Fatalf("Load returned error for %q: %v", raw, err)
			}
			if !cfg.Debug {
				t.Fatalf("expected %q to resolve true", raw)
			}
		})
	}

	for _, raw := range []string{"false", "FALSE", "0", "no"} {
		t.Run("false/"+raw, func(t *testing.T) {
			cfg, err := Load(Sources{Base: writeEnvFile(t, "base.env", "IS_LOCAL="+raw+"\nAPPLICATIONINSIGHTS_CONNECTION_STRING=key\n")})
			if err != nil {
				t.Fatalf("Load returned error for %q: %v", raw, err)
			}
			if cfg.IsLocal {
				t.Fatalf("expected %q to resolve false", raw)
			}
		})
	}

	t.Run("invalid literal", func(t *testing.T) {
		_, err := Load(Sources{Base: writeEnvFile(t, "base.env", "DEBUG=maybe\n")})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Field != "DEBUG" {
			t.Fatalf("expected DEBUG field in error, got %q", verr.Field)
		}
	})
}

func TestAllowedHostsList(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		cfg, err := Load(Sources{Base: writeEnvFile(t, "base.env", `ALLOWED_HOSTS=["a","b"]`+"\n")})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if len(cfg.AllowedHosts) != 2 || cfg.AllowedHosts[0] != "a" || cfg.AllowedHosts[1] != "b" {
			t.Fatalf("unexpected allowed hosts: %v", cfg.AllowedHosts)
		}
	})

	t.Run("comma separated rejected", func(t *testing.T) {
		_, err := Load(Sources{Base: writeEnvFile(t, "base.env", "ALLOWED_HOSTS=a,b\n")})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for bare comma list, got %v", err)
		}
	})

	t.Run("array of non-strings rejected", func(t *testing.T) {
		_, err := Load(Sources{Base: writeEnvFile(t, "base.env", "ALLOWED_HOSTS=[1,2]\n")})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for numeric array, got %v", err)
		}
	})
}

func TestNumericFields(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg, err := Load(Sources{Base: writeEnvFile(t, "base.env", "RATE_LIMIT_RPS=12.5\nRATE_LIMIT_BURST=10\n")})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.RateLimitRPS != 12.5 || cfg.RateLimitBurst != 10 {
			t.Fatalf("unexpected numeric values: %v / %v", cfg.RateLimitRPS, cfg.RateLimitBurst)
		}
	})

	t.Run("non-numeric rejected", func(t *testing.T) {
		_, err := Load(Sources{Base: writeEnvFile(t, "base.env", "RATE_LIMIT_RPS=fast\n")})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("float rejected for integer field", func(t *testing.T) {
		_, err := Load(Sources{Base: writeEnvFile(t, "base.env", "RATE_LIMIT_BURST=1.5\n")})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestAllFieldErrorsReported(t *testing.T) {
	_, err := Load(Sources{Base: writeEnvFile(t, "base.env", "DEBUG=maybe\nRATE_LIMIT_BURST=ten\n")})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected both field errors to be reported, got %d: %v", got, err)
	}
}

func TestConnectionStringRequiredWhenRemote(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := Load(Sources{Base: writeEnvFile(t, "base.env", "IS_LOCAL=false\n")})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Field != "APPLICATIONINSIGHTS_CONNECTION_STRING" {
			t.Fatalf("unexpected field: %q", verr.Field)
		}
	})

	t.Run("present", func(t *testing.T) {
		cfg, err := Load(Sources{Base: writeEnvFile(t, "base.env",
			"IS_LOCAL=false\nAPPLICATIONINSIGHTS_CONNECTION_STRING=\"InstrumentationKey=k;IngestionEndpoint=https://example.com/\"\n")})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.LogMode() != logging.ModeRemote {
			t.Fatalf("expected remote log mode, got %s", cfg.LogMode())
		}
	})
}

func TestLogModeDefaultsToLocal(t *testing.T) {
	cfg, err := Load(Sources{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogMode() != logging.ModeLocal {
		t.Fatalf("expected local log mode, got %s", cfg.LogMode())
	}
}
