package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	srv, err := LoadServer("")
	if err != nil {
		t.Fatalf("LoadServer returned error: %v", err)
	}
	if srv != DefaultServer() {
		t.Fatalf("expected defaults for empty path, got %+v", srv)
	}
}

func TestLoadServerFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := "shutdown_grace_period: 2s\nwrite_timeout: 30s\nenable_request_logging: false\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	srv, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer returned error: %v", err)
	}

	if srv.ShutdownGracePeriod != 2*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", srv.ShutdownGracePeriod)
	}
	if srv.WriteTimeout != 30*time.Second {
		t.Fatalf("unexpected write timeout: %s", srv.WriteTimeout)
	}
	if srv.EnableRequestLogging {
		t.Fatalf("expected request logging to be disabled")
	}
	if srv.IdleTimeout != DefaultServer().IdleTimeout {
		t.Fatalf("expected untouched field to keep its default")
	}
}

func TestLoadServerKeepsDefaultOnBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte("read_header_timeout: soon\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	srv, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer returned error: %v", err)
	}
	if srv.ReadHeaderTimeout != DefaultServer().ReadHeaderTimeout {
		t.Fatalf("expected default read header timeout, got %s", srv.ReadHeaderTimeout)
	}
}

func TestLoadServerMissingFile(t *testing.T) {
	if _, err := LoadServer(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
