package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.ListenAddr != "127.0.0.1:8790" {
		t.Fatalf("default listen addr wrong: %s", cfg.Server.ListenAddr)
	}
	if cfg.Engine.MaxStepsPerCommand != 10_000 {
		t.Fatalf("default step bound wrong: %d", cfg.Engine.MaxStepsPerCommand)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RPS != 30 || cfg.RateLimit.Burst != 60 {
		t.Fatalf("default rate limit wrong: %+v", cfg.RateLimit)
	}
}

func TestLoadFromPathReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listenAddr: "0.0.0.0:9999"
engine:
  maxStepsPerCommand: 250
notifications:
  backlog: 16
rateLimit:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := LoadFromPath(path)
	if cfg.Server.ListenAddr != "0.0.0.0:9999" {
		t.Fatalf("listen addr not loaded: %s", cfg.Server.ListenAddr)
	}
	if cfg.Engine.MaxStepsPerCommand != 250 {
		t.Fatalf("step bound not loaded: %d", cfg.Engine.MaxStepsPerCommand)
	}
	if cfg.Notifications.Backlog != 16 {
		t.Fatalf("backlog not loaded: %d", cfg.Notifications.Backlog)
	}
	if cfg.RateLimit.Enabled {
		t.Fatalf("rate limit disable not honored")
	}
	// Unset fields keep defaults.
	if cfg.Snapshot.Path != Default().Snapshot.Path {
		t.Fatalf("unset snapshot path must default, got %s", cfg.Snapshot.Path)
	}
}

func TestLoadFromPathMissingFileYieldsDefaults(t *testing.T) {
	cfg := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.Server.ListenAddr != Default().Server.ListenAddr {
		t.Fatalf("missing file must yield defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROPNET_SNAPSHOT_PASSPHRASE", "hunter2")
	t.Setenv("PROPNET_RPC_TOKEN", "tok")
	t.Setenv("PROPNET_MAX_STEPS", "77")

	cfg := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.Snapshot.Passphrase != "hunter2" {
		t.Fatalf("passphrase override not applied")
	}
	if cfg.Server.RPCToken != "tok" {
		t.Fatalf("token override not applied")
	}
	if cfg.Engine.MaxStepsPerCommand != 77 {
		t.Fatalf("step override not applied: %d", cfg.Engine.MaxStepsPerCommand)
	}
}

func TestNormalizeRejectsNonPositive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  maxStepsPerCommand: -5\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := LoadFromPath(path)
	if cfg.Engine.MaxStepsPerCommand != Default().Engine.MaxStepsPerCommand {
		t.Fatalf("non-positive step bound must fall back to the default")
	}
}
