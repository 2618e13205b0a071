// Package config loads daemon configuration from YAML with environment
// overrides for secrets.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	snapshotPassphraseEnv = "PROPNET_SNAPSHOT_PASSPHRASE"
	rpcTokenEnv           = "PROPNET_RPC_TOKEN"
)

type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Snapshot      SnapshotConfig     `yaml:"snapshot"`
	Engine        EngineConfig       `yaml:"engine"`
	Notifications NotificationConfig `yaml:"notifications"`
	RateLimit     RateLimitConfig    `yaml:"rateLimit"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	// RPCToken gates the command surface when set; the environment
	// override wins over the file.
	RPCToken string `yaml:"rpcToken"`
}

type SnapshotConfig struct {
	Path string `yaml:"path"`
	// Passphrase seals the snapshot file; set via environment, never in
	// the file itself.
	Passphrase string `yaml:"-"`
}

type EngineConfig struct {
	MaxStepsPerCommand int `yaml:"maxStepsPerCommand"`
}

type NotificationConfig struct {
	Backlog int `yaml:"backlog"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

func Default() Config {
	return Config{
		Server:        ServerConfig{ListenAddr: "127.0.0.1:8790"},
		Snapshot:      SnapshotConfig{Path: filepath.Join("data", "network.snapshot")},
		Engine:        EngineConfig{MaxStepsPerCommand: 10_000},
		Notifications: NotificationConfig{Backlog: 1024},
		RateLimit:     RateLimitConfig{Enabled: true, RPS: 30, Burst: 60},
	}
}

// LoadFromPath reads configuration from the given path, or from fallback
// candidates when the path is empty. A missing file yields the defaults;
// environment overrides are applied last.
func LoadFromPath(configPath string) Config {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"configs/config.yaml",
			filepath.Join("propnet", "configs", "config.yaml"),
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			slog.Default().Warn("config file ignored", "path", path, "error", err)
			continue
		}
		break
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(snapshotPassphraseEnv)); v != "" {
		cfg.Snapshot.Passphrase = v
	}
	if v := strings.TrimSpace(os.Getenv(rpcTokenEnv)); v != "" {
		cfg.Server.RPCToken = v
	}
	if v := strings.TrimSpace(os.Getenv("PROPNET_MAX_STEPS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Engine.MaxStepsPerCommand = parsed
		}
	}
}

func normalize(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = Default().Server.ListenAddr
	}
	if cfg.Engine.MaxStepsPerCommand <= 0 {
		cfg.Engine.MaxStepsPerCommand = Default().Engine.MaxStepsPerCommand
	}
	if cfg.Notifications.Backlog <= 0 {
		cfg.Notifications.Backlog = Default().Notifications.Backlog
	}
	if cfg.RateLimit.RPS <= 0 {
		cfg.RateLimit.RPS = Default().RateLimit.RPS
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = Default().RateLimit.Burst
	}
}
