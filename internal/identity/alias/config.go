// Package alias resolves external identity-provider user strings to the
// canonical UserIDs the task-lifecycle core operates on.
//
// Different identity providers federated into the platform (SSO email,
// LDAP DN, an external enclave-operator's own user directory) may refer to
// the same participant with different strings. Without resolution, two
// requests for the same human could be treated as two different
// participants, silently splitting their approval weight and ownership
// declarations. This package provides configuration loading and
// pattern-based resolution to map provider-specific identities to a single
// canonical UserID before they ever reach internal/task.
package alias

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conclave-run/taskcore/internal/config"
)

type (
	// Pattern defines a pattern-based transformation rule for external
	// user identifiers.
	//
	// Patterns are evaluated in order; first match wins.
	// Pattern syntax:
	//   - {variable} captures any characters except "/"
	//   - {variable*} captures any characters including "/" (for paths)
	//   - Literal characters match exactly
	//
	// Example:
	//
	//	Pattern: "okta:{email}"
	//	Canonical: "{email}"
	//	Input: "okta:alice@corp.example" → Output: "alice@corp.example"
	Pattern struct {
		Pattern   string `yaml:"pattern"`
		Canonical string `yaml:"canonical"`
	}

	// Config holds user-alias pattern configuration loaded from
	// .taskcore-identity.yaml.
	Config struct {
		//nolint:tagliatelle // snake_case is intentional for YAML config files
		UserPatterns []Pattern `yaml:"user_patterns"`
	}
)

const (
	// DefaultConfigPath is the default location for the identity-alias
	// configuration file.
	DefaultConfigPath = ".taskcore-identity.yaml"

	// ConfigPathEnvVar is the environment variable name for a custom
	// config path.
	ConfigPathEnvVar = "TASKCORE_IDENTITY_CONFIG_PATH"
)

// LoadConfig loads pattern configuration from a YAML file at the given path.
//
// Behavior:
//   - Returns empty config (not error) if the file doesn't exist - patterns
//     are optional, since not every deployment federates multiple identity
//     providers.
//   - Returns empty config + logs a warning if the YAML is invalid
//     (graceful degradation: a broken config must never block the RPC
//     layer from starting).
//   - Returns populated config on success.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		UserPatterns: []Pattern{},
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("identity alias config not found, continuing without patterns",
				slog.String("path", path))

			return cfg, nil
		}

		slog.Warn("failed to read identity alias config, continuing without patterns",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return cfg, nil
	}

	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("failed to parse identity alias config, continuing without patterns",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return &Config{UserPatterns: []Pattern{}}, nil
	}

	if cfg.UserPatterns == nil {
		cfg.UserPatterns = []Pattern{}
	}

	return cfg, nil
}

// LoadConfigFromEnv loads config from the path named by
// TASKCORE_IDENTITY_CONFIG_PATH, falling back to DefaultConfigPath.
func LoadConfigFromEnv() (*Config, error) {
	path := config.GetEnvStr(ConfigPathEnvVar, DefaultConfigPath)

	return LoadConfig(path)
}
