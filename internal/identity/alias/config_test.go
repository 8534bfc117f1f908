package alias

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "identity.yaml")

	content := `
user_patterns:
  - pattern: "okta:{email}"
    canonical: "{email}"
  - pattern: "ldap/{dn*}"
    canonical: "ldap-user:{dn}"
`
	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Len(t, cfg.UserPatterns, 2)
	assert.Equal(t, "okta:{email}", cfg.UserPatterns[0].Pattern)
	assert.Equal(t, "{email}", cfg.UserPatterns[0].Canonical)
}

func TestLoadConfig_EmptyPatternsSection(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "identity.yaml")

	content := `
user_patterns:
`
	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.UserPatterns)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/identity.yaml")

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.UserPatterns)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "identity.yaml")

	content := `
user_patterns:
  - pattern: [invalid yaml
`
	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.UserPatterns)
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "identity.yaml")

	err := os.WriteFile(configPath, []byte(""), 0o600)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.UserPatterns)
}

func TestLoadConfigFromEnv_UsesEnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-identity.yaml")

	content := `
user_patterns:
  - pattern: "okta:{email}"
    canonical: "{email}"
`
	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err)

	t.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadConfigFromEnv()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Len(t, cfg.UserPatterns, 1)
}
