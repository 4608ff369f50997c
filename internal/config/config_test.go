package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_YML(t *testing.T) {
	dir := t.TempDir()
	content := `primary:
  endpoint: https://api.groq.com/openai/v1
  model: llama-3.3-70b-versatile
temperature: 0.8
stageTimeout: 90s
dataDir: /var/lib/contentstudio
tone: thoughtful
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contentstudio.yml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Primary.Model)
	assert.Equal(t, 0.8, cfg.Temperature)
	assert.Equal(t, 90*time.Second, cfg.StageTimeout.Std())
	assert.Equal(t, "thoughtful", cfg.Tone)
	assert.Equal(t, filepath.Join("/var/lib/contentstudio", "brand.db"), cfg.BrandDBPath())
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contentstudio.yaml"), []byte("primary: ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestDBPaths_Default(t *testing.T) {
	cfg := &ProjectConfig{}
	assert.Equal(t, filepath.Join("data", "brand.db"), cfg.BrandDBPath())
	assert.Equal(t, filepath.Join("data", "history.db"), cfg.HistoryDBPath())
}

func TestBackendConfig_APIKey(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "abc")
	t.Setenv("GROQ_API_KEY", "xyz")

	assert.Equal(t, "abc", BackendConfig{KeyEnv: "CUSTOM_KEY"}.APIKey("GROQ_API_KEY"))
	assert.Equal(t, "xyz", BackendConfig{}.APIKey("GROQ_API_KEY"))
}
