package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML strings like "90s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// BackendConfig selects one OpenAI-compatible inference endpoint. API keys
// come from the environment, never from the file.
type BackendConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
	KeyEnv   string `yaml:"keyEnv,omitempty"`
}

// APIKey resolves the backend's key from the configured env var, falling
// back to the given default variable name.
func (b BackendConfig) APIKey(defaultEnv string) string {
	env := b.KeyEnv
	if env == "" {
		env = defaultEnv
	}
	return os.Getenv(env)
}

// ProjectConfig holds project-level settings loaded from contentstudio.yml.
type ProjectConfig struct {
	Primary  BackendConfig `yaml:"primary,omitempty"`
	Fallback BackendConfig `yaml:"fallback,omitempty"`

	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"maxTokens,omitempty"`

	// StageTimeout bounds each pipeline stage. Zero means the built-in
	// default.
	StageTimeout Duration `yaml:"stageTimeout,omitempty"`

	// DataDir holds the sqlite stores (brand profiles, run history).
	DataDir string `yaml:"dataDir,omitempty"`

	// OutputDir receives exported results.
	OutputDir string `yaml:"outputDir,omitempty"`

	BrandProfile string `yaml:"brandProfile,omitempty"`
	Tone         string `yaml:"tone,omitempty"`
	Audience     string `yaml:"audience,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`
}

// BrandDBPath returns the brand profile store location under DataDir.
func (c *ProjectConfig) BrandDBPath() string {
	return filepath.Join(c.dataDir(), "brand.db")
}

// HistoryDBPath returns the run history store location under DataDir.
func (c *ProjectConfig) HistoryDBPath() string {
	return filepath.Join(c.dataDir(), "history.db")
}

func (c *ProjectConfig) dataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return "data"
}

// Load attempts to read contentstudio.yml or contentstudio.yaml from the
// given directory. Returns a zero-value config (not an error) if no config
// file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"contentstudio.yml", "contentstudio.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
