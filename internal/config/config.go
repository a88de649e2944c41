package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the tool configuration.
type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	Model     ModelConfig     `yaml:"model"`
	Scan      ScanConfig      `yaml:"scan"`
	Output    OutputConfig    `yaml:"output"`
}

// ProvidersConfig holds git provider configurations.
type ProvidersConfig struct {
	GitHub GitHubConfig `yaml:"github"`
	GitLab GitLabConfig `yaml:"gitlab"`
}

// GitHubConfig holds GitHub-specific settings.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// GitLabConfig holds GitLab-specific settings.
type GitLabConfig struct {
	Token string `yaml:"token"`
}

// ModelConfig holds local model settings.
type ModelConfig struct {
	// Runtime selects how the model runs: "local" (child process) or
	// "docker" (one-shot container per invocation).
	Runtime string `yaml:"runtime"`
	// Command is the model CLI without the model name, e.g. [ollama, run].
	Command []string `yaml:"command"`
	// Name is the model to invoke.
	Name string `yaml:"name"`
	// Image is the container image for the docker runtime.
	Image string `yaml:"image"`
	// CompareTimeoutSeconds bounds one comparison invocation.
	CompareTimeoutSeconds int `yaml:"compare_timeout_seconds"`
	// QualityTimeoutSeconds bounds one quality invocation. 0 means no
	// deadline, which is not recommended.
	QualityTimeoutSeconds int `yaml:"quality_timeout_seconds"`
}

// Argv returns the full model command, e.g. [ollama, run, mistral].
func (m ModelConfig) Argv() []string {
	return append(append([]string(nil), m.Command...), m.Name)
}

// ScanConfig holds scan bounds.
type ScanConfig struct {
	MaxForks      int `yaml:"max_forks"`
	MaxFiles      int `yaml:"max_files"`
	Workers       int `yaml:"workers"`
	CacheSize     int `yaml:"cache_size"`
	TruncateLimit int `yaml:"truncate_limit"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Runtime:               "local",
			Command:               []string{"ollama", "run"},
			Name:                  "mistral",
			CompareTimeoutSeconds: 120,
		},
		Scan: ScanConfig{
			MaxForks:      5,
			MaxFiles:      20,
			Workers:       4,
			CacheSize:     100,
			TruncateLimit: 10000,
		},
		Output: OutputConfig{
			Dir:           "output",
			RetentionDays: 30,
		},
	}
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
