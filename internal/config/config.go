package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the temudoc API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Search     SearchConfig     `yaml:"search"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Speech     SpeechConfig     `yaml:"speech"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CorpusConfig holds corpus seeding settings.
type CorpusConfig struct {
	SeedPath string `yaml:"seed_path"` // optional YAML seed file; empty = start empty
}

// SearchConfig holds ranking engine settings.
type SearchConfig struct {
	CorrectionCutoff float64 `yaml:"correction_cutoff"` // typo similarity threshold (default 0.6)
	Clusters         int     `yaml:"clusters"`          // k for clustering (default 2)
	KMeansRuns       int     `yaml:"kmeans_runs"`       // random restarts (default 10)
	KMeansSeed       int64   `yaml:"kmeans_seed"`       // fixed seed (default 42)
}

// PreprocessConfig holds text normalization settings.
type PreprocessConfig struct {
	Language string `yaml:"language"` // indonesian, english (default: indonesian)
}

// SpeechConfig holds speech-to-text provider settings.
// An empty api_key disables voice search.
type SpeechConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`    // default whisper-1
	Language string `yaml:"language"` // default id
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.CorrectionCutoff <= 0 {
		c.Search.CorrectionCutoff = 0.6
	}
	if c.Search.Clusters <= 0 {
		c.Search.Clusters = 2
	}
	if c.Search.KMeansRuns <= 0 {
		c.Search.KMeansRuns = 10
	}
	if c.Search.KMeansSeed == 0 {
		c.Search.KMeansSeed = 42
	}
	if c.Preprocess.Language == "" {
		c.Preprocess.Language = "indonesian"
	}
	if c.Speech.Model == "" {
		c.Speech.Model = "whisper-1"
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "id"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.CorrectionCutoff <= 0 || c.Search.CorrectionCutoff > 1 {
		return fmt.Errorf("search.correction_cutoff must be in (0, 1], got %g", c.Search.CorrectionCutoff)
	}
	if c.Search.Clusters < 2 {
		return fmt.Errorf("search.clusters must be at least 2, got %d", c.Search.Clusters)
	}
	switch c.Preprocess.Language {
	case "indonesian", "english":
		// ok
	default:
		return fmt.Errorf(
			"preprocess.language must be \"indonesian\" or \"english\", got %q",
			c.Preprocess.Language,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
