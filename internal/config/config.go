// Package config loads and validates hippo's configuration.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is hippo's complete configuration, covering storage location,
// hybrid search weights, indexing performance knobs, the watcher debounce
// window, and the periodic re-sync scheduler.
type Config struct {
	Version     int               `yaml:"version" json:"version"`
	DataDir     string            `yaml:"data_dir" json:"data_dir"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	Embeddings  EmbeddingsConfig  `yaml:"embeddings" json:"embeddings"`
	Performance PerformanceConfig `yaml:"performance" json:"performance"`
	Watch       WatchConfig       `yaml:"watch" json:"watch"`
	Scheduler   SchedulerConfig   `yaml:"scheduler" json:"scheduler"`
}

// SearchConfig configures hybrid search fusion.
// Weights and the RRF constant are configurable via:
//  1. User config (~/.config/hippo/config.yaml) - personal defaults
//  2. Project config (.hippo.yaml) - per-directory tuning
//  3. Env vars (HIPPO_KEYWORD_WEIGHT, HIPPO_SEMANTIC_WEIGHT, HIPPO_RRF_CONSTANT) - highest precedence
type SearchConfig struct {
	// KeywordWeight is the weight given to the BM25-style keyword score (0.0-1.0).
	// Must sum to 1.0 with SemanticWeight.
	KeywordWeight float64 `yaml:"keyword_weight" json:"keyword_weight"`

	// SemanticWeight is the weight given to vector similarity (0.0-1.0).
	// Must sum to 1.0 with KeywordWeight.
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`

	// RRFConstant is the reciprocal-rank-fusion smoothing parameter (k).
	// Default: 60 (industry standard used by Azure AI Search, OpenSearch).
	RRFConstant int `yaml:"rrf_constant" json:"rrf_constant"`

	// MaxCandidates bounds the SQL prefilter before in-process scoring.
	MaxCandidates int `yaml:"max_candidates" json:"max_candidates"`

	MaxResults int `yaml:"max_results" json:"max_results"`
}

// EmbeddingsConfig points at the vector backend hippo hands file content to.
// hippo does not train or ship a model; it talks to a locally running model
// server (Ollama by default, MLX opt-in on Apple Silicon) over HTTP and
// stores whatever fixed-length vector comes back.
type EmbeddingsConfig struct {
	// Provider selects which embed.Embedder to construct: "ollama" (default),
	// "mlx", or "static" (deterministic hash-based vectors, no server needed).
	Provider string `yaml:"provider" json:"provider"`

	// BackendURL overrides the provider's default host (e.g. a remote Ollama
	// instance instead of localhost). Empty uses the provider's default host.
	BackendURL string `yaml:"backend_url" json:"backend_url"`

	// Model names the embedding model to request from the backend. Empty
	// lets the provider pick its own default model.
	Model string `yaml:"model" json:"model"`

	// RequestTimeout bounds a single embed call.
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// PerformanceConfig configures indexing throughput and resource usage.
type PerformanceConfig struct {
	MaxFiles      int `yaml:"max_files" json:"max_files"`
	IndexWorkers  int `yaml:"index_workers" json:"index_workers"`
	SQLiteCacheMB int `yaml:"sqlite_cache_mb" json:"sqlite_cache_mb"`
}

// WatchConfig configures the filesystem watcher's debounce window.
type WatchConfig struct {
	// DebounceWindow coalesces bursts of events per path (default 500ms).
	DebounceWindow time.Duration `yaml:"debounce_window" json:"debounce_window"`
}

// SchedulerConfig configures the periodic re-sync loop.
type SchedulerConfig struct {
	// TickInterval is how often the scheduler wakes to check sources (default 300s).
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval"`
	// SourceInterval is the minimum time between re-syncs of the same source (default 3600s).
	SourceInterval time.Duration `yaml:"source_interval" json:"source_interval"`
}

// NewConfig creates a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		DataDir: defaultDataDir(),
		Search: SearchConfig{
			KeywordWeight:  0.3,
			SemanticWeight: 0.7,
			RRFConstant:    60,
			MaxCandidates:  5000,
			MaxResults:     20,
		},
		Embeddings: EmbeddingsConfig{
			Provider:       "ollama",
			BackendURL:     "",
			Model:          "",
			RequestTimeout: 10 * time.Second,
		},
		Performance: PerformanceConfig{
			MaxFiles:      100000,
			IndexWorkers:  workerCount(),
			SQLiteCacheMB: 64,
		},
		Watch: WatchConfig{
			DebounceWindow: 500 * time.Millisecond,
		},
		Scheduler: SchedulerConfig{
			TickInterval:   300 * time.Second,
			SourceInterval: 3600 * time.Second,
		},
	}
}

// workerCount returns the worker pool size, capped at 8 per the concurrency model.
func workerCount() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	return n
}

// defaultDataDir returns ~/.hippo/data, falling back to a temp directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".hippo", "data")
	}
	return filepath.Join(home, ".hippo", "data")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/hippo/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/hippo/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hippo", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "hippo", "config.yaml")
	}
	return filepath.Join(home, ".config", "hippo", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns a nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration from the specified directory, applying overrides
// in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/hippo/config.yaml)
//  3. Project config (.hippo.yaml in dir)
//  4. Environment variables (HIPPO_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .hippo.yaml or .hippo.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".hippo.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".hippo.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}

	if other.Search.KeywordWeight != 0 {
		c.Search.KeywordWeight = other.Search.KeywordWeight
	}
	if other.Search.SemanticWeight != 0 {
		c.Search.SemanticWeight = other.Search.SemanticWeight
	}
	if other.Search.RRFConstant != 0 {
		c.Search.RRFConstant = other.Search.RRFConstant
	}
	if other.Search.MaxCandidates != 0 {
		c.Search.MaxCandidates = other.Search.MaxCandidates
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.BackendURL != "" {
		c.Embeddings.BackendURL = other.Embeddings.BackendURL
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.RequestTimeout != 0 {
		c.Embeddings.RequestTimeout = other.Embeddings.RequestTimeout
	}

	if other.Performance.MaxFiles != 0 {
		c.Performance.MaxFiles = other.Performance.MaxFiles
	}
	if other.Performance.IndexWorkers != 0 {
		c.Performance.IndexWorkers = other.Performance.IndexWorkers
	}
	if other.Performance.SQLiteCacheMB != 0 {
		c.Performance.SQLiteCacheMB = other.Performance.SQLiteCacheMB
	}

	if other.Watch.DebounceWindow != 0 {
		c.Watch.DebounceWindow = other.Watch.DebounceWindow
	}

	if other.Scheduler.TickInterval != 0 {
		c.Scheduler.TickInterval = other.Scheduler.TickInterval
	}
	if other.Scheduler.SourceInterval != 0 {
		c.Scheduler.SourceInterval = other.Scheduler.SourceInterval
	}
}

// applyEnvOverrides applies HIPPO_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HIPPO_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("HIPPO_VECTOR_BACKEND_URL"); v != "" {
		c.Embeddings.BackendURL = v
	}
	if v := os.Getenv("HIPPO_EMBED_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("HIPPO_KEYWORD_WEIGHT"); v != "" {
		if w, err := parseFloat64(v); err == nil && w >= 0 && w <= 1 {
			c.Search.KeywordWeight = w
		}
	}
	if v := os.Getenv("HIPPO_SEMANTIC_WEIGHT"); v != "" {
		if w, err := parseFloat64(v); err == nil && w >= 0 && w <= 1 {
			c.Search.SemanticWeight = w
		}
	}
	if v := os.Getenv("HIPPO_RRF_CONSTANT"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Search.RRFConstant = k
		}
	}
	if v := os.Getenv("HIPPO_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Watch.DebounceWindow = d
		}
	}
}

// parseFloat64 parses a string to float64, used for config parsing.
func parseFloat64(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f, err
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FindProjectRoot walks upward from startDir looking for a .git directory
// or a .hippo.yaml/.hippo.yml file, returning the first directory found to
// contain one. If neither is found before reaching the filesystem root,
// the absolute form of startDir is returned unchanged.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if fileExists(filepath.Join(currentDir, ".hippo.yaml")) ||
			fileExists(filepath.Join(currentDir, ".hippo.yml")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Search.KeywordWeight < 0 || c.Search.KeywordWeight > 1 {
		return fmt.Errorf("search.keyword_weight must be between 0 and 1, got %f", c.Search.KeywordWeight)
	}
	if c.Search.SemanticWeight < 0 || c.Search.SemanticWeight > 1 {
		return fmt.Errorf("search.semantic_weight must be between 0 and 1, got %f", c.Search.SemanticWeight)
	}

	sum := c.Search.KeywordWeight + c.Search.SemanticWeight
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("search.keyword_weight + search.semantic_weight must equal 1.0, got %.2f", sum)
	}

	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}
	if c.Search.MaxCandidates < 0 {
		return fmt.Errorf("search.max_candidates must be non-negative, got %d", c.Search.MaxCandidates)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadUserConfig loads the user configuration file.
// Returns a nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// MergeNewDefaults adds new default fields while preserving existing values.
// Used when loading a config file written by an older version that predates
// a field; returns the list of field names that were filled in.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	if c.Search.KeywordWeight == 0 {
		c.Search.KeywordWeight = defaults.Search.KeywordWeight
		added = append(added, "search.keyword_weight")
	}
	if c.Search.SemanticWeight == 0 {
		c.Search.SemanticWeight = defaults.Search.SemanticWeight
		added = append(added, "search.semantic_weight")
	}
	if c.Search.RRFConstant == 0 {
		c.Search.RRFConstant = defaults.Search.RRFConstant
		added = append(added, "search.rrf_constant")
	}
	if c.Search.MaxCandidates == 0 {
		c.Search.MaxCandidates = defaults.Search.MaxCandidates
		added = append(added, "search.max_candidates")
	}

	if c.Performance.SQLiteCacheMB == 0 {
		c.Performance.SQLiteCacheMB = defaults.Performance.SQLiteCacheMB
		added = append(added, "performance.sqlite_cache_mb")
	}

	if c.Watch.DebounceWindow == 0 {
		c.Watch.DebounceWindow = defaults.Watch.DebounceWindow
		added = append(added, "watch.debounce_window")
	}

	if c.Scheduler.TickInterval == 0 {
		c.Scheduler.TickInterval = defaults.Scheduler.TickInterval
		added = append(added, "scheduler.tick_interval")
	}
	if c.Scheduler.SourceInterval == 0 {
		c.Scheduler.SourceInterval = defaults.Scheduler.SourceInterval
		added = append(added, "scheduler.source_interval")
	}

	return added
}
