package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// Dir holds config.json and the cache database
	Dir = ".depchain"

	// EnvPrefix prefixes environment overrides, e.g. DEPCHAIN_FETCH_BATCHSIZE
	EnvPrefix = "DEPCHAIN"

	currentVersion = 1
)

// Cache backends
const (
	CacheSQLite = "sqlite"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Config represents the complete depchain configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Fetch     FetchConfig     `json:"fetch" mapstructure:"fetch"`
	GitHub    GitHubConfig    `json:"github" mapstructure:"github"`
	Cache     CacheConfig     `json:"cache" mapstructure:"cache"`
	Local     LocalConfig     `json:"local" mapstructure:"local"`
	Traversal TraversalConfig `json:"traversal" mapstructure:"traversal"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// FetchConfig controls how file contents are retrieved
type FetchConfig struct {
	BatchSize        int   `json:"batchSize" mapstructure:"batchSize"`
	TimeoutMs        int   `json:"timeoutMs" mapstructure:"timeoutMs"`
	MaxFileSizeBytes int64 `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
}

// GitHubConfig points the remote source at an API and raw content host
type GitHubConfig struct {
	APIBaseURL string `json:"apiBaseUrl" mapstructure:"apiBaseUrl"`
	RawBaseURL string `json:"rawBaseUrl" mapstructure:"rawBaseUrl"`
	Token      string `json:"token,omitempty" mapstructure:"token"`

	// RequestsPerSecond throttles GitHub requests; zero means unthrottled
	RequestsPerSecond float64 `json:"requestsPerSecond" mapstructure:"requestsPerSecond"`
}

// CacheConfig selects the listing cache
type CacheConfig struct {
	Backend           string `json:"backend" mapstructure:"backend"`
	ListingTtlSeconds int    `json:"listingTtlSeconds" mapstructure:"listingTtlSeconds"`
	MemoryEntries     int    `json:"memoryEntries" mapstructure:"memoryEntries"`
}

// LocalConfig applies to local checkouts
type LocalConfig struct {
	Ignore []string `json:"ignore" mapstructure:"ignore"`
}

// TraversalConfig bounds the dependents search
type TraversalConfig struct {
	// MaxDepth of zero leaves the depth bounded only by the repository size
	MaxDepth int `json:"maxDepth" mapstructure:"maxDepth"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: currentVersion,
		Fetch: FetchConfig{
			BatchSize:        10,
			TimeoutMs:        15000,
			MaxFileSizeBytes: 2 << 20,
		},
		GitHub: GitHubConfig{
			APIBaseURL: "https://api.github.com",
			RawBaseURL: "https://raw.githubusercontent.com",
		},
		Cache: CacheConfig{
			Backend:           CacheSQLite,
			ListingTtlSeconds: 300,
			MemoryEntries:     64,
		},
		Local: LocalConfig{
			Ignore: []string{".git", "node_modules", "__pycache__", ".venv", "venv", ".depchain"},
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// setDefaults registers every key so environment overrides apply even when
// no config file exists.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("fetch.batchSize", d.Fetch.BatchSize)
	v.SetDefault("fetch.timeoutMs", d.Fetch.TimeoutMs)
	v.SetDefault("fetch.maxFileSizeBytes", d.Fetch.MaxFileSizeBytes)
	v.SetDefault("github.apiBaseUrl", d.GitHub.APIBaseURL)
	v.SetDefault("github.rawBaseUrl", d.GitHub.RawBaseURL)
	v.SetDefault("github.token", "")
	v.SetDefault("github.requestsPerSecond", d.GitHub.RequestsPerSecond)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.listingTtlSeconds", d.Cache.ListingTtlSeconds)
	v.SetDefault("cache.memoryEntries", d.Cache.MemoryEntries)
	v.SetDefault("local.ignore", d.Local.Ignore)
	v.SetDefault("traversal.maxDepth", d.Traversal.MaxDepth)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// LoadConfig loads .depchain/config.json under root, layering DEPCHAIN_*
// environment variables on top. A missing file yields the defaults. The
// GitHub token also falls back to GITHUB_TOKEN.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, Dir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to .depchain/config.json under root. The
// token is never persisted.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	out := *c
	out.GitHub.Token = ""
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != currentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Fetch.BatchSize <= 0 {
		return &ConfigError{Field: "fetch.batchSize", Message: "must be positive"}
	}
	if c.Fetch.TimeoutMs <= 0 {
		return &ConfigError{Field: "fetch.timeoutMs", Message: "must be positive"}
	}
	if c.Fetch.MaxFileSizeBytes <= 0 {
		return &ConfigError{Field: "fetch.maxFileSizeBytes", Message: "must be positive"}
	}
	if c.GitHub.RequestsPerSecond < 0 {
		return &ConfigError{Field: "github.requestsPerSecond", Message: "must not be negative"}
	}
	switch c.Cache.Backend {
	case CacheSQLite, CacheMemory, CacheNone:
	default:
		return &ConfigError{Field: "cache.backend", Message: fmt.Sprintf("unknown backend %q", c.Cache.Backend)}
	}
	if c.Cache.ListingTtlSeconds < 0 {
		return &ConfigError{Field: "cache.listingTtlSeconds", Message: "must not be negative"}
	}
	if c.Traversal.MaxDepth < 0 {
		return &ConfigError{Field: "traversal.maxDepth", Message: "must not be negative"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
