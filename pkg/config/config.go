package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for tangle.
type Config struct {
	// Import resolution
	Resolve ResolveConfig `koanf:"resolve" toml:"resolve" json:"resolve"`

	// Dead-code classification
	DeadCode DeadCodeConfig `koanf:"deadcode" toml:"deadcode" json:"deadcode"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" json:"exclude"`

	// Results cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" json:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" json:"output"`

	// Watch mode settings
	Watch WatchConfig `koanf:"watch" toml:"watch" json:"watch"`

	// Graph export settings
	Neo4j Neo4jConfig `koanf:"neo4j" toml:"neo4j" json:"neo4j"`
}

// ResolveConfig controls how import specifiers map to files.
type ResolveConfig struct {
	// Aliases maps specifier prefixes to directories, e.g. "@/" = "src/".
	Aliases    map[string]string `koanf:"aliases" toml:"aliases" json:"aliases"`
	Extensions []string          `koanf:"extensions" toml:"extensions" json:"extensions"`
	LRUSize    int               `koanf:"lru_size" toml:"lru_size" json:"lru_size"`
}

// AliasPrefixes returns the configured alias prefixes.
func (r ResolveConfig) AliasPrefixes() []string {
	prefixes := make([]string, 0, len(r.Aliases))
	for p := range r.Aliases {
		prefixes = append(prefixes, p)
	}
	return prefixes
}

// DeadCodeConfig controls which findings are reported.
type DeadCodeConfig struct {
	// Ignore lists glob patterns of files whose declarations are never reported.
	Ignore               []string `koanf:"ignore" toml:"ignore" json:"ignore"`
	IgnoreNames          []string `koanf:"ignore_names" toml:"ignore_names" json:"ignore_names"`
	IgnoreUnderscoreArgs bool     `koanf:"ignore_underscore_args" toml:"ignore_underscore_args" json:"ignore_underscore_args"`
	// Categories restricts reporting; empty means all.
	Categories  []string `koanf:"categories" toml:"categories" json:"categories"`
	MaxFileSize int64    `koanf:"max_file_size" toml:"max_file_size" json:"max_file_size"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" json:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" json:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" json:"gitignore"`
}

// CacheConfig controls the on-disk results cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" json:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" json:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" json:"color"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce string `koanf:"debounce" toml:"debounce" json:"debounce"`
	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr" toml:"metrics_addr" json:"metrics_addr"`
}

// DebounceDuration parses Debounce, falling back to 300ms.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// Neo4jConfig holds the graph export target.
type Neo4jConfig struct {
	URI       string `koanf:"uri" toml:"uri" json:"uri"`
	User      string `koanf:"user" toml:"user" json:"user"`
	Password  string `koanf:"password" toml:"password" json:"password"`
	Database  string `koanf:"database" toml:"database" json:"database"`
	BatchSize int    `koanf:"batch_size" toml:"batch_size" json:"batch_size"`
}

// ApplyEnv overrides the Neo4j settings from NEO4J_URI, NEO4J_USER,
// NEO4J_PASSWORD and NEO4J_DATABASE when they are set.
func (n *Neo4jConfig) ApplyEnv() {
	for env, dst := range map[string]*string{
		"NEO4J_URI":      &n.URI,
		"NEO4J_USER":     &n.User,
		"NEO4J_PASSWORD": &n.Password,
		"NEO4J_DATABASE": &n.Database,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Resolve: ResolveConfig{
			Aliases:    map[string]string{},
			Extensions: []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs"},
			LRUSize:    4096,
		},
		DeadCode: DeadCodeConfig{
			Ignore:               []string{"**/*.d.ts"},
			IgnoreNames:          []string{},
			IgnoreUnderscoreArgs: true,
			Categories:           []string{},
			MaxFileSize:          1 << 20,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.bundle.js",
			},
			Dirs: []string{
				"node_modules",
				".git",
				".tangle",
				"dist",
				"build",
				"coverage",
				".next",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".tangle/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
		Neo4j: Neo4jConfig{
			URI:       "neo4j://localhost:7687",
			User:      "neo4j",
			Database:  "neo4j",
			BatchSize: 500,
		},
	}
}

// ValidationError reports a configuration that failed validation.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("invalid configuration in %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the config against the embedded schema and checks the
// values the schema cannot express.
func (c *Config) Validate() error {
	if err := validateSchema(c); err != nil {
		return &ValidationError{Err: err}
	}

	var errs []error
	for _, p := range append(append([]string{}, c.DeadCode.Ignore...), c.DeadCode.IgnoreNames...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("deadcode: invalid pattern %q: %w", p, err))
		}
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			errs = append(errs, fmt.Errorf("watch.debounce: %w", err))
		}
	}
	for prefix := range c.Resolve.Aliases {
		if prefix == "" {
			errs = append(errs, errors.New("resolve.aliases: empty prefix"))
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Err: errors.Join(errs...)}
	}
	return nil
}

// parserFor picks a koanf parser from the file extension.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := validateRaw(k.Raw()); err != nil {
		return nil, &ValidationError{Source: path, Err: err}
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigNames are the file names searched for, in order.
var ConfigNames = []string{
	"tangle.toml",
	"tangle.yaml",
	"tangle.yml",
	"tangle.json",
	".tangle.toml",
	".tangle.yaml",
	".tangle.yml",
	".tangle.json",
}

// SearchDirs are the directories searched for a config file.
var SearchDirs = []string{".", ".tangle"}

// LoadResult is a loaded configuration and the file it came from. Source is
// empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dir  string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads a specific file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches relative to dir instead of the working directory.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// Find returns the first config file in the search locations under dir.
func Find(dir string) string {
	for _, sub := range SearchDirs {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, sub, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadConfig loads and validates the configuration. An explicit path must
// exist; otherwise the search locations are tried and defaults are used
// when nothing is found.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = Find(o.dir)
	}
	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Source = path
		}
		return nil, err
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// LoadOrDefault tries to load config from standard locations or returns
// defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(slashed, "/"+dir+"/") || strings.HasPrefix(slashed, dir+"/") {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
