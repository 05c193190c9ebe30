package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.Resolve.LRUSize != 4096 {
		t.Errorf("Resolve.LRUSize = %d, want 4096", cfg.Resolve.LRUSize)
	}
	if len(cfg.Resolve.Extensions) != 7 {
		t.Errorf("Resolve.Extensions = %v, want 7 entries", cfg.Resolve.Extensions)
	}
	if !cfg.DeadCode.IgnoreUnderscoreArgs {
		t.Error("DeadCode.IgnoreUnderscoreArgs should be true by default")
	}
	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if got := cfg.Watch.DebounceDuration(); got != 300*time.Millisecond {
		t.Errorf("Watch.DebounceDuration() = %v, want 300ms", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "tangle.toml", `
[resolve]
lru_size = 128

[resolve.aliases]
"@/" = "src/"

[deadcode]
ignore = ["**/generated/**"]
categories = ["unusedExport", "deadFunction"]

[watch]
debounce = "1s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Resolve.LRUSize != 128 {
		t.Errorf("Resolve.LRUSize = %d, want 128", cfg.Resolve.LRUSize)
	}
	if cfg.Resolve.Aliases["@/"] != "src/" {
		t.Errorf("Resolve.Aliases = %v, want @/ -> src/", cfg.Resolve.Aliases)
	}
	if len(cfg.DeadCode.Categories) != 2 {
		t.Errorf("DeadCode.Categories = %v, want 2 entries", cfg.DeadCode.Categories)
	}
	if cfg.Watch.DebounceDuration() != time.Second {
		t.Errorf("Watch.DebounceDuration() = %v, want 1s", cfg.Watch.DebounceDuration())
	}
	// Untouched sections keep their defaults.
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "tangle.yaml", `
output:
  format: toon
  color: false
exclude:
  dirs:
    - vendor
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %s, want toon", cfg.Output.Format)
	}
	if cfg.Output.Color {
		t.Error("Output.Color should be false")
	}
	if len(cfg.Exclude.Dirs) != 1 || cfg.Exclude.Dirs[0] != "vendor" {
		t.Errorf("Exclude.Dirs = %v, want [vendor]", cfg.Exclude.Dirs)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "tangle.json", `{"neo4j": {"uri": "bolt://db:7687", "batch_size": 50}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Neo4j.URI != "bolt://db:7687" {
		t.Errorf("Neo4j.URI = %s, want bolt://db:7687", cfg.Neo4j.URI)
	}
	if cfg.Neo4j.BatchSize != 50 {
		t.Errorf("Neo4j.BatchSize = %d, want 50", cfg.Neo4j.BatchSize)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/tangle.toml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown section", "[analysis]\ncomplexity = true\n"},
		{"unknown key", "[output]\nstyle = \"fancy\"\n"},
		{"bad format", "[output]\nformat = \"xml\"\n"},
		{"bad category", "[deadcode]\ncategories = [\"unusedThings\"]\n"},
		{"wrong type", "[cache]\nttl = \"soon\"\n"},
		{"extension without dot", "[resolve]\nextensions = [\"ts\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "tangle.toml", tt.content)
			_, err := Load(path)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Load() error = %v, want *ValidationError", err)
			}
			if ve.Source != path {
				t.Errorf("ValidationError.Source = %s, want %s", ve.Source, path)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }, true},
		{"bad glob", func(c *Config) { c.DeadCode.Ignore = []string{"src/[abc"} }, true},
		{"empty alias", func(c *Config) { c.Resolve.Aliases[""] = "src/" }, true},
		{"zero lru", func(c *Config) { c.Resolve.LRUSize = 0 }, true},
		{"nil slices", func(c *Config) { c.DeadCode.Ignore = nil; c.Exclude.Dirs = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "custom.toml", "[output]\nformat = \"json\"\n")
		result, err := LoadConfig(WithPath(path))
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if result.Source != path {
			t.Errorf("Source = %s, want %s", result.Source, path)
		}
		if result.Config.Output.Format != "json" {
			t.Errorf("Output.Format = %s, want json", result.Config.Output.Format)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		if _, err := LoadConfig(WithPath(filepath.Join(t.TempDir(), "nope.toml"))); err == nil {
			t.Error("LoadConfig() should fail for a missing explicit path")
		}
	})

	t.Run("search in .tangle dir", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, filepath.Join(".tangle", "tangle.yml"), "cache:\n  ttl: 2\n")
		result, err := LoadConfig(WithDir(dir))
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if result.Source != path {
			t.Errorf("Source = %s, want %s", result.Source, path)
		}
		if result.Config.Cache.TTL != 2 {
			t.Errorf("Cache.TTL = %d, want 2", result.Config.Cache.TTL)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		result, err := LoadConfig(WithDir(t.TempDir()))
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if result.Source != "" {
			t.Errorf("Source = %s, want empty", result.Source)
		}
		if result.Config.Output.Format != "text" {
			t.Errorf("Output.Format = %s, want text", result.Config.Output.Format)
		}
	})

	t.Run("semantic error carries source", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "tangle.toml", "[watch]\ndebounce = \"later\"\n")
		_, err := LoadConfig(WithPath(path))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("LoadConfig() error = %v, want *ValidationError", err)
		}
		if ve.Source != path {
			t.Errorf("ValidationError.Source = %s, want %s", ve.Source, path)
		}
	})
}

func TestFindPrefersRootDir(t *testing.T) {
	dir := t.TempDir()
	root := writeConfig(t, dir, "tangle.toml", "")
	writeConfig(t, dir, filepath.Join(".tangle", "tangle.toml"), "")

	if got := Find(dir); got != root {
		t.Errorf("Find() = %s, want %s", got, root)
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{"src/index.ts", false},
		{"node_modules/react/index.js", true},
		{"packages/app/node_modules/x/index.js", true},
		{"dist/main.js", true},
		{"public/vendor.min.js", true},
		{"src/app.bundle.js", true},
		{"src/distance.ts", false},
	}

	for _, tt := range tests {
		if got := cfg.ShouldExclude(tt.path); got != tt.want {
			t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNeo4jApplyEnv(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://env:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")

	n := DefaultConfig().Neo4j
	n.ApplyEnv()

	if n.URI != "bolt://env:7687" {
		t.Errorf("URI = %s, want bolt://env:7687", n.URI)
	}
	if n.Password != "secret" {
		t.Errorf("Password = %s, want secret", n.Password)
	}
	if n.User != "neo4j" {
		t.Errorf("User = %s, want neo4j", n.User)
	}
}
