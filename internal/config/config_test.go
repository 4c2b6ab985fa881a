package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional, so each one is pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 15 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 15*time.Second {
			t.Errorf("expected Timeout to be 15s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxBodySize is 10MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 10*1024*1024 {
			t.Errorf("expected MaxBodySize to be 10MB, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("default concurrency", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
		if cfg.EnrichConcurrency != 8 {
			t.Errorf("expected EnrichConcurrency to be 8, got %d", cfg.EnrichConcurrency)
		}
	})

	t.Run("default server and history", func(t *testing.T) {
		t.Parallel()
		if cfg.ListenAddr != "127.0.0.1:8000" {
			t.Errorf("expected ListenAddr to be '127.0.0.1:8000', got '%s'", cfg.ListenAddr)
		}
		if cfg.HistoryLimit != 20 {
			t.Errorf("expected HistoryLimit to be 20, got %d", cfg.HistoryLimit)
		}
	})

	t.Run("AI is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.AIEnabled {
			t.Error("expected AIEnabled to be false")
		}
		if cfg.AIModel != "claude-haiku-4-5" {
			t.Errorf("expected AIModel to be 'claude-haiku-4-5', got '%s'", cfg.AIModel)
		}
	})

	t.Run("history is saved to the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBPath() != filepath.Join(XDGDataDir(), "webpulse.db") {
			t.Errorf("unexpected DBPath %q", cfg.DBPath())
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "valid", modify: func(*Config) {}, want: nil},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, want: ErrInvalidBatchSize},
		{name: "zero enrich concurrency", modify: func(c *Config) { c.EnrichConcurrency = 0 }, want: ErrInvalidEnrichConcurrency},
		{name: "json and markdown", modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, want: ErrConflictingReportFormats},
		{name: "json only", modify: func(c *Config) { c.JSONReport = true }, want: nil},
		{name: "negative max body size", modify: func(c *Config) { c.MaxBodySize = -1 }, want: ErrInvalidMaxBodySize},
		{name: "zero max body size uses default", modify: func(c *Config) { c.MaxBodySize = 0 }, want: nil},
		{name: "zero history limit", modify: func(c *Config) { c.HistoryLimit = 0 }, want: ErrInvalidHistoryLimit},
		{name: "empty listen address", modify: func(c *Config) { c.ListenAddr = "" }, want: ErrEmptyListenAddr},
		{name: "proxy and tor", modify: func(c *Config) { c.ProxyAddress, c.UseTor = "127.0.0.1:9050", true }, want: ErrConflictingProxy},
		{name: "tor only", modify: func(c *Config) { c.UseTor = true }, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigValidateScan(t *testing.T) {
	t.Parallel()

	t.Run("no targets returns ErrNoTarget", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := cfg.ValidateScan(); !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("targets with invalid options", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com"}
		cfg.Timeout = 0
		if err := cfg.ValidateScan(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("multiple targets is valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com", "https://example.org"}
		if err := cfg.ValidateScan(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestFileGetSiteConfig tests merging defaults with per-site settings.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: SiteConfig{
			Cookie:  "consent=yes",
			Headers: map[string]string{"Accept-Language": "en", "X-Env": "prod"},
		},
		Sites: map[string]SiteConfig{
			"staging.example.com": {
				Cookie:  "session=abc",
				Headers: map[string]string{"X-Env": "staging"},
			},
			"Headers.Example.com": {
				Headers: map[string]string{"X-Only": "1"},
			},
		},
	}

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()
		sc := file.GetSiteConfig("example.org")
		if sc.Cookie != "consent=yes" || sc.Headers["X-Env"] != "prod" {
			t.Errorf("unexpected site config %+v", sc)
		}
	})

	t.Run("site overrides defaults", func(t *testing.T) {
		t.Parallel()
		sc := file.GetSiteConfig("staging.example.com")
		if sc.Cookie != "session=abc" {
			t.Errorf("expected site cookie, got %q", sc.Cookie)
		}
		if sc.Headers["X-Env"] != "staging" || sc.Headers["Accept-Language"] != "en" {
			t.Errorf("unexpected headers %v", sc.Headers)
		}
	})

	t.Run("host match ignores case", func(t *testing.T) {
		t.Parallel()
		sc := file.GetSiteConfig("headers.example.com")
		if sc.Headers["X-Only"] != "1" {
			t.Errorf("expected case-insensitive match, got %v", sc.Headers)
		}
		if sc.Cookie != "consent=yes" {
			t.Errorf("empty site cookie must keep the default, got %q", sc.Cookie)
		}
	})

	t.Run("defaults are not mutated", func(t *testing.T) {
		t.Parallel()
		_ = file.GetSiteConfig("staging.example.com")
		if file.Defaults.Headers["X-Env"] != "prod" {
			t.Errorf("defaults mutated: %v", file.Defaults.Headers)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		sc := (&File{}).GetSiteConfig("example.com")
		if sc.Cookie != "" || sc.Headers != nil {
			t.Errorf("expected zero site config, got %+v", sc)
		}
	})
}

func TestFileSiteLookup(t *testing.T) {
	t.Parallel()

	file := &File{Sites: map[string]SiteConfig{
		"example.com": {Cookie: "a=b", Headers: map[string]string{"X-Test": "1"}},
	}}
	opts := file.SiteLookup()("example.com")
	if opts.Cookie != "a=b" || opts.Headers["X-Test"] != "1" {
		t.Errorf("unexpected site options %+v", opts)
	}
	if opts := file.SiteLookup()("other.example"); opts.Cookie != "" || len(opts.Headers) != 0 {
		t.Errorf("expected empty options, got %+v", opts)
	}
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("copies non-zero values", func(t *testing.T) {
		t.Parallel()

		file := &File{
			AI:     AIConfig{Enabled: true, Model: "claude-sonnet-4-5"},
			Server: ServerConfig{Listen: "0.0.0.0:9000"},
			Proxy:  ProxyConfig{Address: "127.0.0.1:9050"},
		}
		cfg := NewConfig()
		file.Apply(cfg)

		if !cfg.AIEnabled || cfg.AIModel != "claude-sonnet-4-5" {
			t.Errorf("unexpected AI settings %v %q", cfg.AIEnabled, cfg.AIModel)
		}
		if cfg.ListenAddr != "0.0.0.0:9000" {
			t.Errorf("unexpected ListenAddr %q", cfg.ListenAddr)
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" || cfg.UseTor {
			t.Errorf("unexpected proxy settings %q %v", cfg.ProxyAddress, cfg.UseTor)
		}
		if cfg.SiteConfigs != file {
			t.Error("expected SiteConfigs to point at the file")
		}
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		(&File{}).Apply(cfg)
		if cfg.AIModel != DefaultAIModel || cfg.ListenAddr != DefaultListenAddr || cfg.AIEnabled {
			t.Errorf("defaults overwritten: %+v", cfg)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.webpulse")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".webpulse")
		content := `defaults:
  cookie: "consent=yes"
sites:
  example.com:
    cookie: "session=xyz"
    headers:
      Authorization: "Bearer token"
ai:
  enabled: true
  model: claude-sonnet-4-5
server:
  listen: 0.0.0.0:8080
proxy:
  tor: true
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Defaults.Cookie != "consent=yes" {
			t.Errorf("expected default cookie, got %q", cfg.Defaults.Cookie)
		}
		site, ok := cfg.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com in sites")
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header")
		}
		if !cfg.AI.Enabled || cfg.AI.Model != "claude-sonnet-4-5" {
			t.Errorf("unexpected ai section %+v", cfg.AI)
		}
		if cfg.Server.Listen != "0.0.0.0:8080" || !cfg.Proxy.Tor {
			t.Errorf("unexpected server/proxy sections %+v %+v", cfg.Server, cfg.Proxy)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".webpulse")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if err == nil {
			t.Fatal("expected error for invalid YAML")
		}
		if !strings.Contains(err.Error(), configPath) {
			t.Errorf("error should name the file: %v", err)
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".webpulse")
		if err := os.WriteFile(configPath, []byte("ai:\n  enabled: false\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("ignores a directory", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile(t.TempDir()); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := searchPaths()
	if len(paths) == 0 {
		t.Fatal("expected search paths")
	}
	if filepath.Base(paths[0]) != DefaultConfigFile {
		t.Errorf("expected %s first, got %q", DefaultConfigFile, paths[0])
	}
	if last := paths[len(paths)-1]; last != filepath.Join(XDGConfigDir(), xdgConfigFile) {
		t.Errorf("expected the XDG config file last, got %q", last)
	}
}

func TestWriteTemplate(t *testing.T) {
	t.Parallel()

	t.Run("template is a loadable config", func(t *testing.T) {
		t.Parallel()

		var file File
		if err := yaml.Unmarshal(Template, &file); err != nil {
			t.Fatalf("template does not parse: %v", err)
		}
		if file.Server.Listen != DefaultListenAddr || file.AI.Model != DefaultAIModel {
			t.Errorf("template disagrees with defaults: %+v", file)
		}
	})

	t.Run("writes and refuses to overwrite", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", ".webpulse")
		if err := WriteTemplate(path, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := LoadConfigFile(path); err != nil {
			t.Fatalf("written template does not load: %v", err)
		}

		if err := WriteTemplate(path, false); !errors.Is(err, ErrConfigExists) {
			t.Errorf("expected ErrConfigExists, got %v", err)
		}
		if err := WriteTemplate(path, true); err != nil {
			t.Errorf("force overwrite failed: %v", err)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("unexpected XDG data dir %q", dir)
	}
	if dir := XDGConfigDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("unexpected XDG config dir %q", dir)
	}
}
