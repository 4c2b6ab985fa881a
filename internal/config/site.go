package config

import (
	"maps"
	"strings"

	"github.com/nao1215/webpulse/internal/fetcher"
)

// SiteConfig holds request settings for a single host.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent to this site, for pages behind a login.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// AIConfig is the ai section of the configuration file.
type AIConfig struct {
	// Enabled turns on Claude suggestions.
	Enabled bool `yaml:"enabled,omitempty"`

	// Model overrides the Claude model name.
	Model string `yaml:"model,omitempty"`
}

// ServerConfig is the server section of the configuration file.
type ServerConfig struct {
	// Listen is the API server address in "host:port" format.
	Listen string `yaml:"listen,omitempty"`
}

// ProxyConfig is the proxy section of the configuration file.
type ProxyConfig struct {
	// Address is a SOCKS5 proxy in "host:port" format.
	Address string `yaml:"address,omitempty"`

	// Tor starts an embedded Tor daemon for every scan.
	Tor bool `yaml:"tor,omitempty"`
}

// File represents the structure of the .webpulse configuration file.
type File struct {
	// Sites maps host names to their site-specific configurations.
	// Keys are host names without scheme or port (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains settings applied to all sites unless overridden
	// in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	AI     AIConfig     `yaml:"ai,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
	Proxy  ProxyConfig  `yaml:"proxy,omitempty"`
}

// GetSiteConfig returns the configuration for a host.
// It merges the site-specific configuration with defaults. Host names are
// compared case-insensitively.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{Cookie: cf.Defaults.Cookie}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	siteConfig, ok := cf.Sites[host]
	if !ok {
		for name, sc := range cf.Sites {
			if strings.EqualFold(name, host) {
				siteConfig, ok = sc, true
				break
			}
		}
	}
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(siteConfig.Headers))
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	return result
}

// SiteLookup adapts the file to the fetcher's per-host hook.
func (cf *File) SiteLookup() fetcher.SiteLookup {
	return func(host string) fetcher.SiteOptions {
		sc := cf.GetSiteConfig(host)
		return fetcher.SiteOptions{
			Headers: sc.Headers,
			Cookie:  sc.Cookie,
		}
	}
}

// Apply copies the file's ai, server and proxy settings into cfg.
// Only non-zero values are copied, so built-in defaults survive a sparse
// file. CLI flags are applied after this and take precedence.
func (cf *File) Apply(cfg *Config) {
	cfg.SiteConfigs = cf
	if cf.AI.Enabled {
		cfg.AIEnabled = true
	}
	if cf.AI.Model != "" {
		cfg.AIModel = cf.AI.Model
	}
	if cf.Server.Listen != "" {
		cfg.ListenAddr = cf.Server.Listen
	}
	if cf.Proxy.Address != "" {
		cfg.ProxyAddress = cf.Proxy.Address
	}
	if cf.Proxy.Tor {
		cfg.UseTor = true
	}
}
