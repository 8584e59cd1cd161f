package mypenweb

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mypen/mypenweb/tracking"
	"github.com/mypen/mypenweb/views"
)

// SiteConfig holds all configuration for the site, built once at process
// start and passed into handlers. Business logic never reads the environment.
type SiteConfig struct {
	Name        string // Site name (default "Mypen")
	URL         string // Canonical URL (default "https://mypen.ge")
	Description string // Site description for meta tags and RSS
	Author      string // Organization name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/site.db")
	PublicDir    string // Static asset root (default "public")

	WebhookSecret string // Required: x-n8n-webhook-secret value
	AdminEmail    string // Required: admin login email
	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session cookie authentication secret
	CookieSecure  bool   // Set true behind HTTPS

	PostCacheTTL time.Duration // Post cache TTL (default 1min)

	ScriptsPath string // Optional TOML file with script tags + tracking creds

	LogLevel string // zerolog level (default "info")
	DevLog   bool   // Pretty console logging for development
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Mypen"
	}
	if c.URL == "" {
		c.URL = "https://mypen.ge"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *SiteConfig) validate() error {
	if c.WebhookSecret == "" {
		return fmt.Errorf("mypenweb: WebhookSecret is required")
	}
	if c.AdminEmail == "" || c.AdminPassword == "" {
		return fmt.Errorf("mypenweb: AdminEmail and AdminPassword are required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("mypenweb: SessionSecret is required")
	}
	return nil
}

// ScriptsConfig is the on-disk shape of the scripts/tracking TOML file:
// third-party script tags injected into pages plus server-side tracking
// credentials.
type ScriptsConfig struct {
	Scripts  []views.ScriptTag       `toml:"script"`
	Facebook tracking.FacebookConfig `toml:"facebook"`
	TikTok   tracking.TikTokConfig   `toml:"tiktok"`
}

// LoadScriptsConfig reads the TOML file at path. A missing file is not an
// error; the site simply runs without third-party scripts or tracking.
func LoadScriptsConfig(path string) (ScriptsConfig, error) {
	var cfg ScriptsConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode scripts config %s: %w", path, err)
	}
	return cfg, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("mypenweb: required environment variable %s is not set", key)
	}
	return v
}
