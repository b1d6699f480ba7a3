// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type BackendConfig struct {
	Driver string `yaml:"driver"`
	// Filename is the database file used by the sqlite driver.
	Filename string `yaml:"filename"`

	URL       string `yaml:"-"` // SUPABASE_URL
	AnonKey   string `yaml:"-"` // SUPABASE_ANON_KEY
	JWTSecret string `yaml:"-"` // SUPABASE_JWT_SECRET
	DSN       string `yaml:"-"` // DATABASE_URL
}

type AuthConfig struct {
	SessionTTL   time.Duration `yaml:"session_ttl"`
	AccessTTL    time.Duration `yaml:"access_ttl"`
	RefreshTTL   time.Duration `yaml:"refresh_ttl"`
	PruneCron    string        `yaml:"prune_cron"`
	LoginLimit   int           `yaml:"login_limit"`
	LoginWindow  time.Duration `yaml:"login_window"`
	LoginLockout time.Duration `yaml:"login_lockout"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		Locale      string `yaml:"locale"`
		TimeZone    string `yaml:"time_zone"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`

	Map struct {
		EmbedURL string  `yaml:"embed_url"`
		Span     float64 `yaml:"span"`
	} `yaml:"map"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Backend.URL = strings.TrimSpace(os.Getenv("SUPABASE_URL"))
	cfg.Backend.AnonKey = strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY"))
	cfg.Backend.JWTSecret = os.Getenv("SUPABASE_JWT_SECRET")
	cfg.Backend.DSN = os.Getenv("DATABASE_URL")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes a yaml document and fills defaults. It does not read the
// environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Locale == "" {
		c.App.Locale = "hr"
	}
	if c.App.TimeZone == "" {
		c.App.TimeZone = "Europe/Zagreb"
	}
	if c.Backend.Driver == "" {
		c.Backend.Driver = DriverSupabase
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = time.Hour
	}
	if c.Auth.RefreshTTL == 0 {
		c.Auth.RefreshTTL = 30 * 24 * time.Hour
	}
	if c.Auth.PruneCron == "" {
		c.Auth.PruneCron = "*/15 * * * *"
	}
	if c.Auth.LoginLimit == 0 {
		c.Auth.LoginLimit = 5
	}
	if c.Auth.LoginWindow == 0 {
		c.Auth.LoginWindow = 15 * time.Minute
	}
	if c.Auth.LoginLockout == 0 {
		c.Auth.LoginLockout = 15 * time.Minute
	}
	if c.Map.EmbedURL == "" {
		c.Map.EmbedURL = "https://www.openstreetmap.org/export/embed.html"
	}
	if c.Map.Span == 0 {
		c.Map.Span = 0.01
	}
}

// Location is the zone match times are shown and entered in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.App.TimeZone, err)
	}
	return loc, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Validate rejects structurally broken configuration. Missing backend
// credentials are not an error here; see BackendConfig.Missing.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	switch c.App.Locale {
	case "hr", "en":
	default:
		return fmt.Errorf("unsupported locale: %s", c.App.Locale)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.Backend.Driver {
	case DriverSupabase:
	case DriverSQLite:
		if c.Backend.Filename == "" {
			return fmt.Errorf("backend filename is required for sqlite")
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("unsupported backend driver: %s", c.Backend.Driver)
	}

	if c.Backend.Driver != DriverSupabase && c.App.SecretKey == "" && !c.IsDevelopment() {
		return fmt.Errorf("APP_SECRET_KEY is required for the %s driver", c.Backend.Driver)
	}

	return nil
}

// Missing lists the absent settings that keep the backend from being
// reachable. An empty result means the backend can be constructed.
func (b BackendConfig) Missing() []string {
	var missing []string
	switch b.Driver {
	case DriverSupabase:
		if b.URL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if b.AnonKey == "" {
			missing = append(missing, "SUPABASE_ANON_KEY")
		}
	case DriverPostgres:
		if b.DSN == "" {
			missing = append(missing, "DATABASE_URL")
		}
	}
	return missing
}
