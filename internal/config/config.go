package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
	} `yaml:"log"`
	Classifier struct {
		Endpoint       string `yaml:"endpoint"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"classifier"`
	Catalog struct {
		Path string `yaml:"path"` // empty: embedded catalog
	} `yaml:"catalog"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Address    string `yaml:"address"` // empty: no cache
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"redis"`
	Archive struct {
		Cron       string `yaml:"cron"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"archive"`
	Engine struct {
		Seed          uint64 `yaml:"seed"` // 0: nondeterministic
		ProspectCount int    `yaml:"prospect_count"`
	} `yaml:"engine"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadDotEnv loads the first existing file among paths into the process environment.
// Variables already set are kept. It returns the loaded path, or "" when none exists.
func LoadDotEnv(paths ...string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", fmt.Errorf("load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LOG_LEVEL":           &c.Log.Level,
		"LOG_FORMAT":          &c.Log.Format,
		"CLASSIFIER_ENDPOINT": &c.Classifier.Endpoint,
		"CLASSIFIER_API_KEY":  &c.Classifier.APIKey,
		"CATALOG_PATH":        &c.Catalog.Path,
		"SQLITE_PATH":         &c.Database.SQLitePath,
		"REDIS_ADDRESS":       &c.Redis.Address,
		"REDIS_PASSWORD":      &c.Redis.Password,
		"ARCHIVE_CRON":        &c.Archive.Cron,
		"HTTPS_PROXY":         &c.Proxy,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ARCHIVE_MAX_AGE_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ARCHIVE_MAX_AGE_DAYS: %w", err)
		}
		c.Archive.MaxAgeDays = days
	}
	if v := os.Getenv("ENGINE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ENGINE_SEED: %w", err)
		}
		c.Engine.Seed = seed
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Classifier.TimeoutSeconds == 0 {
		c.Classifier.TimeoutSeconds = 10
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/prospector.db"
	}
	if c.Redis.TTLMinutes == 0 {
		c.Redis.TTLMinutes = 30
	}
	if c.Archive.Cron == "" {
		c.Archive.Cron = "0 0 3 * * *"
	}
	if c.Archive.MaxAgeDays == 0 {
		c.Archive.MaxAgeDays = 90
	}
	if c.Engine.ProspectCount == 0 {
		c.Engine.ProspectCount = 5
	}
}

// ClassifierTimeout returns the per-call classifier deadline.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

// ArchiveMaxAge returns the age after which analyses are archived.
func (c *Config) ArchiveMaxAge() time.Duration {
	return time.Duration(c.Archive.MaxAgeDays) * 24 * time.Hour
}

// CacheTTL returns the redis entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLMinutes) * time.Minute
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be json or console")
	}
	if c.Classifier.TimeoutSeconds < 0 {
		return fmt.Errorf("classifier.timeout_seconds must be positive")
	}
	if c.Redis.TTLMinutes < 0 {
		return fmt.Errorf("redis.ttl_minutes must not be negative")
	}
	if c.Archive.MaxAgeDays <= 0 {
		return fmt.Errorf("archive.max_age_days must be positive")
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.Archive.Cron); err != nil {
		return fmt.Errorf("archive.cron: %w", err)
	}
	if c.Engine.ProspectCount <= 0 {
		return fmt.Errorf("engine.prospect_count must be positive")
	}
	return nil
}
