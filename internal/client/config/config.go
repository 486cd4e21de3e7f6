package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the e-library CLI.
type Config struct {
	BaseURL string `env:"ELIBRARY_API_URL"`

	RequestTimeout time.Duration `env:"ELIBRARY_REQUEST_TIMEOUT"`
	UploadTimeout  time.Duration `env:"ELIBRARY_UPLOAD_TIMEOUT"`

	// ContentPollInterval refreshes the public book/note/PYQ lists.
	ContentPollInterval time.Duration `env:"ELIBRARY_CONTENT_POLL"`
	// LivePollInterval refreshes discussions and admin tables.
	LivePollInterval time.Duration `env:"ELIBRARY_LIVE_POLL"`

	// DatabaseDSN points at the sqlite file holding durable credentials.
	DatabaseDSN string `env:"ELIBRARY_DB"`
	// RedisURL, when set, moves durable credentials into Redis.
	RedisURL string `env:"ELIBRARY_REDIS_URL"`
	// SessionTTL bounds tab-scoped session flags kept in Redis.
	SessionTTL time.Duration `env:"ELIBRARY_SESSION_TTL"`

	LogLevel string `env:"ELIBRARY_LOG_LEVEL"`
}

// LoadDefaults populates c with the defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:5000/api"
	c.RequestTimeout = 30 * time.Second
	c.UploadTimeout = 60 * time.Second
	c.ContentPollInterval = 5 * time.Second
	c.LivePollInterval = 3 * time.Second
	c.DatabaseDSN = "elibrary.db"
	c.RedisURL = ""
	c.SessionTTL = 12 * time.Hour
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and os.Args, in that order.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
