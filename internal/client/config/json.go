package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/flagx"
	"github.com/dmitrijs2005/elibrary/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from zero values so a partial file only overrides what it
// names.
type JsonConfig struct {
	BaseURL             *string         `json:"base_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	UploadTimeout       *timex.Duration `json:"upload_timeout"`
	ContentPollInterval *timex.Duration `json:"content_poll_interval"`
	LivePollInterval    *timex.Duration `json:"live_poll_interval"`
	DatabaseDSN         *string         `json:"database_dsn"`
	RedisURL            *string         `json:"redis_url"`
	SessionTTL          *timex.Duration `json:"session_ttl"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.BaseURL, jc.BaseURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.UploadTimeout, jc.UploadTimeout)
	setDuration(&cfg.ContentPollInterval, jc.ContentPollInterval)
	setDuration(&cfg.LivePollInterval, jc.LivePollInterval)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.RedisURL, jc.RedisURL)
	setDuration(&cfg.SessionTTL, jc.SessionTTL)
	setString(&cfg.LogLevel, jc.LogLevel)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
