// Package config loads runtime configuration for the e-library CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Environment variables (ELIBRARY_*).
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the e-library API
//	-t int      request timeout (seconds)
//	-i int      poll interval for live views: discussions, admin tables (seconds)
//	-d string   DSN of the local credential database
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations may be strings like "3s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://library.example.edu/api",
//	  "request_timeout": "30s",
//	  "upload_timeout": "60s",
//	  "content_poll_interval": "5s",
//	  "live_poll_interval": "3s",
//	  "database_dsn": "elibrary.db",
//	  "redis_url": "",
//	  "session_ttl": "12h",
//	  "log_level": "info"
//	}
package config
