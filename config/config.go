// config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	shared "github.com/Tanmoy095/LogiSynapse/tms-dashboard/shared/config"
)

// Session storage backends.
const (
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds everything tmsctl needs at startup.
type Config struct {
	API_URL         string
	DATA_DIR        string
	SESSION_BACKEND string
	PROFILE         string
	HTTP_TIMEOUT    time.Duration
	LOG_LEVEL       string
	PAGE_SIZE       int

	Common *shared.CommonConfig
}

// LoadConfig reads .env (when present), an optional config file named by
// TMS_CONFIG_FILE, and the environment, in increasing precedence.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return loadFrom(viper.New(), os.Getenv("TMS_CONFIG_FILE"))
}

func loadFrom(v *viper.Viper, file string) (*Config, error) {
	v.SetDefault("TMS_API_URL", "http://localhost:4000/graphql")
	v.SetDefault("TMS_DATA_DIR", defaultDataDir())
	v.SetDefault("TMS_SESSION_BACKEND", BackendBadger)
	v.SetDefault("TMS_PROFILE", "default")
	v.SetDefault("TMS_HTTP_TIMEOUT", "15s")
	v.SetDefault("TMS_LOG_LEVEL", "warn")
	v.SetDefault("TMS_PAGE_SIZE", 20)
	shared.SetCommonDefaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		API_URL:         v.GetString("TMS_API_URL"),
		DATA_DIR:        v.GetString("TMS_DATA_DIR"),
		SESSION_BACKEND: strings.ToLower(v.GetString("TMS_SESSION_BACKEND")),
		PROFILE:         v.GetString("TMS_PROFILE"),
		HTTP_TIMEOUT:    v.GetDuration("TMS_HTTP_TIMEOUT"),
		LOG_LEVEL:       v.GetString("TMS_LOG_LEVEL"),
		PAGE_SIZE:       v.GetInt("TMS_PAGE_SIZE"),
		Common:          shared.LoadCommonConfig(v),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings tmsctl cannot start with.
func (c *Config) Validate() error {
	if c.API_URL == "" {
		return fmt.Errorf("TMS_API_URL must be set")
	}
	switch c.SESSION_BACKEND {
	case BackendBadger, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown TMS_SESSION_BACKEND %q", c.SESSION_BACKEND)
	}
	if c.HTTP_TIMEOUT <= 0 {
		return fmt.Errorf("TMS_HTTP_TIMEOUT must be positive")
	}
	if c.PAGE_SIZE <= 0 {
		return fmt.Errorf("TMS_PAGE_SIZE must be positive")
	}
	return nil
}

// SessionDir is where the badger session database lives for the profile.
func (c *Config) SessionDir() string {
	return filepath.Join(c.DATA_DIR, "profiles", c.PROFILE, "session")
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean warn.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LOG_LEVEL) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tmsctl")
	}
	return ".tmsctl"
}
