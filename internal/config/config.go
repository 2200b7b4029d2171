// Package config loads server settings from .env, the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr         string        `mapstructure:"addr"`
	DatabaseURL  string        `mapstructure:"db_url"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	LogLevel     string        `mapstructure:"log_level"`
	Google       GoogleConfig  `mapstructure:",squash"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"google_client_id"`
	ClientSecret string `mapstructure:"google_client_secret"`
	CallbackURL  string `mapstructure:"google_callback_url"`
}

// Enabled reports whether the Google provider has credentials.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

var keys = []string{
	"addr", "db_url", "jwt_secret", "session_ttl", "cookie_secure", "log_level",
	"google_client_id", "google_client_secret", "google_callback_url",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_url", "sqlite://todoly.db")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("cookie_secure", false) //set to true for https
	v.SetDefault("log_level", "debug")
	v.SetDefault("google_callback_url", "http://localhost:8080/auth/google/callback")
}

// Load reads envFile (missing is fine), then the environment, then
// configFile if one is given. Environment variables win over the file.
func Load(envFile, configFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	//Unmarshal only sees env vars for keys viper already knows about
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.JWTSecret == "" {
		slog.Warn("jwt_secret_missing_using_random_key")
		cfg.JWTSecret = string(securecookie.GenerateRandomKey(32))
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session_ttl must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

// SlogLevel maps LogLevel onto slog, defaulting to debug.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return lvl
}
