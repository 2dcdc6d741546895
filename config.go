package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config is assembled once in main from the environment and passed down
// explicitly; nothing below main reads env vars.
type Config struct {
	Port          string
	DatabaseDSN   string
	AutoMigrate   bool
	AccessSecret  string
	RefreshSecret string
	AccessTTL     string
	RefreshTTL    string
	CookieDomain  string
	CookieSecure  bool
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8081"),
		DatabaseDSN:   os.Getenv("DB_DSN"),
		AutoMigrate:   getEnvBool("DB_AUTO_MIGRATE", true),
		AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:     getEnv("JWT_ACCESS_TTL", "15m"),
		RefreshTTL:    getEnv("JWT_REFRESH_TTL", "7d"),
		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:  getEnvBool("COOKIE_SECURE", true),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	var errs []string
	if c.DatabaseDSN == "" {
		errs = append(errs, "DB_DSN is required")
	}
	if len(c.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 chars")
	}
	if len(c.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 chars")
	}
	if c.AccessSecret != "" && c.AccessSecret == c.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
