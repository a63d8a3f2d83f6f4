// Package config loads the server configuration from an optional YAML file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = 3000
	DefaultJWTSecret  = "your-secret-key"
	DefaultTokenTTL   = 24 * time.Hour
	DefaultSQLitePath = "lodge.db"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// FileEnv names the environment variable that points at the YAML file.
	FileEnv = "LODGE_CONFIG"
)

// Config captures configuration values for the lodge server.
type Config struct {
	Port                    int
	JWTSecret               string
	JWTSecretDefaulted      bool
	TokenTTL                time.Duration
	DBDriver                string
	SQLitePath              string
	DatabaseURL             string
	RedisAddr               string
	RedisPassword           string
	LoginRateLimitPerMinute int
	CORSAllowedOrigin       string
	LogLevel                string
}

// FileConfig is the YAML representation. Every key is optional and the
// environment wins over the file.
type FileConfig struct {
	Port                    string `yaml:"port"`
	JWTSecret               string `yaml:"jwtSecret"`
	TokenTTL                string `yaml:"tokenTTL"`
	DBDriver                string `yaml:"dbDriver"`
	SQLitePath              string `yaml:"sqlitePath"`
	DatabaseURL             string `yaml:"databaseURL"`
	RedisAddr               string `yaml:"redisAddr"`
	RedisPassword           string `yaml:"redisPassword"`
	LoginRateLimitPerMinute string `yaml:"loginRateLimitPerMinute"`
	CORSAllowedOrigin       string `yaml:"corsAllowedOrigin"`
	LogLevel                string `yaml:"logLevel"`
}

// env keys
const (
	keyPort          = "PORT"
	keyJWTSecret     = "JWT_SECRET"
	keyTokenTTL      = "TOKEN_TTL"
	keyDBDriver      = "DB_DRIVER"
	keySQLitePath    = "SQLITE_PATH"
	keyDatabaseURL   = "DATABASE_URL"
	keyRedisAddr     = "REDIS_ADDR"
	keyRedisPassword = "REDIS_PASSWORD"
	keyLoginLimit    = "LOGIN_RATE_LIMIT_PER_MINUTE"
	keyCORSOrigin    = "CORS_ALLOWED_ORIGIN"
	keyLogLevel      = "LOG_LEVEL"
)

// Load reads the YAML file named by LODGE_CONFIG (when set), overlays the
// environment and validates the result. All missing and invalid keys are
// reported together.
func Load() (Config, error) {
	return LoadPath(os.Getenv(FileEnv))
}

// LoadPath is Load with an explicit YAML file. An empty path reads the
// environment only.
func LoadPath(path string) (Config, error) {
	var file FileConfig
	if path = strings.TrimSpace(path); path != "" {
		var err error
		if file, err = ReadFile(path); err != nil {
			return Config{}, err
		}
	}
	return resolve(file, os.LookupEnv)
}

// ReadFile parses a YAML config file.
func ReadFile(path string) (FileConfig, error) {
	var file FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse config: %w", err)
	}
	return file, nil
}

func resolve(file FileConfig, lookup func(string) (string, bool)) (Config, error) {
	values := map[string]string{
		keyPort:          file.Port,
		keyJWTSecret:     file.JWTSecret,
		keyTokenTTL:      file.TokenTTL,
		keyDBDriver:      file.DBDriver,
		keySQLitePath:    file.SQLitePath,
		keyDatabaseURL:   file.DatabaseURL,
		keyRedisAddr:     file.RedisAddr,
		keyRedisPassword: file.RedisPassword,
		keyLoginLimit:    file.LoginRateLimitPerMinute,
		keyCORSOrigin:    file.CORSAllowedOrigin,
		keyLogLevel:      file.LogLevel,
	}
	for key := range values {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			values[key] = v
		}
	}
	get := func(key string) string { return strings.TrimSpace(values[key]) }

	cfg := Config{
		Port:              DefaultPort,
		JWTSecret:         DefaultJWTSecret,
		TokenTTL:          DefaultTokenTTL,
		DBDriver:          DriverSQLite,
		SQLitePath:        DefaultSQLitePath,
		CORSAllowedOrigin: "*",
		LogLevel:          "info",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if v := get(keyPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, keyPort)
		} else {
			cfg.Port = port
		}
	}

	if v := get(keyJWTSecret); v != "" {
		cfg.JWTSecret = v
	} else {
		cfg.JWTSecretDefaulted = true
	}

	if v := get(keyTokenTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, keyTokenTTL)
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if v := strings.ToLower(get(keyDBDriver)); v != "" {
		switch v {
		case DriverSQLite, DriverPostgres:
			cfg.DBDriver = v
		default:
			invalid = append(invalid, keyDBDriver)
		}
	}

	if v := get(keySQLitePath); v != "" {
		cfg.SQLitePath = v
	}

	cfg.DatabaseURL = get(keyDatabaseURL)
	if cfg.DBDriver == DriverPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, keyDatabaseURL)
	}

	cfg.RedisAddr = get(keyRedisAddr)
	cfg.RedisPassword = values[keyRedisPassword]

	if v := get(keyLoginLimit); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			invalid = append(invalid, keyLoginLimit)
		} else {
			cfg.LoginRateLimitPerMinute = limit
		}
	}
	if cfg.LoginRateLimitPerMinute > 0 && cfg.RedisAddr == "" {
		missing = append(missing, keyRedisAddr)
	}

	if v := get(keyCORSOrigin); v != "" {
		cfg.CORSAllowedOrigin = v
	}

	if v := strings.ToLower(get(keyLogLevel)); v != "" {
		switch v {
		case "debug", "info", "warn", "warning", "error":
			cfg.LogLevel = v
		default:
			invalid = append(invalid, keyLogLevel)
		}
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// RateLimitEnabled reports whether login attempts should be throttled.
func (c Config) RateLimitEnabled() bool {
	return c.LoginRateLimitPerMinute > 0 && c.RedisAddr != ""
}
