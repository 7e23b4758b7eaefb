// Package config provides configuration management for the harvester binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
)

// ErrDatabaseNotConfigured is returned by Validate when a required database
// parameter is missing.
var ErrDatabaseNotConfigured = errors.New("database environment variables are not set")

// MinRequestDelay is the shortest pause allowed between YouTube API calls.
const MinRequestDelay = time.Second

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Database DatabaseConfig
	YouTube  YouTubeConfig
	Harvest  HarvestConfig
	Quota    QuotaConfig
	Logging  LoggingConfig
	Server   ServerConfig
	Metrics  MetricsConfig
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	Port           int
	SSLMode        string
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// YouTubeConfig contains YouTube Data API configuration.
type YouTubeConfig struct {
	APIKey string
}

// HarvestConfig controls video paging.
type HarvestConfig struct {
	// PageSize is the maxResults sent with each search page request.
	PageSize int64
	// RequestDelay is the fixed pause taken after every API call. Load raises
	// anything shorter to MinRequestDelay.
	RequestDelay time.Duration
}

// QuotaConfig controls YouTube API quota accounting.
type QuotaConfig struct {
	DailyLimit       int
	ThresholdPercent int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// ServerConfig contains read API server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	// APIKeys is a comma-separated list of keys accepted by the read API.
	// Empty leaves the API unauthenticated.
	APIKeys string
}

// Keys returns the configured API keys with blanks dropped.
func (s ServerConfig) Keys() []string {
	var keys []string
	for _, k := range strings.Split(s.APIKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// MetricsConfig configures where run metrics are pushed.
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// envBindings maps config keys to the environment variables read for them,
// in priority order.
var envBindings = map[string][]string{
	"database.host":     {"APP_DATABASE_HOST", "DB_HOST"},
	"database.port":     {"APP_DATABASE_PORT", "DB_PORT"},
	"database.name":     {"APP_DATABASE_NAME", "DB_NAME"},
	"database.user":     {"APP_DATABASE_USER", "DB_USERNAME"},
	"database.password": {"APP_DATABASE_PASSWORD", "DB_PASSWORD"},
	"database.sslmode":  {"APP_DATABASE_SSLMODE", "DB_SSLMODE"},

	"youtube.apikey": {"APP_YOUTUBE_APIKEY", "API_KEY", "YOUTUBE_API_KEY"},

	"harvest.pagesize":     {"APP_HARVEST_PAGESIZE", "HARVEST_PAGE_SIZE"},
	"harvest.requestdelay": {"APP_HARVEST_REQUESTDELAY", "HARVEST_REQUEST_DELAY"},

	"quota.dailylimit":       {"APP_QUOTA_DAILYLIMIT", "YOUTUBE_DAILY_QUOTA"},
	"quota.thresholdpercent": {"APP_QUOTA_THRESHOLDPERCENT", "QUOTA_THRESHOLD_PERCENT"},

	"logging.level": {"APP_LOGGING_LEVEL", "LOG_LEVEL"},
	"logging.file":  {"APP_LOGGING_FILE", "LOG_FILE"},

	"server.port":    {"APP_SERVER_PORT", "PORT"},
	"server.apikeys": {"APP_SERVER_APIKEYS", "API_KEYS"},

	"metrics.pushgatewayurl": {"APP_METRICS_PUSHGATEWAYURL", "PUSHGATEWAY_URL"},
	"metrics.job":            {"APP_METRICS_JOB"},
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}

	return nil
}

// Load loads configuration from an optional config.yaml and environment variables.
// It does not validate; callers decide which sections are required.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Harvest.RequestDelay < MinRequestDelay {
		cfg.Harvest.RequestDelay = MinRequestDelay
	}

	return &cfg, nil
}

// DB converts the database section to pool and migration settings.
func (d DatabaseConfig) DB() *db.Config {
	return &db.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Name,
		SSLMode:         d.SSLMode,
		MaxConns:        int32(d.MaxConnections),
		MinConns:        int32(d.MinConnections),
		MaxConnLifetime: d.MaxLifetime,
		MaxConnIdleTime: d.MaxIdleTime,
	}
}

// Validate checks that every database connection parameter is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USERNAME")
	}
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if c.Database.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Database.Port == 0 {
		missing = append(missing, "DB_PORT")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w (missing: %s)", ErrDatabaseNotConfigured, strings.Join(missing, ", "))
	}

	return nil
}

// Connection parameters have no defaults: an unset value must fail Validate.
func setDefaults(v *viper.Viper) {
	// Database
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxconnections", 4)
	v.SetDefault("database.minconnections", 1)
	v.SetDefault("database.maxidletime", 10*time.Minute)
	v.SetDefault("database.maxlifetime", 1*time.Hour)

	// Harvest
	v.SetDefault("harvest.pagesize", 49)
	v.SetDefault("harvest.requestdelay", 1*time.Second)

	// Quota
	v.SetDefault("quota.dailylimit", 10000)
	v.SetDefault("quota.thresholdpercent", 90)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.apikeys", "")

	// Metrics
	v.SetDefault("metrics.pushgatewayurl", "")
	v.SetDefault("metrics.job", "youtube_harvester")
}
