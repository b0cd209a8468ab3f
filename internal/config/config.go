package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Store     Store     `mapstructure:"store"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Scheduler Scheduler `mapstructure:"scheduler"`
}

// Store selects and configures the key-value backend holding the journal.
type Store struct {
	Backend        string  `mapstructure:"backend"` // "rest", "redis", "sqlite", "postgres" or "memory"
	URL            string  `mapstructure:"url"`
	Token          string  `mapstructure:"token"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	Timeout        int     `mapstructure:"timeout"` // seconds
	RedisAddr      string  `mapstructure:"redis_addr"`
	RedisPassword  string  `mapstructure:"redis_password"`
	RedisDB        int     `mapstructure:"redis_db"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// AuthSecret enables HS256 bearer token auth on /api when set.
	AuthSecret string `mapstructure:"auth_secret"`
}

// Database holds the connection settings of the SQL store backends.
type Database struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// Scheduler holds cron specs for background jobs. An empty spec disables the job.
type Scheduler struct {
	ReconcileSpec string `mapstructure:"reconcile_spec"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: defaults and the environment still apply.
func LoadConfig(path string) (config Config, err error) {
	// Pick up a local .env before viper looks at the environment.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "rest")
	// Endpoint and token are supplied externally; empty values fail at call time.
	v.SetDefault("store.url", "")
	v.SetDefault("store.token", "")
	v.SetDefault("store.rate_limit", 20) // requests per second
	v.SetDefault("store.rate_limit_burst", 5)
	v.SetDefault("store.timeout", 10)
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.auth_secret", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "journal.db")

	v.SetDefault("scheduler.reconcile_spec", "")
}
