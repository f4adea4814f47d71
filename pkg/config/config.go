package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Search   SearchConfig   `mapstructure:"search"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectRetries  int           `mapstructure:"connect_retries"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	Seed            bool          `mapstructure:"seed"`
}

type AuthConfig struct {
	JWTSecret                string        `mapstructure:"jwt_secret"`
	AccessTokenExpireMinutes int           `mapstructure:"access_token_expire_minutes"`
	BcryptCost               int           `mapstructure:"bcrypt_cost"`
	AdminPassphrase          string        `mapstructure:"admin_passphrase"`
	LoginMaxFailures         int           `mapstructure:"login_max_failures"`
	LoginWindow              time.Duration `mapstructure:"login_window"`
	LoginBlock               time.Duration `mapstructure:"login_block"`
}

// TokenTTL is the lifetime of an issued access token.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

type SearchConfig struct {
	Limit int `mapstructure:"limit"`
}

type JobsConfig struct {
	ReconcileSchedule string `mapstructure:"reconcile_schedule"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps config keys to the variable names used by existing .env files.
var legacyEnv = map[string][]string{
	"server.port":                      {"SERVER_PORT", "PORT"},
	"database.user":                    {"DATABASE_USER", "DB_USERNAME", "DB_USER"},
	"database.password":                {"DATABASE_PASSWORD", "DB_PASSWORD"},
	"database.host":                    {"DATABASE_HOST", "DB_HOST"},
	"database.port":                    {"DATABASE_PORT", "DB_PORT"},
	"database.name":                    {"DATABASE_NAME", "DB_NAME"},
	"auth.jwt_secret":                  {"AUTH_JWT_SECRET", "JWT_SECRET", "SECRET_KEY"},
	"auth.access_token_expire_minutes": {"AUTH_ACCESS_TOKEN_EXPIRE_MINUTES", "ACCESS_TOKEN_EXPIRE_MINUTES"},
	"auth.admin_passphrase":            {"AUTH_ADMIN_PASSPHRASE", "ADMIN_PASSPHRASE"},
}

func Load() (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config." + env)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Env = env

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "mtaa")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.connect_retries", 10)
	v.SetDefault("database.retry_interval", 5*time.Second)
	v.SetDefault("database.seed", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_expire_minutes", 30)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.admin_passphrase", "")
	v.SetDefault("auth.login_max_failures", 5)
	v.SetDefault("auth.login_window", time.Minute)
	v.SetDefault("auth.login_block", 5*time.Minute)

	v.SetDefault("search.limit", 50)
	v.SetDefault("jobs.reconcile_schedule", "@every 1h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

const devSecret = "local-development-secret"

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		if c.Env == "production" {
			return errors.New("auth.jwt_secret must be set in production")
		}
		c.Auth.JWTSecret = devSecret
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return errors.New("auth.access_token_expire_minutes must be positive")
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = 50
	}
	return nil
}
