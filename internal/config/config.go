package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string     `mapstructure:"environment"`
	Port        string     `mapstructure:"port"`
	LogLevel    slog.Level `mapstructure:"-"`
	LogLevelRaw string     `mapstructure:"log_level"`
	ClientURL   string     `mapstructure:"client_url"`

	Database  DatabaseConfig  `mapstructure:"database"`
	RedisURL  string          `mapstructure:"redis_url"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Media     MediaConfig     `mapstructure:"media"`
	Events    EventsConfig    `mapstructure:"events"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
}

type ServerConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	ConnectRetries  int           `mapstructure:"connect_retries"`
}

// DSN returns the key/value connection string used by the gorm driver.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MigrationURL returns the URL form required by golang-migrate.
func (c DatabaseConfig) MigrationURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Currency      string `mapstructure:"currency"`
	// %d is replaced with the course id
	SuccessURL string `mapstructure:"success_url"`
	CancelURL  string `mapstructure:"cancel_url"`
}

type MediaConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	CloudName string        `mapstructure:"cloud_name"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type EventsConfig struct {
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	TopicPrefix  string   `mapstructure:"topic_prefix"`
}

type SchedulerConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SweepSpec  string        `mapstructure:"sweep_spec"`
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
}

// LoadConfig reads .env (if present), an optional config file and LMS_* env vars.
func LoadConfig() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.LogLevel = parseLevel(cfg.LogLevelRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("auth.jwt_secret is required in production")
		}
		c.Auth.JWTSecret = "dev-secret-change-me"
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Scheduler.Enabled && c.Scheduler.PendingTTL <= 0 {
		return errors.New("scheduler.pending_ttl must be positive when the scheduler is enabled")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("client_url", "http://localhost:5173")

	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.rate_limit", 120)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "lms")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.connect_retries", 5)

	v.SetDefault("redis_url", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.cookie_name", "token")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.currency", "inr")
	v.SetDefault("stripe.success_url", "http://localhost:5173/course-progress/%d")
	v.SetDefault("stripe.cancel_url", "http://localhost:5173/course-detail/%d")

	v.SetDefault("media.base_url", "https://api.cloudinary.com/v1_1")
	v.SetDefault("media.cloud_name", "")
	v.SetDefault("media.api_key", "")
	v.SetDefault("media.api_secret", "")
	v.SetDefault("media.timeout", "2m")

	v.SetDefault("events.kafka_brokers", []string{})
	v.SetDefault("events.topic_prefix", "lms")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.sweep_spec", "@every 15m")
	v.SetDefault("scheduler.pending_ttl", "24h")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
