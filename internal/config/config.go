package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Billing   BillingConfig   `mapstructure:"billing"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`

	// accounts registered with these emails become superadmins
	SuperadminEmails []string `mapstructure:"superadmin_emails"`
}

type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	InviteExpirySpec string `mapstructure:"invite_expiry_spec"`
	Timezone         string `mapstructure:"timezone"`
}

type BillingConfig struct {
	DefaultCurrency   string `mapstructure:"default_currency"`
	DefaultPeriodType string `mapstructure:"default_period_type"`
}

// Load reads config.yaml (if present), .env and the environment, in increasing priority
func Load() (*Config, error) {
	// .env is optional; real environment variables always win over it
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "simplifly")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.issuer", "simplifly")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.invite_expiry_spec", "@every 15m")
	v.SetDefault("scheduler.timezone", "UTC")

	v.SetDefault("billing.default_currency", "USD")
	v.SetDefault("billing.default_period_type", "monthly")
}

// bindEnvVariables explicitly maps environment variables to config keys
func bindEnvVariables(v *viper.Viper) {
	// Database
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")

	// Server
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.port", "SERVER_PORT")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_ttl", "JWT_TTL")
	v.BindEnv("auth.superadmin_emails", "SUPERADMIN_EMAILS")

	// Scheduler
	v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	v.BindEnv("scheduler.invite_expiry_spec", "INVITE_EXPIRY_SPEC")
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) must be set")
	}
	switch c.Billing.DefaultCurrency {
	case "USD", "INR":
	default:
		return fmt.Errorf("unsupported billing.default_currency %q", c.Billing.DefaultCurrency)
	}
	switch c.Billing.DefaultPeriodType {
	case "weekly", "monthly", "quarterly":
	default:
		return fmt.Errorf("unsupported billing.default_period_type %q", c.Billing.DefaultPeriodType)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetAddress returns the server address as host:port
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
