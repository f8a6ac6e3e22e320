package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default_secret_key_change_in_production"

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cookie       CookieConfig
	Verification VerificationConfig
	Reset        ResetConfig
	RateLimit    RateLimitConfig
	Mail         MailConfig
	RabbitMQ     RabbitMQConfig
	Sweeper      SweeperConfig
	GRPC         GRPCConfig
}

type AppConfig struct {
	Name        string        `mapstructure:"name"`
	Environment string        `mapstructure:"environment"`
	Debug       bool          `mapstructure:"debug"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Port        string        `mapstructure:"port"`
	URL         string        `mapstructure:"url"`
	FrontendURL string        `mapstructure:"frontend_url"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	Issuer     string        `mapstructure:"issuer"`
}

// CookieConfig drives the access_token/refresh_token cookies. A zero Domain
// leaves the attribute off so the browser scopes the cookie to the host.
type CookieConfig struct {
	Domain     string        `mapstructure:"domain"`
	Secure     bool          `mapstructure:"secure"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type VerificationConfig struct {
	Secret           string        `mapstructure:"secret"`
	TTL              time.Duration `mapstructure:"ttl"`
	RequireSignature bool          `mapstructure:"require_signature"`
}

type ResetConfig struct {
	TTL                time.Duration `mapstructure:"ttl"`
	RevealUnknownEmail bool          `mapstructure:"reveal_unknown_email"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type RateLimitConfig struct {
	Request  int `mapstructure:"request"`
	Duration int `mapstructure:"duration"`
}

// MailConfig selects how outgoing mail leaves the service: "smtp" dials the
// relay directly, "queue" publishes a job to RabbitMQ, "log" only logs it.
type MailConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RabbitMQConfig struct {
	URL            string `mapstructure:"url"`
	MailQueue      string `mapstructure:"mail_queue"`
	EventsExchange string `mapstructure:"events_exchange"`
}

type SweeperConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type GRPCConfig struct {
	HealthPort string `mapstructure:"health_port"`
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environments inject variables directly
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", defaultJWTSecret)

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "authflow"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			Timeout:     getEnvAsDuration("APP_TIMEOUT", 30*time.Second),
			URL:         strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
			FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "auth_db"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getEnvAsDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
		},
		JWT: JWTConfig{
			Secret:     jwtSecret,
			AccessTTL:  getEnvAsDuration("JWT_TTL", 15*time.Minute),
			RefreshTTL: getEnvAsDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
			Issuer:     getEnv("JWT_ISSUER", "authflow"),
		},
		Cookie: CookieConfig{
			Domain:     getEnv("COOKIE_DOMAIN", ""),
			Secure:     getEnvAsBool("COOKIE_SECURE", false),
			AccessTTL:  getEnvAsDuration("ACCESS_COOKIE_TTL", 365*24*time.Hour),
			RefreshTTL: getEnvAsDuration("REFRESH_COOKIE_TTL", 365*24*time.Hour),
		},
		Verification: VerificationConfig{
			Secret:           getEnv("VERIFICATION_SECRET", jwtSecret),
			TTL:              getEnvAsDuration("VERIFICATION_TTL", 60*time.Minute),
			RequireSignature: getEnvAsBool("VERIFY_REQUIRE_SIGNATURE", false),
		},
		Reset: ResetConfig{
			TTL:                getEnvAsDuration("RESET_TOKEN_TTL", 24*time.Hour),
			RevealUnknownEmail: getEnvAsBool("RESET_REVEAL_UNKNOWN_EMAIL", false),
		},
		RateLimit: RateLimitConfig{
			Request:  getEnvAsInt("RATE_LIMIT_MAX_REQUEST", 10),
			Duration: getEnvAsInt("RATE_LIMIT_DURATION", 60),
		},
		Mail: MailConfig{
			Driver:   strings.ToLower(getEnv("MAIL_DRIVER", "log")),
			Host:     getEnv("MAIL_HOST", "localhost"),
			Port:     getEnvAsInt("MAIL_PORT", 587),
			Username: getEnv("MAIL_USERNAME", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
			From:     getEnv("MAIL_FROM_ADDRESS", "no-reply@authflow.local"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:            getEnv("RABBITMQ_URL", ""),
			MailQueue:      getEnv("RABBITMQ_MAIL_QUEUE", "authflow.mail"),
			EventsExchange: getEnv("RABBITMQ_EVENTS_EXCHANGE", "authflow.events"),
		},
		Sweeper: SweeperConfig{
			Enabled:  getEnvAsBool("SWEEPER_ENABLED", true),
			Interval: getEnvAsDuration("SWEEPER_INTERVAL", time.Hour),
		},
		GRPC: GRPCConfig{
			HealthPort: getEnv("GRPC_HEALTH_PORT", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects combinations that would leave the service insecure or
// unable to deliver mail.
func (c *Config) Validate() error {
	if c.App.Environment == "production" && c.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.RateLimit.Request <= 0 || c.RateLimit.Duration <= 0 {
		return errors.New("rate limit values must be positive")
	}
	if c.Sweeper.Enabled && c.Sweeper.Interval <= 0 {
		return errors.New("SWEEPER_INTERVAL must be positive when the sweeper is enabled")
	}
	switch c.Mail.Driver {
	case "smtp", "log":
	case "queue":
		if c.RabbitMQ.URL == "" {
			return errors.New("RABBITMQ_URL is required when MAIL_DRIVER=queue")
		}
	default:
		return fmt.Errorf("unsupported MAIL_DRIVER %q", c.Mail.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.Duration) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
