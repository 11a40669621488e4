package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	OTel       OTelConfig       `mapstructure:"otel"`
	Geocoding  GeocodingConfig  `mapstructure:"geocoding"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda connection settings
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
	Topic    string   `mapstructure:"topic"`
}

// JWTConfig holds JWT verification settings
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// GeocodingConfig configures the city coordinate lookup client
type GeocodingConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	UserAgent  string        `mapstructure:"user_agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// ScoringConfig holds the suggestion weights
type ScoringConfig struct {
	Limit int `mapstructure:"limit"`

	// Proximity curve: full score at or below FullScoreKm, zero at ZeroScoreKm.
	FullScoreKm float64 `mapstructure:"full_score_km"`
	ZeroScoreKm float64 `mapstructure:"zero_score_km"`

	AnonymousSameCity     float64 `mapstructure:"anonymous_same_city"`
	AnonymousNoCity       float64 `mapstructure:"anonymous_no_city"`
	AnonymousDistance     float64 `mapstructure:"anonymous_distance"`
	AnonymousFree         float64 `mapstructure:"anonymous_free"`
	AnonymousAvailability float64 `mapstructure:"anonymous_availability"`

	RegisteredPreferences  float64 `mapstructure:"registered_preferences"`
	RegisteredHistory      float64 `mapstructure:"registered_history"`
	RegisteredLocation     float64 `mapstructure:"registered_location"`
	RegisteredFree         float64 `mapstructure:"registered_free"`
	RegisteredAvailability float64 `mapstructure:"registered_availability"`
}

// ReconcilerConfig controls the event status sweep
type ReconcilerConfig struct {
	// Schedule is a cron expression; empty runs reconciliation only at startup.
	Schedule string        `mapstructure:"schedule"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig limits reservation attempts per user
type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
	BurstSize         int `mapstructure:"burst_size"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// A missing .env is fine, env vars may carry everything
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "venue-reservation")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("APP_LOG_LEVEL", "info")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	// Database defaults
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_DBNAME", "venue_reservation")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MIN_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", "30m")

	// Redis defaults
	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 5)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Kafka defaults
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "venue-reservation")
	v.SetDefault("KAFKA_TOPIC", "venue-events")

	// JWT defaults
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "venue-reservation")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "venue-reservation")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	// Geocoding defaults (Nominatim compatible)
	v.SetDefault("GEOCODING_ENABLED", true)
	v.SetDefault("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("GEOCODING_USER_AGENT", "venue-reservation/1.0")
	v.SetDefault("GEOCODING_TIMEOUT", "5s")
	v.SetDefault("GEOCODING_MAX_RETRIES", 2)

	// Scoring defaults
	v.SetDefault("SCORING_LIMIT", 12)
	v.SetDefault("SCORING_FULL_SCORE_KM", 5.0)
	v.SetDefault("SCORING_ZERO_SCORE_KM", 15.0)
	v.SetDefault("SCORING_ANONYMOUS_SAME_CITY", 0.5)
	v.SetDefault("SCORING_ANONYMOUS_NO_CITY", 0.3)
	v.SetDefault("SCORING_ANONYMOUS_DISTANCE", 0.35)
	v.SetDefault("SCORING_ANONYMOUS_FREE", 0.1)
	v.SetDefault("SCORING_ANONYMOUS_AVAILABILITY", 0.05)
	v.SetDefault("SCORING_REGISTERED_PREFERENCES", 0.6)
	v.SetDefault("SCORING_REGISTERED_HISTORY", 0.2)
	v.SetDefault("SCORING_REGISTERED_LOCATION", 0.1)
	v.SetDefault("SCORING_REGISTERED_FREE", 0.05)
	v.SetDefault("SCORING_REGISTERED_AVAILABILITY", 0.05)

	// Reconciler defaults
	v.SetDefault("RECONCILER_SCHEDULE", "")
	v.SetDefault("RECONCILER_TIMEOUT", "2m")

	// Rate limit defaults
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 5)
	v.SetDefault("RATE_LIMIT_BURST_SIZE", 10)
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")
	cfg.App.LogLevel = v.GetString("APP_LOG_LEVEL")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	// Database
	cfg.Database.Host = v.GetString("DATABASE_HOST")
	cfg.Database.Port = v.GetInt("DATABASE_PORT")
	cfg.Database.User = v.GetString("DATABASE_USER")
	cfg.Database.Password = v.GetString("DATABASE_PASSWORD")
	cfg.Database.DBName = v.GetString("DATABASE_DBNAME")
	cfg.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	cfg.Database.MaxOpenConns = v.GetInt("DATABASE_MAX_OPEN_CONNS")
	cfg.Database.MinIdleConns = v.GetInt("DATABASE_MIN_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DATABASE_CONN_MAX_LIFETIME")
	cfg.Database.ConnMaxIdleTime = v.GetDuration("DATABASE_CONN_MAX_IDLE_TIME")

	// Redis
	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Kafka
	cfg.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")
	cfg.Kafka.Topic = v.GetString("KAFKA_TOPIC")

	// JWT
	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.Issuer = v.GetString("JWT_ISSUER")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	// Geocoding
	cfg.Geocoding.Enabled = v.GetBool("GEOCODING_ENABLED")
	cfg.Geocoding.BaseURL = v.GetString("GEOCODING_BASE_URL")
	cfg.Geocoding.UserAgent = v.GetString("GEOCODING_USER_AGENT")
	cfg.Geocoding.Timeout = v.GetDuration("GEOCODING_TIMEOUT")
	cfg.Geocoding.MaxRetries = v.GetInt("GEOCODING_MAX_RETRIES")

	// Scoring
	cfg.Scoring.Limit = v.GetInt("SCORING_LIMIT")
	cfg.Scoring.FullScoreKm = v.GetFloat64("SCORING_FULL_SCORE_KM")
	cfg.Scoring.ZeroScoreKm = v.GetFloat64("SCORING_ZERO_SCORE_KM")
	cfg.Scoring.AnonymousSameCity = v.GetFloat64("SCORING_ANONYMOUS_SAME_CITY")
	cfg.Scoring.AnonymousNoCity = v.GetFloat64("SCORING_ANONYMOUS_NO_CITY")
	cfg.Scoring.AnonymousDistance = v.GetFloat64("SCORING_ANONYMOUS_DISTANCE")
	cfg.Scoring.AnonymousFree = v.GetFloat64("SCORING_ANONYMOUS_FREE")
	cfg.Scoring.AnonymousAvailability = v.GetFloat64("SCORING_ANONYMOUS_AVAILABILITY")
	cfg.Scoring.RegisteredPreferences = v.GetFloat64("SCORING_REGISTERED_PREFERENCES")
	cfg.Scoring.RegisteredHistory = v.GetFloat64("SCORING_REGISTERED_HISTORY")
	cfg.Scoring.RegisteredLocation = v.GetFloat64("SCORING_REGISTERED_LOCATION")
	cfg.Scoring.RegisteredFree = v.GetFloat64("SCORING_REGISTERED_FREE")
	cfg.Scoring.RegisteredAvailability = v.GetFloat64("SCORING_REGISTERED_AVAILABILITY")

	// Reconciler
	cfg.Reconciler.Schedule = v.GetString("RECONCILER_SCHEDULE")
	cfg.Reconciler.Timeout = v.GetDuration("RECONCILER_TIMEOUT")

	// Rate limit
	cfg.RateLimit.RequestsPerSecond = v.GetInt("RATE_LIMIT_REQUESTS_PER_SECOND")
	cfg.RateLimit.BurstSize = v.GetInt("RATE_LIMIT_BURST_SIZE")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required")
	}

	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT secret must be changed in production")
	}

	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("DATABASE_HOST and DATABASE_DBNAME are required")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when kafka is enabled")
	}

	if c.Scoring.Limit <= 0 {
		return fmt.Errorf("invalid scoring limit: %d", c.Scoring.Limit)
	}
	if c.Scoring.ZeroScoreKm <= c.Scoring.FullScoreKm {
		return fmt.Errorf("scoring zero-score distance (%.1f km) must exceed full-score distance (%.1f km)",
			c.Scoring.ZeroScoreKm, c.Scoring.FullScoreKm)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
