package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	minProductionSecretLength = 32
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Storage        StorageConfig
	Auth           AuthConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	RateLimit      RateLimitConfig
	Redis          RedisConfig
	Tracing        TracingConfig
	AdminBootstrap AdminBootstrapConfig
	Environment    string
}

type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
}

type StorageConfig struct {
	Driver string
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	JWTIssuer string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type RateLimitConfig struct {
	PublicPerMinute   int
	LoginPerMinute    int
	TrustedProxyCIDRs []string
}

type RedisConfig struct {
	URL string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    string
	Endpoint    string
	SampleRate  float64
}

type AdminBootstrapConfig struct {
	Name     string
	Email    string
	Password string
}

// Enabled reports whether an admin account should be ensured at startup.
func (a AdminBootstrapConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	return load(envSource{lookup: os.LookupEnv})
}

func load(src envSource) (Config, error) {
	env := src.get("ENVIRONMENT", "development")

	cfg := Config{
		Server: ServerConfig{
			Host:           src.get("SERVER_HOST", "0.0.0.0"),
			Port:           src.getInt("SERVER_PORT", 8080),
			RequestTimeout: src.getDuration("REQUEST_TIMEOUT", 15*time.Second),
			MaxBodyBytes:   int64(src.getInt("SERVER_MAX_BODY_BYTES", 1<<20)),
		},
		Database: DatabaseConfig{
			URL:            src.get("DATABASE_URL", ""),
			MaxConnections: src.getInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(src.get("STORAGE_DRIVER", StorageDriverPostgres)),
		},
		Auth: AuthConfig{
			JWTSecret: src.get("JWT_SECRET", ""),
			JWTExpiry: time.Duration(src.getInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
			JWTIssuer: src.get("JWT_ISSUER", "internhub"),
		},
		Logging: LoggingConfig{
			Level:  src.get("LOG_LEVEL", "info"),
			Format: src.get("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:   src.getInt("RATE_LIMIT_PUBLIC", 120),
			LoginPerMinute:    src.getInt("RATE_LIMIT_LOGIN", 10),
			TrustedProxyCIDRs: splitList(src.get("TRUSTED_PROXY_CIDRS", "")),
		},
		Redis: RedisConfig{
			URL: src.get("REDIS_URL", ""),
		},
		Tracing: TracingConfig{
			Enabled:     src.getBool("TRACING_ENABLED", false),
			ServiceName: src.get("TRACING_SERVICE_NAME", "internhub-server"),
			Exporter:    strings.ToLower(src.get("TRACING_EXPORTER", "stdout")),
			Endpoint:    src.get("TRACING_ENDPOINT", ""),
			SampleRate:  src.getFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		AdminBootstrap: AdminBootstrapConfig{
			Name:     src.get("ADMIN_NAME", "Administrator"),
			Email:    strings.ToLower(strings.TrimSpace(src.get("ADMIN_EMAIL", ""))),
			Password: src.get("ADMIN_PASSWORD", ""),
		},
		Environment: env,
	}

	origins := splitList(src.get("CORS_ALLOWED_ORIGINS", ""))
	switch strings.ToLower(env) {
	case "development", "test":
		cfg.CORS = CORSConfig{AllowAllOrigins: true, AllowedOrigins: origins}
	default:
		cfg.CORS = CORSConfig{AllowedOrigins: origins}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case StorageDriverMemory:
		if c.IsProduction() {
			return fmt.Errorf("STORAGE_DRIVER=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER %q is not supported", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0 and 1")
	}

	if c.IsProduction() {
		if len(c.Auth.JWTSecret) < minProductionSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecretLength)
		}
		if len(c.CORS.AllowedOrigins) == 0 {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
		}
	}
	return nil
}

type envSource struct {
	lookup func(string) (string, bool)
}

func (s envSource) get(key, fallback string) string {
	if value, ok := s.lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func (s envSource) getInt(key string, fallback int) int {
	value := s.get(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s envSource) getBool(key string, fallback bool) bool {
	value := s.get(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s envSource) getFloat(key string, fallback float64) float64 {
	value := s.get(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// getDuration accepts Go duration strings ("15s") or bare seconds ("15").
func (s envSource) getDuration(key string, fallback time.Duration) time.Duration {
	value := s.get(key, "")
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
