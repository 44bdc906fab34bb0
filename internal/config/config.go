package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"family-drive-go/pkg/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	AuthModeSupabase = "supabase"
	AuthModeJWT      = "jwt"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	HTTPPort   string
	Env        string
	Log        LogConfig
	DB         DBConfig
	Auth       AuthConfig
	Supabase   SupabaseConfig
	CORS       CORSConfig
	Membership MembershipConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Metrics    MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	Mode           string
	JWTSecret      string
	JWTIssuer      string
	SkipAuth       bool
	MockUserID     string
	MockUserEmail  string
	MockUserName   string
	MockUserAvatar string
}

type SupabaseConfig struct {
	URL            string
	PublishableKey string
	AuthTimeout    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MembershipConfig struct {
	Cache    string
	CacheTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Bucket           string
	Region           string
	Endpoint         string
	AccessKey        string
	SecretKey        string
	PurgeConcurrency int
}

func (c StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

type MetricsConfig struct {
	Enabled bool
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "family_drive"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			Mode:           strings.ToLower(getEnv("AUTH_MODE", AuthModeSupabase)),
			JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
			JWTIssuer:      getEnv("AUTH_JWT_ISSUER", ""),
			SkipAuth:       getEnvBool("AUTH_SKIP", false),
			MockUserID:     getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail:  getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:   getEnv("AUTH_MOCK_USER_NAME", ""),
			MockUserAvatar: getEnv("AUTH_MOCK_USER_AVATAR_URL", ""),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			PublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
			AuthTimeout:    getEnvDuration("SUPABASE_AUTH_TIMEOUT", 5*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Membership: MembershipConfig{
			Cache:    strings.ToLower(getEnv("MEMBERSHIP_CACHE", CacheMemory)),
			CacheTTL: getEnvDuration("MEMBERSHIP_CACHE_TTL", time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Bucket:           getEnv("STORAGE_BUCKET", ""),
			Region:           getEnv("STORAGE_REGION", "auto"),
			Endpoint:         getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:        getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:        getEnv("STORAGE_SECRET_KEY", ""),
			PurgeConcurrency: getEnvInt("STORAGE_PURGE_CONCURRENCY", 4),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail at first use.
func (c Config) Validate() error {
	return validation.Errors{
		"HTTP_PORT":        validation.Validate(c.HTTPPort, validation.Required),
		"AUTH_MODE":        validation.Validate(c.Auth.Mode, validation.In(AuthModeSupabase, AuthModeJWT)),
		"AUTH_JWT_SECRET":  validation.Validate(c.Auth.JWTSecret, validation.When(c.Auth.Mode == AuthModeJWT && !c.Auth.SkipAuth, validation.Required)),
		"SUPABASE_URL":     validation.Validate(c.Supabase.URL, validation.When(c.Auth.Mode == AuthModeSupabase && !c.Auth.SkipAuth, validation.Required)),
		"MEMBERSHIP_CACHE": validation.Validate(c.Membership.Cache, validation.In(CacheMemory, CacheRedis, CacheNone)),
		"REDIS_ADDR":       validation.Validate(c.Redis.Addr, validation.When(c.Membership.Cache == CacheRedis, validation.Required)),
	}.Filter()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
