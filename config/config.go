package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Catalog   CatalogConfig
	Booking   BookingConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name       string
	Port       string
	Env        string
	Timezone   string
	LogLevel   string
	CORSOrigin string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// CatalogConfig selects where specialties, doctors and weekly templates come from.
type CatalogConfig struct {
	Source          string // "database" or "rest"
	BaseURL         string
	Token           string
	Timeout         time.Duration
	MaxRetries      uint64
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type BookingConfig struct {
	AllowDoctorChange bool
	SlotLockEnabled   bool
	SlotLockTTL       time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond int
}

const (
	CatalogSourceDatabase = "database"
	CatalogSourceREST     = "rest"
)

func setDefaults() {
	viper.SetDefault("APP_NAME", "hospital-scheduling")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("APP_CORS_ORIGIN", "*")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("JWT_ACCESS_EXPIRY", "15m")

	viper.SetDefault("CATALOG_SOURCE", CatalogSourceDatabase)
	viper.SetDefault("CATALOG_TIMEOUT", "10s")
	viper.SetDefault("CATALOG_MAX_RETRIES", 3)
	viper.SetDefault("CATALOG_BREAKER_FAILURES", 5)
	viper.SetDefault("CATALOG_BREAKER_TIMEOUT", "30s")

	viper.SetDefault("BOOKING_ALLOW_DOCTOR_CHANGE", false)
	viper.SetDefault("BOOKING_SLOT_LOCK_ENABLED", false)
	viper.SetDefault("BOOKING_SLOT_LOCK_TTL", "5s")

	viper.SetDefault("RATE_LIMIT_RPS", 20)
}

// LoadConfig reads .env when present and lets real environment variables override it.
func LoadConfig() (*Config, error) {
	setDefaults()
	viper.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		viper.SetConfigFile(".env")
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Name:       viper.GetString("APP_NAME"),
			Port:       viper.GetString("APP_PORT"),
			Env:        viper.GetString("APP_ENV"),
			Timezone:   viper.GetString("APP_TIMEZONE"),
			LogLevel:   viper.GetString("LOG_LEVEL"),
			CORSOrigin: viper.GetString("APP_CORS_ORIGIN"),
		},
		DB: DBConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Name:         viper.GetString("DB_NAME"),
			SSLMode:      viper.GetString("DB_SSLMODE"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Catalog: CatalogConfig{
			Source:          viper.GetString("CATALOG_SOURCE"),
			BaseURL:         viper.GetString("CATALOG_BASE_URL"),
			Token:           viper.GetString("CATALOG_API_TOKEN"),
			Timeout:         durationOr("CATALOG_TIMEOUT", 10*time.Second),
			MaxRetries:      viper.GetUint64("CATALOG_MAX_RETRIES"),
			BreakerFailures: viper.GetUint32("CATALOG_BREAKER_FAILURES"),
			BreakerTimeout:  durationOr("CATALOG_BREAKER_TIMEOUT", 30*time.Second),
		},
		Booking: BookingConfig{
			AllowDoctorChange: viper.GetBool("BOOKING_ALLOW_DOCTOR_CHANGE"),
			SlotLockEnabled:   viper.GetBool("BOOKING_SLOT_LOCK_ENABLED"),
			SlotLockTTL:       durationOr("BOOKING_SLOT_LOCK_TTL", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetInt("RATE_LIMIT_RPS"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case CatalogSourceDatabase:
	case CatalogSourceREST:
		if c.Catalog.BaseURL == "" {
			return fmt.Errorf("CATALOG_BASE_URL is required when CATALOG_SOURCE=%s", CatalogSourceREST)
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}

	return nil
}

// Location returns the timezone that defines "today" for availability queries.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
