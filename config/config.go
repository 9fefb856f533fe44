package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Grid      GridConfig
	CSRF      CSRFConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	AMQP      AMQPConfig
}

type AppConfig struct {
	Port     string
	Env      string
	Timezone string
	Locale   string
	LogLevel string
}

type DBConfig struct {
	Driver      string // postgres or sqlite
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	Path        string // sqlite only
	AutoMigrate bool
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

type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt
}

// GridConfig is the weekly booking template shown to visitors.
type GridConfig struct {
	Weekdays    []string
	StartHour   int
	EndHour     int
	SlotMinutes int
	Weeks       int
}

type CSRFConfig struct {
	AuthKey string // 32 bytes
	Secure  bool
}

type CORSConfig struct {
	AllowedOrigins []string // empty allows any origin without credentials
}

type RateLimitConfig struct {
	RPS            float64
	Burst          int
	TrustedProxies []string // IPs or CIDRs allowed to set X-Forwarded-For
}

type AMQPConfig struct {
	URL      string // empty disables event publishing
	Exchange string
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_TIMEZONE", "Local")
	viper.SetDefault("APP_LOCALE", "en")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_PATH", "booking.db")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("GRID_WEEKDAYS", "Monday,Tuesday,Wednesday,Thursday,Friday")
	viper.SetDefault("GRID_START_HOUR", 9)
	viper.SetDefault("GRID_END_HOUR", 13)
	viper.SetDefault("GRID_SLOT_MINUTES", 30)
	viper.SetDefault("GRID_WEEKS", 2)
	viper.SetDefault("CSRF_SECURE", false)
	viper.SetDefault("RATE_LIMIT_RPS", 1.0)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("AMQP_EXCHANGE", "booking.events")
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	// .env is optional, the environment alone is enough in containers
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 30 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			Timezone: viper.GetString("APP_TIMEZONE"),
			Locale:   viper.GetString("APP_LOCALE"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Driver:      strings.ToLower(viper.GetString("DB_DRIVER")),
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			Name:        viper.GetString("DB_NAME"),
			Path:        viper.GetString("DB_PATH"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Admin: AdminConfig{
			Username:     viper.GetString("ADMIN_USERNAME"),
			PasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
		},
		Grid: GridConfig{
			Weekdays:    splitList(viper.GetString("GRID_WEEKDAYS")),
			StartHour:   viper.GetInt("GRID_START_HOUR"),
			EndHour:     viper.GetInt("GRID_END_HOUR"),
			SlotMinutes: viper.GetInt("GRID_SLOT_MINUTES"),
			Weeks:       viper.GetInt("GRID_WEEKS"),
		},
		CSRF: CSRFConfig{
			AuthKey: viper.GetString("CSRF_AUTH_KEY"),
			Secure:  viper.GetBool("CSRF_SECURE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			RPS:            viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:          viper.GetInt("RATE_LIMIT_BURST"),
			TrustedProxies: splitList(viper.GetString("RATE_LIMIT_TRUSTED_PROXIES")),
		},
		AMQP: AMQPConfig{
			URL:      viper.GetString("AMQP_URL"),
			Exchange: viper.GetString("AMQP_EXCHANGE"),
		},
	}

	return config, nil
}

// Location resolves the single timezone every date and time is interpreted in.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// splitList splits a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
