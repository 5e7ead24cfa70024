package config

import (
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Printer     PrinterConfig
	Store       StoreConfig
	Sales       SalesConfig
	Log         LogConfig
	Idempotency IdempotencyConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Debug    bool
	Timezone string
	Version  string
}

type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	Timezone   string
	SQLitePath string
}

type CORSConfig struct {
	AllowedOrigins []string // empty allows every origin
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type PrinterConfig struct {
	Type     string // usb, network or none
	USBPath  string
	Address  string
	Width    int
	CodePage string
	Timeout  time.Duration
	Workers  int
}

type StoreConfig struct {
	Name           string
	Subtitle       string
	VATNote        string
	DefaultCashier string
}

type SalesConfig struct {
	RejectOversell        bool
	RequireIdempotencyKey bool
	LowStockThreshold     int
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type IdempotencyConfig struct {
	TTL         time.Duration
	CleanupSpec string
}

func Load() *Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		zap.S().Infof(".env file not found, using environment variables: %v", err)
	}

	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "kassensystem")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "5000")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("APP_TIMEZONE", "Europe/Berlin")
	v.SetDefault("APP_VERSION", "2.0")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "kassensystem")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_SQLITE_PATH", "kassensystem.db")
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{})
	v.SetDefault("CORS_ALLOWED_METHODS", []string{})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	v.SetDefault("CORS_MAX_AGE", "12h")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	v.SetDefault("PRINTER_ADDRESS", "")
	v.SetDefault("PRINTER_WIDTH", 48)
	v.SetDefault("PRINTER_CODEPAGE", "cp858")
	v.SetDefault("PRINTER_TIMEOUT", "5s")
	v.SetDefault("PRINTER_WORKERS", 2)
	v.SetDefault("STORE_NAME", "KASSENSYSTEM")
	v.SetDefault("STORE_SUBTITLE", "Ihr Geschäft")
	v.SetDefault("STORE_VAT_NOTE", "Alle Preise inkl. 19% MwSt")
	v.SetDefault("STORE_DEFAULT_CASHIER", "System")
	v.SetDefault("SALES_REJECT_OVERSELL", false)
	v.SetDefault("SALES_REQUIRE_IDEMPOTENCY_KEY", false)
	v.SetDefault("SALES_LOW_STOCK_THRESHOLD", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 30)
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("IDEMPOTENCY_CLEANUP_SPEC", "@hourly")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			Debug:    v.GetBool("APP_DEBUG"),
			Timezone: v.GetString("APP_TIMEZONE"),
			Version:  v.GetString("APP_VERSION"),
		},
		Database: DatabaseConfig{
			Driver:     v.GetString("DB_DRIVER"),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			Name:       v.GetString("DB_NAME"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			SSLMode:    v.GetString("DB_SSL_MODE"),
			Timezone:   v.GetString("DB_TIMEZONE"),
			SQLitePath: v.GetString("DB_SQLITE_PATH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: v.GetStringSlice("CORS_ALLOWED_HEADERS"),
			MaxAge:         v.GetDuration("CORS_MAX_AGE"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:     v.GetString("PRINTER_TYPE"),
			USBPath:  v.GetString("PRINTER_USB_PATH"),
			Address:  v.GetString("PRINTER_ADDRESS"),
			Width:    v.GetInt("PRINTER_WIDTH"),
			CodePage: v.GetString("PRINTER_CODEPAGE"),
			Timeout:  v.GetDuration("PRINTER_TIMEOUT"),
			Workers:  v.GetInt("PRINTER_WORKERS"),
		},
		Store: StoreConfig{
			Name:           v.GetString("STORE_NAME"),
			Subtitle:       v.GetString("STORE_SUBTITLE"),
			VATNote:        v.GetString("STORE_VAT_NOTE"),
			DefaultCashier: v.GetString("STORE_DEFAULT_CASHIER"),
		},
		Sales: SalesConfig{
			RejectOversell:        v.GetBool("SALES_REJECT_OVERSELL"),
			RequireIdempotencyKey: v.GetBool("SALES_REQUIRE_IDEMPOTENCY_KEY"),
			LowStockThreshold:     v.GetInt("SALES_LOW_STOCK_THRESHOLD"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Idempotency: IdempotencyConfig{
			TTL:         v.GetDuration("IDEMPOTENCY_TTL"),
			CleanupSpec: v.GetString("IDEMPOTENCY_CLEANUP_SPEC"),
		},
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves the shop's timezone. Calendar days in reports and
// receipt timestamps use it.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
