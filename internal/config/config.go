package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AuthCookieName is the session cookie set on login/register
const AuthCookieName = "auth-token"

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	Database  DatabaseConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Admin     AdminSeedConfig
	Cron      CronConfig
	RateLimit RateLimitConfig

	ResetTokenMinutes int
	AllowedOrigins    string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql | postgres | sqlite
	DSN      string // overrides the built DSN when set
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite file
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret     string
	ExpiryDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure bool
	Domain string
}

// StorageConfig selects where uploaded documents are kept
type StorageConfig struct {
	Driver    string // local | s3
	UploadDir string
	PublicURL string
	MaxBytes  int64
	S3Bucket  string
	S3Prefix  string
}

// RedisConfig is optional; empty URL disables Redis
type RedisConfig struct {
	URL string
}

// AdminSeedConfig holds the bootstrap admin account
type AdminSeedConfig struct {
	Email    string
	Password string
	Name     string
}

// CronConfig toggles scheduled maintenance jobs
type CronConfig struct {
	Enabled bool
}

// RateLimitConfig holds per-minute request limits per IP
type RateLimitConfig struct {
	Global int
	Auth   int
}

// ErrMissingJWTSecret is returned when JWT_SECRET is not configured
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only
func FromEnv() (*Config, error) {
	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	jwtCfg, err := loadJWTConfig(appMode)
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	database, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "3000"),
		Database:  database,
		JWT:       jwtCfg,
		Cookie:    loadCookieConfig(appMode),
		Storage:   storage,
		Redis:     RedisConfig{URL: os.Getenv("REDIS_URL")},
		Cron:      CronConfig{Enabled: getBool("CRON_ENABLED", true)},
		RateLimit: RateLimitConfig{Global: getInt("RATE_LIMIT_GLOBAL", 100), Auth: getInt("RATE_LIMIT_AUTH", 10)},
		Admin: AdminSeedConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
		ResetTokenMinutes: getInt("RESET_TOKEN_MINUTES", 60),
		AllowedOrigins:    os.Getenv("ALLOWED_ORIGINS"),
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s, DB: %s, STORAGE: %s]",
		appMode, database.Driver, storage.Driver)
	return config, nil
}

// loadDatabaseConfig loads database config
func loadDatabaseConfig() (DatabaseConfig, error) {
	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	cfg := DatabaseConfig{
		Driver:   driver,
		DSN:      strings.Trim(strings.TrimSpace(os.Getenv("DATABASE_DSN")), "\"'"),
		Host:     getEnv("DB_HOST", "localhost"),
		User:     getEnv("DB_USER", "root"),
		Password: os.Getenv("DB_PASS"),
		DBName:   getEnv("DB_NAME", "medirelay"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		Path:     getEnv("DB_PATH", "medirelay.db"),
	}

	switch driver {
	case "mysql":
		cfg.Port = getEnv("DB_PORT", "3306")
	case "postgres":
		cfg.Port = getEnv("DB_PORT", "5432")
		cfg.User = getEnv("DB_USER", "postgres")
	case "sqlite":
	default:
		return cfg, fmt.Errorf("invalid DB_DRIVER: '%s' (must be mysql, postgres or sqlite)", driver)
	}
	return cfg, nil
}

// loadJWTConfig loads JWT config; there is no fallback secret
func loadJWTConfig(mode string) (JWTConfig, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return JWTConfig{}, ErrMissingJWTSecret
	}
	if mode == "prod" && len(secret) < 32 {
		return JWTConfig{}, fmt.Errorf("JWT_SECRET must be at least 32 bytes in prod mode")
	}

	days := getInt("JWT_EXPIRY_DAYS", 7)
	if days < 1 {
		days = 7
	}

	return JWTConfig{
		Secret:     secret,
		ExpiryDays: days,
	}, nil
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	return CookieConfig{
		Secure: getBool("COOKIE_SECURE", mode == "prod"),
		Domain: getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadStorageConfig() (StorageConfig, error) {
	cfg := StorageConfig{
		Driver:    strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		PublicURL: strings.TrimRight(getEnv("UPLOAD_PUBLIC_URL", "/uploads"), "/"),
		MaxBytes:  int64(getInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
		S3Bucket:  os.Getenv("S3_BUCKET"),
	}

	switch cfg.Driver {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" {
			return cfg, fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
		// never the bucket root: the orphan sweep deletes unreferenced keys under the prefix
		cfg.S3Prefix = strings.Trim(getEnv("S3_PREFIX", "documents"), "/ ")
		if cfg.S3Prefix == "" {
			return cfg, fmt.Errorf("S3_PREFIX must not be empty when STORAGE_DRIVER=s3")
		}
		cfg.PublicURL = strings.TrimRight(getEnv("S3_PUBLIC_URL", "https://"+cfg.S3Bucket+".s3.amazonaws.com"), "/")
	default:
		return cfg, fmt.Errorf("invalid STORAGE_DRIVER: '%s' (must be local or s3)", cfg.Driver)
	}
	return cfg, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	if c.AllowedOrigins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://app.medirelay.fr"
	}
	return c.AllowedOrigins
}
