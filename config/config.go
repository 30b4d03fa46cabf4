package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Mongo     MongoConfig
	Auth      AuthConfig
	Order     OrderConfig
	Stripe    StripeConfig
	Email     EmailConfig
	Unsplash  UnsplashConfig
	RateLimit RateLimitConfig
	Circuit   CircuitConfig
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Environment     string        `mapstructure:"environment"`
	HTTPPort        string        `mapstructure:"http_port"`
	HTTPSPort       string        `mapstructure:"https_port"`
	TLSCertFile     string        `mapstructure:"tls_cert_file"`
	TLSKeyFile      string        `mapstructure:"tls_key_file"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
}

// TLSEnabled reports whether both certificate and key are configured.
func (a AppConfig) TLSEnabled() bool {
	return a.TLSCertFile != "" && a.TLSKeyFile != ""
}

type StoreConfig struct {
	Driver  string `mapstructure:"driver"`
	DataDir string `mapstructure:"data_dir"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type AuthConfig struct {
	HashingSecret     string        `mapstructure:"hashing_secret"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL   time.Duration `mapstructure:"refresh_token_ttl"`
	MaxExtensionHours int           `mapstructure:"max_extension_hours"`
}

type OrderConfig struct {
	Limit    int    `mapstructure:"limit"`
	Currency string `mapstructure:"currency"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type EmailConfig struct {
	Provider            string `mapstructure:"provider"`
	PostmarkServerToken string `mapstructure:"postmark_server_token"`
	SendGridAPIKey      string `mapstructure:"sendgrid_api_key"`
	Sender              string `mapstructure:"sender"`
}

type UnsplashConfig struct {
	AccessKey string        `mapstructure:"access_key"`
	BaseURL   string        `mapstructure:"base_url"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type RateLimitConfig struct {
	Request  int `mapstructure:"request"`
	Duration int `mapstructure:"duration"`
}

type CircuitConfig struct {
	Threshold int           `mapstructure:"threshold"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine, the environment may already be populated
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "midas"),
			Environment:     getEnv("APP_ENV", "development"),
			HTTPPort:        getEnv("HTTP_PORT", "3000"),
			HTTPSPort:       getEnv("HTTPS_PORT", "3001"),
			TLSCertFile:     getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:      getEnv("TLS_KEY_FILE", ""),
			Timeout:         getEnvAsDuration("APP_TIMEOUT", 30*time.Second),
			ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Driver:  getEnv("STORE_DRIVER", "file"),
			DataDir: getEnv("DATA_DIR", "./.data"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			Name:         getEnv("DB_NAME", "midas"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "midas"),
		},
		Auth: AuthConfig{
			HashingSecret:     getEnv("HASHING_SECRET", "thisIsAlsoASecret"),
			AccessTokenTTL:    getEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour),
			RefreshTokenTTL:   getEnvAsDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
			MaxExtensionHours: getEnvAsInt("MAX_TOKEN_EXTENSION_HOURS", 6),
		},
		Order: OrderConfig{
			Limit:    getEnvAsInt("ORDER_LIMIT", 10),
			Currency: getEnv("CURRENCY", "usd"),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		},
		Email: EmailConfig{
			Provider:            getEnv("EMAIL_PROVIDER", "postmark"),
			PostmarkServerToken: getEnv("POSTMARK_SERVER_TOKEN", "POSTMARK_API_TEST"),
			SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
			Sender:              getEnv("EMAIL_SENDER", "midas@pizza.com"),
		},
		Unsplash: UnsplashConfig{
			AccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
			BaseURL:   getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
			CacheTTL:  getEnvAsDuration("IMAGE_CACHE_TTL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Request:  getEnvAsInt("RATE_LIMIT_MAX_REQUEST", 60),
			Duration: getEnvAsInt("RATE_LIMIT_DURATION", 60),
		},
		Circuit: CircuitConfig{
			Threshold: getEnvAsInt("CIRCUIT_THRESHOLD", 5),
			Timeout:   getEnvAsDuration("CIRCUIT_TIMEOUT", 30*time.Second),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "file", "redis", "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Email.Provider {
	case "postmark", "sendgrid":
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider)
	}

	if c.Order.Limit <= 0 {
		return fmt.Errorf("ORDER_LIMIT must be positive, got %d", c.Order.Limit)
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL < c.Auth.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL (%s) must be at least ACCESS_TOKEN_TTL (%s)",
			c.Auth.RefreshTokenTTL, c.Auth.AccessTokenTTL)
	}

	return nil
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
