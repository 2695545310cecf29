package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
	Menu      MenuConfig      `yaml:"menu"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Enabled reports whether a Postgres server is configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

func (r RabbitMQConfig) Enabled() bool {
	return r.Host != ""
}

// StorageConfig locates the local key-value file backing carts, the admin
// menu and preferences.
type StorageConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	MinPasswordLen int           `yaml:"min_password_len"`
}

type CheckoutConfig struct {
	TaxRate  decimal.Decimal `yaml:"-"`
	RawRate  string          `yaml:"tax_rate"`
	Currency string          `yaml:"currency"`
	Locale   string          `yaml:"locale"`
	// CartIdle is how long an untouched cart stays loaded in memory.
	CartIdle time.Duration `yaml:"cart_idle"`
}

type MenuConfig struct {
	Discontinued []string `yaml:"discontinued"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	Burst    int           `yaml:"burst"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 5000, ShutdownTimeout: 10 * time.Second},
		Database: DatabaseConfig{
			Port: 5432,
		},
		RabbitMQ: RabbitMQConfig{Port: 5672},
		Storage:  StorageConfig{Path: "cafe.db"},
		Auth: AuthConfig{
			TokenTTL:       24 * time.Hour,
			MinPasswordLen: 8,
		},
		Checkout: CheckoutConfig{
			RawRate:  "0.08",
			Currency: "INR",
			Locale:   "en-IN",
			CartIdle: 30 * time.Minute,
		},
		Menu:      MenuConfig{Discontinued: []string{"espresso", "cappuccino", "croissant"}},
		Log:       LogConfig{Level: "info"},
		CORS:      CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: RateLimitConfig{Requests: 100, Window: 15 * time.Minute, Burst: 20},
	}
}

// Load reads path (if non-empty) over the defaults, then applies .env and
// environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(cfg.Checkout.RawRate))
	if err != nil {
		return nil, fmt.Errorf("invalid checkout.tax_rate %q: %w", cfg.Checkout.RawRate, err)
	}
	cfg.Checkout.TaxRate = rate

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.RabbitMQ.Host, "RABBITMQ_HOST")
	setString(&c.RabbitMQ.User, "RABBITMQ_USER")
	setString(&c.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	setString(&c.Storage.Path, "CAFE_STORAGE_PATH")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Checkout.RawRate, "CAFE_TAX_RATE")
	setString(&c.Log.Level, "CAFE_LOG_LEVEL")

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}

	for key, dst := range map[string]*int{
		"PORT":          &c.Server.Port,
		"DB_PORT":       &c.Database.Port,
		"RABBITMQ_PORT": &c.RabbitMQ.Port,
	} {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

// Validate checks ranges that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Checkout.TaxRate.IsNegative() || c.Checkout.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("checkout.tax_rate %s must be between 0 and 1", c.Checkout.TaxRate))
	}
	if c.Checkout.CartIdle <= 0 {
		errs = append(errs, errors.New("checkout.cart_idle must be positive"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.MinPasswordLen < 1 {
		errs = append(errs, errors.New("auth.min_password_len must be positive"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit requires positive requests and window"))
	}
	if c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("rate_limit.burst %d must be at least 1", c.RateLimit.Burst))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
