package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/Wjwesley1/queen-store-frontend/pkg/config"
	"github.com/Wjwesley1/queen-store-frontend/pkg/httpclient"
	"github.com/Wjwesley1/queen-store-frontend/pkg/tracing"
)

// Profile backends.
const (
	ProfileFile   = "file"
	ProfileRedis  = "redis"
	ProfileMemory = "memory"
)

// Config holds the configuration shared by the storefront CLI and the dev backend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// Store API
	StoreAPIURL     string  `env:"STORE_API_URL" envDefault:"http://localhost:5000"`
	StoreAPITimeout int     `env:"STORE_API_TIMEOUT_SECONDS" envDefault:"15"`
	StoreAPIRetries int     `env:"STORE_API_MAX_RETRIES" envDefault:"0"`
	CBEnabled       bool    `env:"CB_ENABLED" envDefault:"false"`
	CBMinRequests   uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`
	CBFailureRatio  float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBOpenSeconds   int     `env:"CB_OPEN_SECONDS" envDefault:"30"`

	// Profile storage
	ProfileBackend string `env:"PROFILE_BACKEND" envDefault:"file"`
	ProfilePath    string `env:"PROFILE_PATH" envDefault:".queen-store/profile.yaml"`
	ProfileName    string `env:"PROFILE_NAME" envDefault:"default"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass      string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`

	// Checkout
	WhatsAppNumber string `env:"WHATSAPP_NUMBER" envDefault:"5511999999999"`

	// Auth
	InactivityMinutes int `env:"AUTH_INACTIVITY_MINUTES" envDefault:"30"`

	// Kafka; empty disables order events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Dev backend
	FakeAPIPort       int    `env:"FAKEAPI_HTTP_PORT" envDefault:"5000"`
	FakeAPIJWTSecret  string `env:"FAKEAPI_JWT_SECRET" envDefault:"queen-store-dev-secret"`
	FakeAPITokenTTL   int    `env:"FAKEAPI_TOKEN_TTL_HOURS" envDefault:"24"`
	FakeAPIAutoVerify bool   `env:"FAKEAPI_AUTO_VERIFY" envDefault:"false"`

	Tracing tracing.Config
}

// Load reads .env (if present) and the environment, then validates.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotenv(); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.StoreAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid STORE_API_URL: %q", c.StoreAPIURL)
	}
	if c.StoreAPITimeout < 1 {
		return fmt.Errorf("STORE_API_TIMEOUT_SECONDS must be positive, got %d", c.StoreAPITimeout)
	}
	if c.StoreAPIRetries < 0 {
		return fmt.Errorf("STORE_API_MAX_RETRIES must not be negative, got %d", c.StoreAPIRetries)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %v", c.CBFailureRatio)
	}
	switch c.ProfileBackend {
	case ProfileFile, ProfileRedis, ProfileMemory:
	default:
		return fmt.Errorf("PROFILE_BACKEND must be one of file, redis, memory; got %q", c.ProfileBackend)
	}
	if c.ProfileName == "" {
		return fmt.Errorf("PROFILE_NAME is required")
	}
	if c.WhatsAppNumber == "" {
		return fmt.Errorf("WHATSAPP_NUMBER is required")
	}
	if c.InactivityMinutes < 1 {
		return fmt.Errorf("AUTH_INACTIVITY_MINUTES must be positive, got %d", c.InactivityMinutes)
	}
	if c.FakeAPIPort < 1 || c.FakeAPIPort > 65535 {
		return fmt.Errorf("invalid FAKEAPI_HTTP_PORT: %d", c.FakeAPIPort)
	}
	if c.FakeAPITokenTTL < 1 {
		return fmt.Errorf("FAKEAPI_TOKEN_TTL_HOURS must be positive, got %d", c.FakeAPITokenTTL)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be in [0, 1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

// HTTPClient derives the store API client settings.
func (c *Config) HTTPClient() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = time.Duration(c.StoreAPITimeout) * time.Second
	hc.MaxRetries = c.StoreAPIRetries
	return hc
}

// CircuitBreaker derives the store API breaker settings.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	cb := httpclient.DefaultCircuitBreakerConfig("store-api")
	cb.MinRequests = c.CBMinRequests
	cb.FailureRatio = c.CBFailureRatio
	cb.Timeout = time.Duration(c.CBOpenSeconds) * time.Second
	return cb
}

// InactivityTimeout is the idle window after which a customer is logged out.
func (c *Config) InactivityTimeout() time.Duration {
	return time.Duration(c.InactivityMinutes) * time.Minute
}

// TokenTTL is the lifetime of tokens signed by the dev backend.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.FakeAPITokenTTL) * time.Hour
}
