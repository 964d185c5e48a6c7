package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bitvelocity/gatekeeper/auth"
	"github.com/bitvelocity/gatekeeper/health"
	"github.com/bitvelocity/gatekeeper/observe"
	"github.com/bitvelocity/gatekeeper/secret"
)

// Config holds the service configuration
type Config struct {
	// Server bind address (host:port)
	ServerAddr string

	// Prefix for every API route, e.g. /api
	BasePath string

	// Time allowed for in-flight requests on shutdown
	ShutdownTimeout time.Duration

	// PostgreSQL DSN; empty selects the in-memory product store
	DatabaseURL string

	// Log level: debug, info, warn or error
	LogLevel string

	// Deployment environment reported with telemetry
	Environment string

	JWT JWTConfig

	// Rule table text in ParseRules format; empty selects the product rules
	AuthRules string

	CORS CORSConfig

	// Tracing exporter (otlp, stdout, none) and sample ratio 0..1
	TracingExporter  string
	TracingSamplePct float64

	// Metrics exporter (otlp, prometheus, stdout, none)
	MetricsExporter string
}

// JWTConfig holds token validation settings.
type JWTConfig struct {
	// Secret is the unresolved JWT_SECRET value; see VerificationKey.
	Secret string
	// SecretEncoding is "raw" or "base64".
	SecretEncoding string
	Issuer         string
	Audience       string
	Leeway         time.Duration
}

// CORSConfig holds the cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		BasePath:        getEnv("BASE_PATH", "/api"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:     getEnv("ENVIRONMENT", "development"),
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", ""),
			SecretEncoding: strings.ToLower(getEnv("JWT_SECRET_ENCODING", "raw")),
			Issuer:         getEnv("JWT_ISSUER", "bitvelocity"),
			Audience:       getEnv("JWT_AUDIENCE", "bitvelocity-api"),
			Leeway:         getEnvDuration("JWT_LEEWAY", 0),
		},
		AuthRules: getEnv("AUTH_RULES", ""),
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}),
			MaxAge:         getEnvInt("CORS_MAX_AGE", 3600),
		},
		TracingExporter:  strings.ToLower(getEnv("TRACING_EXPORTER", "none")),
		TracingSamplePct: getEnvFloat("TRACING_SAMPLE_PCT", 1.0),
		MetricsExporter:  strings.ToLower(getEnv("METRICS_EXPORTER", "prometheus")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPolicy compiles the rule table from BASE_PATH and AUTH_RULES alone,
// without the token settings Load requires.
func LoadPolicy() (*auth.Policy, error) {
	cfg := &Config{
		BasePath:  getEnv("BASE_PATH", "/api"),
		AuthRules: getEnv("AUTH_RULES", ""),
	}
	return cfg.Policy()
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.SecretEncoding != "raw" && c.JWT.SecretEncoding != "base64" {
		return fmt.Errorf("JWT_SECRET_ENCODING must be raw or base64, got %q", c.JWT.SecretEncoding)
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return fmt.Errorf("JWT_ISSUER and JWT_AUDIENCE must not be empty")
	}
	if c.JWT.Leeway < 0 {
		return fmt.Errorf("JWT_LEEWAY must not be negative")
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("BASE_PATH must start with /, got %q", c.BasePath)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("AUTH_RULES: %w", err)
	}
	obs := c.Observe()
	return obs.Validate()
}

// VerificationKey resolves JWT_SECRET through resolver and decodes it.
func (c *Config) VerificationKey(ctx context.Context, resolver *secret.Resolver) ([]byte, error) {
	value, err := resolver.ResolveValue(ctx, c.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("resolve JWT_SECRET: %w", err)
	}
	if c.JWT.SecretEncoding == "base64" {
		return auth.DecodeBase64Key(value)
	}
	return auth.NewHMACKey([]byte(value))
}

// Validator returns the token validator settings.
func (c *Config) Validator() auth.ValidatorConfig {
	return auth.ValidatorConfig{
		Issuer:   c.JWT.Issuer,
		Audience: c.JWT.Audience,
		Leeway:   c.JWT.Leeway,
	}
}

// PublicRules are the endpoints reachable without a token. They are placed
// ahead of the configured table.
func PublicRules() []auth.Rule {
	return []auth.Rule{
		auth.PermitAll(http.MethodGet, health.LivenessPath),
		auth.PermitAll(http.MethodGet, health.ReadinessPath),
		auth.PermitAll(http.MethodGet, health.DetailPath),
		auth.PermitAll(http.MethodGet, health.DetailPath+"/*"),
		auth.PermitAll(http.MethodGet, "/metrics"),
	}
}

// Rules returns the full rule table: PublicRules, then AUTH_RULES or the
// product rules for BasePath.
func (c *Config) Rules() ([]auth.Rule, error) {
	table := auth.ProductRules(c.BasePath)
	if strings.TrimSpace(c.AuthRules) != "" {
		parsed, err := auth.ParseRules(c.AuthRules)
		if err != nil {
			return nil, err
		}
		table = parsed
	}
	return append(PublicRules(), table...), nil
}

// Policy compiles Rules.
func (c *Config) Policy() (*auth.Policy, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	return auth.NewPolicy(rules)
}

// CORSPolicy returns the default policy with the configured origins and max age.
func (c *Config) CORSPolicy() *auth.CORSPolicy {
	p := auth.DefaultCORSPolicy()
	p.AllowedOrigins = append([]string(nil), c.CORS.AllowedOrigins...)
	p.MaxAge = c.CORS.MaxAge
	return p
}

// Observe returns the telemetry configuration.
func (c *Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: "gatekeeper",
		Environment: c.Environment,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingExporter != "none",
			Exporter:  c.TracingExporter,
			SamplePct: c.TracingSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if result, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return result
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank items
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
