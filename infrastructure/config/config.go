package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"plotbot/pkg/utils"
)

// Environments
const (
	Development = "development"
	Staging     = "staging"
	Production  = "production"
)

// Idempotency backends
const (
	IdempotencyMemory   = "memory"
	IdempotencyRedis    = "redis"
	IdempotencyDynamoDB = "dynamodb"
)

// Metrics backends
const (
	MetricsPrometheus = "prometheus"
	MetricsCloudWatch = "cloudwatch"
	MetricsNone       = "none"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production"`
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Lambda configuration
	IsLambda           bool   `yaml:"-"`
	LambdaFunctionName string `yaml:"-"`

	// LINE Messaging API
	LineChannelSecret      string `yaml:"line_channel_secret"`
	LineChannelAccessToken string `yaml:"line_channel_access_token"`

	// AWS configuration
	AWSRegion     string        `yaml:"aws_region" validate:"required"`
	Bucket        string        `yaml:"aws_bucket"`
	PresignExpiry time.Duration `yaml:"presign_expiry" validate:"gt=0"`
	EventBusName  string        `yaml:"event_bus_name"`

	// Webhook deduplication
	IdempotencyBackend string        `yaml:"idempotency_backend" validate:"oneof=memory redis dynamodb"`
	IdempotencyTable   string        `yaml:"idempotency_table" validate:"required_if=IdempotencyBackend dynamodb"`
	IdempotencyTTL     time.Duration `yaml:"idempotency_ttl" validate:"gt=0"`
	RedisAddr          string        `yaml:"redis_addr" validate:"required_if=IdempotencyBackend redis"`

	// Observability
	MetricsBackend   string `yaml:"metrics_backend" validate:"oneof=prometheus cloudwatch none"`
	MetricsNamespace string `yaml:"metrics_namespace" validate:"required"`
	EnableTracing    bool   `yaml:"enable_tracing"`
	OTLPEndpoint     string `yaml:"otlp_endpoint" validate:"required_if=EnableTracing true"`

	// Rendering and plotting
	ChartWidth  int  `yaml:"chart_width" validate:"gt=0,max=4096"`
	ChartHeight int  `yaml:"chart_height" validate:"gt=0,max=4096"`
	Log2Base2   bool `yaml:"log2_base2"`

	// REST API
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" validate:"gte=0"`

	// ConfigFile is the YAML file applied before environment variables, if any.
	ConfigFile string `yaml:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        Development,
		LogLevel:           "info",
		AWSRegion:          "ap-northeast-1",
		PresignExpiry:      10 * time.Minute,
		IdempotencyBackend: IdempotencyMemory,
		IdempotencyTTL:     24 * time.Hour,
		MetricsBackend:     MetricsPrometheus,
		MetricsNamespace:   "plotbot",
		ChartWidth:         640,
		ChartHeight:        480,
		RateLimitPerMinute: 60,
	}
}

// LoadConfig builds configuration from defaults, the optional CONFIG_FILE
// YAML overlay and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))

	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", "")
	c.IsLambda = c.LambdaFunctionName != ""

	c.LineChannelSecret = getEnv("LINE_CHANNEL_SECRET", c.LineChannelSecret)
	c.LineChannelAccessToken = getEnv("LINE_CHANNEL_ACCESS_TOKEN", c.LineChannelAccessToken)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.Bucket = getEnv("AWS_BUCKET", c.Bucket)
	c.PresignExpiry = getEnvDuration("PRESIGN_EXPIRY", c.PresignExpiry)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.IdempotencyBackend = getEnv("IDEMPOTENCY_BACKEND", c.IdempotencyBackend)
	c.IdempotencyTable = getEnv("IDEMPOTENCY_TABLE", c.IdempotencyTable)
	c.IdempotencyTTL = getEnvDuration("IDEMPOTENCY_TTL", c.IdempotencyTTL)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)

	c.MetricsBackend = getEnv("METRICS_BACKEND", c.MetricsBackend)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)

	c.ChartWidth = getEnvInt("CHART_WIDTH", c.ChartWidth)
	c.ChartHeight = getEnvInt("CHART_HEIGHT", c.ChartHeight)
	c.Log2Base2 = getEnvBool("LOG2_BASE2", c.Log2Base2)

	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
}

// Validate checks struct rules, then the secrets production cannot run without
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.IsProduction() {
		if c.LineChannelSecret == "" {
			return fmt.Errorf("LINE_CHANNEL_SECRET is required in production")
		}
		if c.LineChannelAccessToken == "" {
			return fmt.Errorf("LINE_CHANNEL_ACCESS_TOKEN is required in production")
		}
		if c.Bucket == "" {
			return fmt.Errorf("AWS_BUCKET is required in production")
		}
		if c.IdempotencyBackend == IdempotencyMemory && c.IsLambda {
			return fmt.Errorf("IDEMPOTENCY_BACKEND=memory does not deduplicate across Lambda instances")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration syntax ("10m") or whole seconds ("600").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
