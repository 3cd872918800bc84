package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Storage backends selectable through storage.backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// APIServerConfig represents the API server configuration
type APIServerConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Solana    SolanaConfig    `yaml:"solana"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Activity  ActivityConfig  `yaml:"activity"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"5000" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"120s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s" validate:"gt=0"`
}

// StorageConfig selects the repository backend
type StorageConfig struct {
	Backend      string `yaml:"backend" default:"memory" validate:"oneof=memory postgres"`
	SeedDemoData bool   `yaml:"seed_demo_data" default:"true"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host        string `yaml:"host" default:"localhost"`
	Port        int    `yaml:"port" default:"5432"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database" default:"goonhub"`
	SSLMode     string `yaml:"ssl_mode" default:"disable"`
	AutoMigrate bool   `yaml:"auto_migrate" default:"false"`
}

// RedisConfig enables the distributed rate limiter when URL is set
type RedisConfig struct {
	URL string `yaml:"url"`
}

// NATSConfig enables domain event broadcast when URL is set
type NATSConfig struct {
	URL           string        `yaml:"url"`
	SubjectPrefix string        `yaml:"subject_prefix" default:"goonhub.events"`
	Name          string        `yaml:"connection_name" default:"goonhub-api"`
	MaxReconnects int           `yaml:"max_reconnects" default:"10"`
	ReconnectWait time.Duration `yaml:"reconnect_wait" default:"2s"`
}

// SolanaConfig contains Solana RPC settings
type SolanaConfig struct {
	RPCURL         string        `yaml:"rpc_url" default:"https://api.mainnet-beta.solana.com" validate:"required,url"`
	Commitment     string        `yaml:"commitment" default:"confirmed" validate:"oneof=processed confirmed finalized"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"15s"`
}

// AIConfig contains settings for the OpenAI-compatible chat completion API.
// An empty APIKey switches the responder to its placeholder mode.
type AIConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url" default:"https://api.openai.com/v1" validate:"required,url"`
	Model          string        `yaml:"model" default:"gpt-4o-mini" validate:"required"`
	ModerationOn   bool          `yaml:"moderation_enabled" default:"true"`
	MaxTokens      int           `yaml:"max_tokens" default:"500" validate:"gt=0"`
	Temperature    float32       `yaml:"temperature" default:"0.8" validate:"gte=0,lte=2"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`
}

// RateLimitConfig bounds expensive endpoints per client
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" default:"true"`
	RequestsPerMinute int  `yaml:"requests_per_minute" default:"30" validate:"gt=0"`
	Burst             int  `yaml:"burst" default:"5" validate:"gt=0"`
}

// ActivityConfig contains feed and fan-out limits
type ActivityConfig struct {
	DefaultLimit int `yaml:"default_limit" default:"20" validate:"gt=0"`
	MaxLimit     int `yaml:"max_limit" default:"100" validate:"gtefield=DefaultLimit"`
	// MaxFanout caps activities written per event; 0 means unlimited.
	MaxFanout int `yaml:"max_fanout" default:"0" validate:"gte=0"`
}

// MetricsConfig contains prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// LoadAPIServer loads API server configuration from file.
// ${VAR} references are expanded from the environment before parsing.
func LoadAPIServer(configPath string) (*APIServerConfig, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseAPIServer(raw)
}

// ParseAPIServer parses, defaults and validates a YAML document.
func ParseAPIServer(raw []byte) (*APIServerConfig, error) {
	var cfg APIServerConfig
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateAPIServer(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateAPIServer(cfg *APIServerConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if cfg.Storage.Backend == BackendPostgres {
		if cfg.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if cfg.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	}
	return nil
}
