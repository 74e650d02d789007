package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for tabula. Values come from an optional
// YAML or JSON file; environment variables always override the file.
type Config struct {
	// Server
	Host        string `yaml:"host" json:"host" env:"TABULA_HOST"`
	Port        int    `yaml:"port" json:"port" env:"TABULA_PORT"`
	Environment string `yaml:"environment" json:"environment" env:"TABULA_ENV"`
	APIPrefix   string `yaml:"api_prefix" json:"api_prefix" env:"TABULA_API_PREFIX"`
	LogLevel    string `yaml:"log_level" json:"log_level" env:"TABULA_LOG_LEVEL"`

	// CORS
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins" env:"TABULA_CORS_ORIGINS" env-separator:","`

	// Auth
	APIKeyHeader string   `yaml:"api_key_header" json:"api_key_header" env:"TABULA_API_KEY_HEADER"`
	APIKeys      []string `yaml:"-" json:"-" env:"TABULA_API_KEYS" env-separator:","` // Secret - env only
	EnableAuth   bool     `yaml:"enable_auth" json:"enable_auth" env:"ENABLE_AUTH"`

	// Rate Limiting
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" json:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE"`

	// Security
	EnableAuditLogging bool `yaml:"enable_audit_logging" json:"enable_audit_logging" env:"ENABLE_AUDIT_LOGGING"`

	// Dataset
	DatasetTable string `yaml:"dataset_table" json:"dataset_table" env:"TABULA_DATASET_TABLE"`
	DatasetRows  int    `yaml:"dataset_rows" json:"dataset_rows" env:"TABULA_DATASET_ROWS"`
	DatasetSeed  int64  `yaml:"dataset_seed" json:"dataset_seed" env:"TABULA_DATASET_SEED"`

	// AI / LLM
	EnableLLMExtraction bool          `yaml:"enable_llm_extraction" json:"enable_llm_extraction" env:"ENABLE_LLM_EXTRACTION"`
	AnthropicAPIKey     string        `yaml:"-" json:"-" env:"ANTHROPIC_API_KEY"` // Secret - env only
	AnthropicBaseURL    string        `yaml:"anthropic_base_url" json:"anthropic_base_url" env:"ANTHROPIC_BASE_URL"` // override for a compatible proxy
	AnthropicModel      string        `yaml:"anthropic_model" json:"anthropic_model" env:"ANTHROPIC_MODEL"`
	AgentTimeout        time.Duration `yaml:"agent_timeout" json:"agent_timeout" env:"AGENT_TIMEOUT"`
}

// Load reads the file named by TABULA_CONFIG, if any, then applies the
// environment.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigEnvVar))
}

// LoadFile is Load with an explicit file path. An empty path reads the
// environment only. Fields absent from both keep their defaults, so a file
// may set booleans to false and the rate limit to 0.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		CORSOrigins:        slices.Clone(DefaultCORSOrigins),
		APIKeyHeader:       DefaultAPIKeyHeader,
		EnableAuth:         true,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		EnableAuditLogging: true,
		DatasetTable:       DefaultDatasetTable,
		DatasetRows:        DefaultDatasetRows,
		DatasetSeed:        DefaultDatasetSeed,
		AgentTimeout:       DefaultAgentTimeout,
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == DefaultEnvironment
}

// LLMEnabled reports whether the intent agent should be built.
func (c *Config) LLMEnabled() bool {
	return c.EnableLLMExtraction && c.AnthropicAPIKey != ""
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DatasetRows < 0 {
		return fmt.Errorf("dataset_rows must not be negative")
	}
	if strings.TrimSpace(c.DatasetTable) == "" {
		return fmt.Errorf("dataset_table is required")
	}
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with /")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate_limit_per_minute must not be negative")
	}
	return nil
}
