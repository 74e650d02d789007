package config

import "time"

const (
	// ConfigEnvVar names the optional config file.
	ConfigEnvVar = "TABULA_CONFIG"

	DefaultHost        = "0.0.0.0"
	DefaultPort        = 3000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultAPIKeyHeader       = "X-API-Key"
	DefaultRateLimitPerMinute = 60

	DefaultDatasetTable = "sales"
	DefaultDatasetRows  = 100
	DefaultDatasetSeed  = 1

	DefaultAgentTimeout = 30 * time.Second
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}
