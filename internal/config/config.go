package config

import (
	"os"
	"strconv"
	"time"

	"csvpilot/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Paths    PathConfig
	Python   PythonConfig
	Pipeline PipelineConfig
	Database DatabaseConfig
	Session  SessionConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// PathConfig holds file system paths
type PathConfig struct {
	UploadsDir string
	OutputsDir string
}

// PythonConfig holds settings for the external numeric runtime
type PythonConfig struct {
	Binary        string
	ScriptsDir    string
	MaxConcurrent int64
	Timeout       time.Duration
}

// PipelineConfig holds analysis pipeline settings
type PipelineConfig struct {
	CorrMethod      string
	CorrThreshold   float64
	WorkflowTimeout time.Duration
}

// DatabaseConfig holds the optional run-registry database settings.
// When URL is empty the in-memory registry is used instead.
type DatabaseConfig struct {
	URL string
}

// SessionConfig holds session store settings
type SessionConfig struct {
	TTL time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Paths: PathConfig{
			UploadsDir: getEnvOrDefault("UPLOADS_DIR", "uploads"),
			OutputsDir: getEnvOrDefault("OUTPUTS_DIR", "outputs"),
		},
		Python: PythonConfig{
			Binary:        getEnvOrDefault("PYTHON_BIN", "python3"),
			ScriptsDir:    getEnvOrDefault("SCRIPTS_DIR", "scripts"),
			MaxConcurrent: int64(getEnvIntOrDefault("PYTHON_MAX_CONCURRENT", 4)),
			Timeout:       getEnvDurationOrDefault("PYTHON_TIMEOUT", 10*time.Minute),
		},
		Pipeline: PipelineConfig{
			CorrMethod:      getEnvOrDefault("CORR_METHOD", "pearson"),
			CorrThreshold:   getEnvFloatOrDefault("CORR_THRESHOLD", 0.5),
			WorkflowTimeout: getEnvDurationOrDefault("WORKFLOW_TIMEOUT", 15*time.Minute),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Session: SessionConfig{
			TTL: getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Paths.UploadsDir == "" {
		return errors.ConfigInvalid("uploads directory is required")
	}
	if config.Paths.OutputsDir == "" {
		return errors.ConfigInvalid("outputs directory is required")
	}
	if config.Pipeline.CorrThreshold < 0 || config.Pipeline.CorrThreshold > 1 {
		return errors.ConfigInvalid("CORR_THRESHOLD must be within [0,1]")
	}
	if config.Python.MaxConcurrent < 1 {
		return errors.ConfigInvalid("PYTHON_MAX_CONCURRENT must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
