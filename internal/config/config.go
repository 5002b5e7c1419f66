// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Backend names for the summarize step.
const (
	BackendGemini   = "gemini"
	BackendEndpoint = "endpoint"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Sources
	Dataset    string `json:"dataset,omitempty"`     // HTTP index URL or s3:// prefix of the public dataset
	SampleSize int    `json:"sample_size,omitempty" validate:"omitempty,min=1"`
	StagingDir string `json:"staging_dir,omitempty"` // local staging directory for fetched articles

	// Working bucket
	Bucket string `json:"bucket,omitempty"` // S3 bucket for uploads and job output
	Region string `json:"region,omitempty"`
	Prefix string `json:"prefix,omitempty"` // key prefix inside the bucket

	// Topic detection
	DataAccessRoleARN string `json:"data_access_role_arn,omitempty"`
	NumTopics         int    `json:"num_topics,omitempty" validate:"omitempty,min=1,max=100"`
	PollInterval      int    `json:"poll_interval_seconds,omitempty" validate:"omitempty,min=1"`
	PollMaxAttempts   int    `json:"poll_max_attempts,omitempty" validate:"omitempty,min=1"`

	// Summarization
	SummaryBackend string `json:"summary_backend,omitempty" validate:"omitempty,oneof=gemini endpoint"`
	EndpointName   string `json:"endpoint_name,omitempty"` // hosted endpoint for the async backend
	APIKey         string `json:"api_key,omitempty"`       // Gemini API key
	MaxWords       int    `json:"max_words,omitempty" validate:"omitempty,min=10,max=500"`
	Concurrency    int    `json:"concurrency,omitempty" validate:"omitempty,min=1,max=32"`

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

var validate = validator.New()

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("config error: field '%s' failed rule '%s'", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	// The endpoint backend cannot run without an endpoint name
	if c.SummaryBackend == BackendEndpoint && c.EndpointName == "" {
		return fmt.Errorf("config error: 'endpoint_name' is required when 'summary_backend' is endpoint")
	}

	// Validate staging dir exists if specified
	if c.StagingDir != "" {
		if info, err := os.Stat(c.StagingDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: staging dir is not a directory: %s", c.StagingDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Dataset == "" {
		result.Dataset = defaults.Dataset
	}
	if result.StagingDir == "" {
		result.StagingDir = defaults.StagingDir
	}
	if result.Bucket == "" {
		result.Bucket = defaults.Bucket
	}
	if result.Region == "" {
		result.Region = defaults.Region
	}
	if result.Prefix == "" {
		result.Prefix = defaults.Prefix
	}
	if result.DataAccessRoleARN == "" {
		result.DataAccessRoleARN = defaults.DataAccessRoleARN
	}
	if result.SummaryBackend == "" {
		if defaults.SummaryBackend != "" {
			result.SummaryBackend = defaults.SummaryBackend
		} else {
			result.SummaryBackend = BackendGemini
		}
	}
	if result.EndpointName == "" {
		result.EndpointName = defaults.EndpointName
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.SampleSize == 0 {
		result.SampleSize = defaults.SampleSize
	}
	if result.NumTopics == 0 {
		result.NumTopics = defaults.NumTopics
	}
	if result.PollInterval == 0 {
		result.PollInterval = defaults.PollInterval
	}
	if result.PollMaxAttempts == 0 {
		result.PollMaxAttempts = defaults.PollMaxAttempts
	}
	if result.MaxWords == 0 {
		result.MaxWords = defaults.MaxWords
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
