package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the photo crawler
type Config struct {
	// Input list settings
	Input InputConfig `yaml:"input" json:"input"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Crawl behaviour (workers, delays, retries)
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Page resolution settings
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InputConfig holds identifier list configuration
type InputConfig struct {
	File  string `yaml:"file" json:"file"`
	Limit int    `yaml:"limit" json:"limit"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory   string `yaml:"directory" json:"directory"`
	WriteReport bool   `yaml:"write_report" json:"write_report"`
}

// CrawlConfig holds orchestration configuration
type CrawlConfig struct {
	Workers    int           `yaml:"workers" json:"workers"`
	Delay      time.Duration `yaml:"delay" json:"delay"`
	MaxRetries int           `yaml:"max_retries" json:"max_retries"`
}

// ResolverConfig holds page-scraping configuration
type ResolverConfig struct {
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	// AllSizes enables following the "view all sizes" link to collect
	// every labeled rendition of a photo.
	AllSizes bool `yaml:"all_sizes" json:"all_sizes"`
	// ReconstructURLs enables the best-effort heuristic that rebuilds a
	// large-size URL from the path components of an already found one.
	// The rebuilt URL is a guess and may not exist.
	ReconstructURLs bool `yaml:"reconstruct_urls" json:"reconstruct_urls"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	VerifyImage bool          `yaml:"verify_image" json:"verify_image"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			File:  "all_data.txt",
			Limit: 0, // 0 means all lines
		},
		Output: OutputConfig{
			Directory:   "./photos",
			WriteReport: true,
		},
		Crawl: CrawlConfig{
			Workers:    1,
			Delay:      time.Second,
			MaxRetries: 3,
		},
		Resolver: ResolverConfig{
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			AllSizes:        true,
			ReconstructURLs: false,
		},
		Download: DownloadConfig{
			Timeout:     10 * time.Second,
			VerifyImage: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if input := os.Getenv("PHOTOCRAWL_INPUT_FILE"); input != "" {
		c.Input.File = input
	}
	if outputDir := os.Getenv("PHOTOCRAWL_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if workers := os.Getenv("PHOTOCRAWL_WORKERS"); workers != "" {
		var val int
		fmt.Sscanf(workers, "%d", &val)
		if val > 0 {
			c.Crawl.Workers = val
		}
	}
	if limit := os.Getenv("PHOTOCRAWL_LIMIT"); limit != "" {
		var val int
		fmt.Sscanf(limit, "%d", &val)
		if val > 0 {
			c.Input.Limit = val
		}
	}
	if retries := os.Getenv("PHOTOCRAWL_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val > 0 {
			c.Crawl.MaxRetries = val
		}
	}
	if delay := os.Getenv("PHOTOCRAWL_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Crawl.Delay = d
		}
	}
	if userAgent := os.Getenv("PHOTOCRAWL_USER_AGENT"); userAgent != "" {
		c.Resolver.UserAgent = userAgent
	}
	if logLevel := os.Getenv("PHOTOCRAWL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".photocrawl.yaml",
		".photocrawl.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "photocrawl", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "photocrawl", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".photocrawl.yaml"),
		filepath.Join(os.Getenv("HOME"), ".photocrawl.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Input.File == "" {
		errs = append(errs, errors.New("input file is required"))
	}
	if c.Input.Limit < 0 {
		errs = append(errs, errors.New("input limit cannot be negative"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Crawl.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Crawl.Workers > 32 {
		errs = append(errs, errors.New("workers should not exceed 32"))
	}
	if c.Crawl.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Crawl.Delay < 0 {
		errs = append(errs, errors.New("delay cannot be negative"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if input, ok := flags["input"].(string); ok && input != "" {
		c.Input.File = input
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Input.Limit = limit
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Crawl.Workers = workers
	}
	if delay, ok := flags["delay"].(time.Duration); ok && delay >= 0 {
		c.Crawl.Delay = delay
	}
	if retries, ok := flags["retries"].(int); ok && retries >= 0 {
		c.Crawl.MaxRetries = retries
	}
	if allSizes, ok := flags["all-sizes"].(bool); ok {
		c.Resolver.AllSizes = allSizes
	}
	if reconstruct, ok := flags["reconstruct-urls"].(bool); ok {
		c.Resolver.ReconstructURLs = reconstruct
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".photocrawl.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
