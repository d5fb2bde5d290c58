package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	// Test default values
	if config.Crawl.Workers != 1 {
		t.Errorf("Expected default workers to be 1, got %d", config.Crawl.Workers)
	}

	if config.Crawl.Delay != time.Second {
		t.Errorf("Expected default delay to be 1s, got %v", config.Crawl.Delay)
	}

	if config.Crawl.MaxRetries != 3 {
		t.Errorf("Expected default max retries to be 3, got %d", config.Crawl.MaxRetries)
	}

	if config.Output.Directory != "./photos" {
		t.Errorf("Expected default output directory to be ./photos, got %s", config.Output.Directory)
	}

	if !config.Resolver.AllSizes {
		t.Error("Expected all-sizes resolution to be enabled by default")
	}

	if config.Resolver.ReconstructURLs {
		t.Error("Expected URL reconstruction to be disabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Set test environment variables
	os.Setenv("PHOTOCRAWL_INPUT_FILE", "/tmp/ids.txt")
	os.Setenv("PHOTOCRAWL_OUTPUT_DIR", "/tmp/test-photos")
	os.Setenv("PHOTOCRAWL_WORKERS", "5")
	os.Setenv("PHOTOCRAWL_MAX_RETRIES", "7")
	os.Setenv("PHOTOCRAWL_DELAY", "500ms")
	os.Setenv("PHOTOCRAWL_LOG_LEVEL", "debug")

	defer func() {
		// Clean up environment variables
		os.Unsetenv("PHOTOCRAWL_INPUT_FILE")
		os.Unsetenv("PHOTOCRAWL_OUTPUT_DIR")
		os.Unsetenv("PHOTOCRAWL_WORKERS")
		os.Unsetenv("PHOTOCRAWL_MAX_RETRIES")
		os.Unsetenv("PHOTOCRAWL_DELAY")
		os.Unsetenv("PHOTOCRAWL_LOG_LEVEL")
	}()

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	// Test loaded values
	if config.Input.File != "/tmp/ids.txt" {
		t.Errorf("Expected input file to be /tmp/ids.txt, got %s", config.Input.File)
	}

	if config.Output.Directory != "/tmp/test-photos" {
		t.Errorf("Expected output directory to be /tmp/test-photos, got %s", config.Output.Directory)
	}

	if config.Crawl.Workers != 5 {
		t.Errorf("Expected workers to be 5, got %d", config.Crawl.Workers)
	}

	if config.Crawl.MaxRetries != 7 {
		t.Errorf("Expected max retries to be 7, got %d", config.Crawl.MaxRetries)
	}

	if config.Crawl.Delay != 500*time.Millisecond {
		t.Errorf("Expected delay to be 500ms, got %v", config.Crawl.Delay)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing input file",
			mutate:    func(c *Config) { c.Input.File = "" },
			wantError: true,
		},
		{
			name:      "missing output directory",
			mutate:    func(c *Config) { c.Output.Directory = "" },
			wantError: true,
		},
		{
			name:      "zero workers",
			mutate:    func(c *Config) { c.Crawl.Workers = 0 },
			wantError: true,
		},
		{
			name:      "too many workers",
			mutate:    func(c *Config) { c.Crawl.Workers = 100 },
			wantError: true,
		},
		{
			name:      "negative retries",
			mutate:    func(c *Config) { c.Crawl.MaxRetries = -1 },
			wantError: true,
		},
		{
			name:      "negative delay",
			mutate:    func(c *Config) { c.Crawl.Delay = -time.Second },
			wantError: true,
		},
		{
			name:      "zero download timeout",
			mutate:    func(c *Config) { c.Download.Timeout = 0 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "loud" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no validation error, got %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photocrawl.yaml")

	content := `input:
  file: /data/ids.txt
  limit: 100
output:
  directory: /data/photos
crawl:
  workers: 4
  delay: 2s
  max_retries: 5
resolver:
  all_sizes: false
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Input.File != "/data/ids.txt" {
		t.Errorf("Expected input file /data/ids.txt, got %s", config.Input.File)
	}
	if config.Input.Limit != 100 {
		t.Errorf("Expected limit 100, got %d", config.Input.Limit)
	}
	if config.Output.Directory != "/data/photos" {
		t.Errorf("Expected output directory /data/photos, got %s", config.Output.Directory)
	}
	if config.Crawl.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", config.Crawl.Workers)
	}
	if config.Crawl.Delay != 2*time.Second {
		t.Errorf("Expected 2s delay, got %v", config.Crawl.Delay)
	}
	if config.Crawl.MaxRetries != 5 {
		t.Errorf("Expected 5 retries, got %d", config.Crawl.MaxRetries)
	}
	if config.Resolver.AllSizes {
		t.Error("Expected all-sizes to be disabled")
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", config.Logging.Level)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	err := config.LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"input":            "/tmp/list.txt",
		"output":           "/tmp/out",
		"workers":          8,
		"delay":            3 * time.Second,
		"retries":          2,
		"limit":            50,
		"all-sizes":        false,
		"reconstruct-urls": true,
		"log-level":        "error",
	}

	config.MergeCommandLineFlags(flags)

	if config.Input.File != "/tmp/list.txt" {
		t.Errorf("Expected input /tmp/list.txt, got %s", config.Input.File)
	}
	if config.Output.Directory != "/tmp/out" {
		t.Errorf("Expected output /tmp/out, got %s", config.Output.Directory)
	}
	if config.Crawl.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", config.Crawl.Workers)
	}
	if config.Crawl.Delay != 3*time.Second {
		t.Errorf("Expected 3s delay, got %v", config.Crawl.Delay)
	}
	if config.Crawl.MaxRetries != 2 {
		t.Errorf("Expected 2 retries, got %d", config.Crawl.MaxRetries)
	}
	if config.Input.Limit != 50 {
		t.Errorf("Expected limit 50, got %d", config.Input.Limit)
	}
	if config.Resolver.AllSizes {
		t.Error("Expected all-sizes disabled via flag")
	}
	if !config.Resolver.ReconstructURLs {
		t.Error("Expected reconstruction enabled via flag")
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level error, got %s", config.Logging.Level)
	}
}
