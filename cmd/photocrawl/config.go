package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"photocrawl/pkg/config"
	"photocrawl/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage photocrawl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'photocrawl.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "photocrawl.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists: %s", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# Photocrawl Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with PHOTOCRAWL_
# For example: PHOTOCRAWL_INPUT_FILE, PHOTOCRAWL_OUTPUT_DIR

# Input list settings
input:
  # Text file with one record per line; the photo ID is the second
  # whitespace-delimited token on each line
  file: "all_data.txt"

  # Process only the first N lines (0 = all)
  limit: 0

# Output settings
output:
  # Directory for downloaded photos
  directory: "./photos"

  # Write a crawl_report.json next to the photos
  write_report: true

# Crawl behaviour
crawl:
  # Number of concurrent downloads
  # Range: 1-16
  workers: 1

  # Delay between requests (Go duration, e.g. 500ms, 2s)
  delay: 1s

  # Maximum number of retry attempts
  # Range: 0-10
  max_retries: 3

# Page resolution settings
resolver:
  # Browser user agent sent with every request
  # Leave empty to use the default
  user_agent: ""

  # Follow the "view all sizes" page to find the largest rendition
  all_sizes: true

  # Rebuild large-size URLs from the components of a found one.
  # The rebuilt URL is a guess and may not exist.
  reconstruct_urls: false

# Download settings
download:
  # Request timeout (Go duration)
  timeout: 10s

  # Decode each download to verify it is a real image
  verify_image: true

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stdout only
  file: ""
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file: %v", err)
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to point at your ID list")
	fmt.Println("2. Run 'photocrawl config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'photocrawl crawl'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Convert to YAML for display
	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration: %v", err)
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (PHOTOCRAWL_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	// Check if config file is specified
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"photocrawl.yaml",
			"photocrawl.yml",
			".photocrawl.yaml",
			".photocrawl.yml",
			filepath.Join(os.Getenv("HOME"), ".photocrawl.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "photocrawl", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found, specify one with --config")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	// Try to load and validate configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed: %v", err)
		os.Exit(1)
	}

	// Perform additional validation checks
	warnings := []string{}
	errors := []string{}

	// Check input file
	if cfg.Input.File != "" {
		if _, err := os.Stat(cfg.Input.File); err != nil {
			warnings = append(warnings, fmt.Sprintf("Input file not found: %s", cfg.Input.File))
		}
	}

	// Check paths
	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	// Check logging file path
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	// Check value ranges
	if cfg.Crawl.Workers < 1 || cfg.Crawl.Workers > 16 {
		errors = append(errors, "workers must be between 1 and 16")
	}
	if cfg.Crawl.MaxRetries < 0 || cfg.Crawl.MaxRetries > 10 {
		errors = append(errors, "max_retries must be between 0 and 10")
	}
	if cfg.Crawl.Delay < 0 {
		errors = append(errors, "delay must not be negative")
	}

	// Display results
	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	// Show summary
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Input file: %s\n", cfg.Input.File)
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Workers: %d\n", cfg.Crawl.Workers)
	fmt.Printf("  Delay: %s\n", cfg.Crawl.Delay)
	fmt.Printf("  Max retries: %d\n", cfg.Crawl.MaxRetries)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
