package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"photocrawl/pkg/config"
	"photocrawl/pkg/crawler"
	"photocrawl/pkg/logger"
	"photocrawl/pkg/ui"
)

var (
	// Crawl command flags
	inputFile       string
	outputDir       string
	limit           int
	workers         int
	delay           time.Duration
	maxRetries      int
	allSizes        bool
	reconstructURLs bool
	writeReport     bool
	noVerify        bool
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Download photos for every ID in the input list",
	Long: `Download full-size photos for every Flickr photo ID in the input list.

The input file is a plain text file with one record per line. The photo ID
is the second whitespace-delimited token on each line; lines with fewer than
two tokens are skipped but still advance the output position, so the file
layout stays aligned with the numbered output files.

Each downloaded photo is written to the output directory as a five digit,
zero padded JPEG named after its line position (00000.jpg, 00001.jpg, ...).
Photos that already exist on disk are skipped.`,
	Example: `  # Crawl using the default input file (all_data.txt)
  photocrawl crawl

  # Crawl a specific list into a specific directory
  photocrawl crawl --input ids.txt --output ./photos

  # Only the first 100 lines, 4 workers, half-second delay
  photocrawl crawl --input ids.txt --limit 100 --workers 4 --delay 500ms

  # Follow the "all sizes" page and allow reconstructed URLs
  photocrawl crawl --all-sizes --reconstruct-urls`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runCrawl(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	// Local flags for crawl command
	crawlCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input file with photo IDs (default: all_data.txt)")
	crawlCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads (default: ./photos)")
	crawlCmd.Flags().IntVar(&limit, "limit", 0, "process only the first N lines of the input file (0 = all)")
	crawlCmd.Flags().IntVar(&workers, "workers", 1, "number of concurrent downloads")
	crawlCmd.Flags().DurationVar(&delay, "delay", time.Second, "delay between requests")
	crawlCmd.Flags().IntVar(&maxRetries, "retries", 3, "maximum number of retry attempts")
	crawlCmd.Flags().BoolVar(&allSizes, "all-sizes", true, "follow the sizes page to find the largest rendition")
	crawlCmd.Flags().BoolVar(&reconstructURLs, "reconstruct-urls", false, "rebuild large-size URLs from found ones (best effort)")
	crawlCmd.Flags().BoolVar(&writeReport, "report", true, "write a crawl report JSON to the output directory")
	crawlCmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip image decode verification of downloads")
}

func runCrawl(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, crawlFlagOverrides(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	applyOutputFlags(cmd, cfg)

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("Photocrawl starting")

	ui.PrintInfo("Input file", cfg.Input.File)
	ui.PrintInfo("Output directory", cfg.Output.Directory)

	// Cancel the crawl cleanly on Ctrl-C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := crawler.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize crawler: %v", err)
		os.Exit(1)
	}

	summary, err := c.Run(ctx)
	if err != nil {
		logger.WithError(err).WithField("input", cfg.Input.File).Error("Crawl failed")
		ui.PrintError("CRAWL FAILED: %v", err)
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Crawl completed")
}

// crawlFlagOverrides collects flag values the user set explicitly, keyed
// the way config.MergeCommandLineFlags expects. cmd must be the command
// cobra actually parsed; a bare invocation runs the root command with its
// mirrored flags, so Changed must be asked of root, not the subcommand.
func crawlFlagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if inputFile != "" {
		flags["input"] = inputFile
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if limit > 0 {
		flags["limit"] = limit
	}
	if workers != 1 {
		flags["workers"] = workers
	}
	if cmd.Flags().Changed("delay") {
		flags["delay"] = delay
	}
	if maxRetries != 3 {
		flags["retries"] = maxRetries
	}
	if cmd.Flags().Changed("all-sizes") {
		flags["all-sizes"] = allSizes
	}
	if cmd.Flags().Changed("reconstruct-urls") {
		flags["reconstruct-urls"] = reconstructURLs
	}
	// Pass log level to config
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return flags
}

// applyOutputFlags applies the flags that sit outside the config merge map
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("report") {
		cfg.Output.WriteReport = writeReport
	}
	if noVerify {
		cfg.Download.VerifyImage = false
	}
}

// Make crawl the default command when no subcommand is specified
func init() {
	origRunE := rootCmd.RunE
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if origRunE != nil {
			return origRunE(cmd, args)
		}
		if len(args) == 0 {
			// Run with the root command so flag state parsed on root,
			// not the never-parsed subcommand, is what gets forwarded
			runCrawl(cmd, args)
			return nil
		}
		return cmd.Help()
	}

	rootCmd.Args = cobra.ArbitraryArgs

	// Mirror the crawl flags on the root command so bare invocations work
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input file with photo IDs (default: all_data.txt)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads (default: ./photos)")
	rootCmd.Flags().IntVar(&limit, "limit", 0, "process only the first N lines of the input file (0 = all)")
	rootCmd.Flags().IntVar(&workers, "workers", 1, "number of concurrent downloads")
	rootCmd.Flags().DurationVar(&delay, "delay", time.Second, "delay between requests")
	rootCmd.Flags().IntVar(&maxRetries, "retries", 3, "maximum number of retry attempts")
	rootCmd.Flags().BoolVar(&allSizes, "all-sizes", true, "follow the sizes page to find the largest rendition")
	rootCmd.Flags().BoolVar(&reconstructURLs, "reconstruct-urls", false, "rebuild large-size URLs from found ones (best effort)")
	rootCmd.Flags().BoolVar(&writeReport, "report", true, "write a crawl report JSON to the output directory")
	rootCmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip image decode verification of downloads")
}
