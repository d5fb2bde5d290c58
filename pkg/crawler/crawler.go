package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"photocrawl/internal/downloader"
	"photocrawl/pkg/config"
	"photocrawl/pkg/flickr"
	"photocrawl/pkg/logger"
	"photocrawl/pkg/metadata"
	"photocrawl/pkg/ratelimit"
	"photocrawl/pkg/source"
	"photocrawl/pkg/storage"
	"photocrawl/pkg/ui"
)

// Summary aggregates the outcome counts of a crawl run. Failed counts
// every unsuccessful record; Private and NotFound break those failures
// down further.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Private   int
	NotFound  int
}

// Crawler orchestrates the photo download process: parse the ID list,
// resolve and download each photo, fold the results into a summary
type Crawler struct {
	fetcher        *downloader.Fetcher
	client         *flickr.Client
	storageManager *storage.Manager
	config         *config.Config
	report         *metadata.Report
	tracker        *ui.StatusTracker
	logger         logger.Logger
}

// New creates a new Crawler instance
func New(cfg *config.Config) (*Crawler, error) {
	log := logger.GetLogger()

	client := flickr.NewClient(cfg.Download.Timeout, cfg.Resolver.UserAgent, log)
	resolver := flickr.NewResolver(client, flickr.ResolverOptions{
		MaxRetries:      cfg.Crawl.MaxRetries,
		Delay:           cfg.Crawl.Delay,
		AllSizes:        cfg.Resolver.AllSizes,
		ReconstructURLs: cfg.Resolver.ReconstructURLs,
	}, log)

	storageManager, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		log.WithError(err).Error("Failed to create storage manager")
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}
	storageManager.SetVerification(cfg.Download.VerifyImage)

	fetcher := downloader.NewFetcher(resolver, client, storageManager, cfg.Crawl.MaxRetries, cfg.Crawl.Delay, log)

	return &Crawler{
		fetcher:        fetcher,
		client:         client,
		storageManager: storageManager,
		config:         cfg,
		report:         metadata.NewReport(),
		logger:         log,
	}, nil
}

// SetTransport replaces the HTTP transport used for page fetches and
// downloads. Tests use this to route requests to a local server.
func (c *Crawler) SetTransport(rt http.RoundTripper) {
	c.client.SetTransport(rt)
}

// Run executes the crawl and returns the summary. Individual record
// failures are counted, not fatal; only setup errors abort the run.
func (c *Crawler) Run(ctx context.Context) (*Summary, error) {
	records, err := source.ParseFile(c.config.Input.File, c.config.Input.Limit)
	if err != nil {
		c.logger.WithError(err).WithField("file", c.config.Input.File).Error("Failed to parse ID list")
		return nil, fmt.Errorf("failed to parse ID list: %w", err)
	}

	c.logger.InfoWithFields("Starting crawl", map[string]interface{}{
		"records":    len(records),
		"workers":    c.config.Crawl.Workers,
		"output_dir": c.storageManager.GetOutputDir(),
		"action":     "crawl_start",
	})
	ui.PrintInfo("Photos to process", fmt.Sprintf("%d", len(records)))

	c.tracker = ui.NewStatusTracker(len(records))

	var summary *Summary
	if c.config.Crawl.Workers > 1 {
		summary = c.runPool(ctx, records)
	} else {
		summary = c.runSequential(ctx, records)
	}

	if c.config.Output.WriteReport {
		if err := c.report.Save(c.storageManager.GetOutputDir()); err != nil {
			// A missing report should not fail an otherwise good crawl
			c.logger.WithError(err).Error("Failed to save crawl report")
		} else {
			c.logger.WithField("file", metadata.ReportFilename).Info("Crawl report saved")
		}
	}

	c.logger.InfoWithFields("Crawl completed", map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"private":   summary.Private,
		"not_found": summary.NotFound,
		"action":    "crawl_complete",
	})

	c.printSummary(summary)
	return summary, nil
}

// runSequential processes records one at a time with a fixed delay
// between requests
func (c *Crawler) runSequential(ctx context.Context, records []source.Record) *Summary {
	var limiter ratelimit.Limiter
	if c.config.Crawl.Delay > 0 {
		limiter = ratelimit.NewFixedInterval(c.config.Crawl.Delay)
	} else {
		limiter = ratelimit.NewNop()
	}

	summary := &Summary{}
	for _, rec := range records {
		select {
		case <-ctx.Done():
			c.logger.Warn("Crawl cancelled")
			return summary
		default:
		}

		limiter.Wait()
		outcome := c.fetcher.Fetch(ctx, rec)
		c.processOutcome(outcome, summary)
	}

	return summary
}

// runPool processes records through a bounded worker pool. A single
// collector goroutine folds the outcomes, so counts never race.
func (c *Crawler) runPool(ctx context.Context, records []source.Record) *Summary {
	pool := downloader.NewWorkerPool(c.config.Crawl.Workers, c.fetcher, ratelimit.NewNop(), c.logger)
	pool.Start()

	summary := &Summary{}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for outcome := range pool.Results() {
			c.processOutcome(outcome, summary)
		}
	}()

	for _, rec := range records {
		if err := pool.Submit(rec); err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"position": rec.Position,
				"photo_id": rec.ID,
			}).Error("Failed to submit record")
			break
		}
	}

	pool.Stop()
	wg.Wait()

	return summary
}

// processOutcome folds one outcome into the summary, classifying
// failures by their reason text the way the summary reports them
func (c *Crawler) processOutcome(outcome downloader.Outcome, summary *Summary) {
	summary.Total++

	if outcome.Success {
		summary.Succeeded++
		c.tracker.RecordSuccess()
		c.tracker.PrintProgress()

		if !outcome.Skipped || outcome.Dimensions.Width > 0 {
			c.logger.InfoWithFields("photo saved", map[string]interface{}{
				"position": outcome.Record.Position,
				"photo_id": outcome.Record.ID,
				"path":     outcome.Path,
				"label":    outcome.Label,
				"width":    outcome.Dimensions.Width,
				"height":   outcome.Dimensions.Height,
				"skipped":  outcome.Skipped,
			})
		}

		c.report.Add(metadata.PhotoRecord{
			Position:     outcome.Record.Position,
			PhotoID:      outcome.Record.ID,
			Path:         outcome.Path,
			URL:          outcome.URL,
			SizeLabel:    outcome.Label,
			Width:        outcome.Dimensions.Width,
			Height:       outcome.Dimensions.Height,
			FileSize:     int64(outcome.Size),
			Skipped:      outcome.Skipped,
			DownloadedAt: time.Now(),
		})
		return
	}

	summary.Failed++
	c.tracker.RecordFailure()
	c.tracker.PrintProgress()

	reason := ""
	if outcome.Error != nil {
		reason = strings.ToLower(outcome.Error.Error())
	}
	switch {
	case strings.Contains(reason, "private"):
		summary.Private++
	case strings.Contains(reason, "not found"):
		summary.NotFound++
	}

	c.logger.ErrorWithFields("record failed", map[string]interface{}{
		"position": outcome.Record.Position,
		"photo_id": outcome.Record.ID,
		"error":    reason,
		"duration": outcome.Duration,
	})
}

// printSummary prints the final crawl summary
func (c *Crawler) printSummary(summary *Summary) {
	if ui.IsQuietMode() {
		return
	}

	fmt.Println()
	ui.PrintHighlight("\nCrawl Summary:")
	ui.PrintInfo("Total images processed", fmt.Sprintf("%d", summary.Total))
	ui.PrintInfo("Successfully downloaded", fmt.Sprintf("%d", summary.Succeeded))
	ui.PrintInfo("Failed", fmt.Sprintf("%d", summary.Failed))
	ui.PrintInfo("  - Private images", fmt.Sprintf("%d", summary.Private))
	ui.PrintInfo("  - Not found", fmt.Sprintf("%d", summary.NotFound))
}
