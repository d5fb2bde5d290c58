package downloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "photocrawl/pkg/errors"
	"photocrawl/pkg/flickr"
	"photocrawl/pkg/logger"
	"photocrawl/pkg/retry"
	"photocrawl/pkg/source"
	"photocrawl/pkg/storage"
)

// URLResolver resolves a photo ID to image URL candidates
type URLResolver interface {
	Resolve(ctx context.Context, photoID string) (flickr.Candidates, error)
}

// ImageDownloader downloads image data from a URL
type ImageDownloader interface {
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// PhotoStorage stores downloaded photos by dataset position
type PhotoStorage interface {
	Exists(position int) bool
	ExistingDimensions(position int) (storage.Dimensions, bool)
	SavePhoto(data []byte, position int) (storage.Dimensions, error)
	PathFor(position int) string
}

// Outcome is the result of processing one record
type Outcome struct {
	Record  source.Record
	Success bool
	// Skipped means the file was already on disk and no request was made
	Skipped    bool
	Path       string
	Label      string
	URL        string
	Dimensions storage.Dimensions
	Size       int
	Error      error
	Duration   time.Duration
}

// Fetcher processes a single record end to end: resolve the photo URL,
// download the best available size, verify and store it
type Fetcher struct {
	resolver   URLResolver
	client     ImageDownloader
	storage    PhotoStorage
	maxRetries int
	delay      time.Duration
	logger     logger.Logger
}

// NewFetcher creates a fetcher
func NewFetcher(resolver URLResolver, client ImageDownloader, store PhotoStorage, maxRetries int, delay time.Duration, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if delay <= 0 {
		delay = time.Second
	}

	return &Fetcher{
		resolver:   resolver,
		client:     client,
		storage:    store,
		maxRetries: maxRetries,
		delay:      delay,
		logger:     log,
	}
}

type fetchResult struct {
	dims storage.Dimensions
	size int
}

// Fetch processes one record. A file already on disk short-circuits
// without any network traffic; a corrupt existing file is re-downloaded.
func (f *Fetcher) Fetch(ctx context.Context, rec source.Record) Outcome {
	start := time.Now()
	outcome := Outcome{
		Record: rec,
		Path:   f.storage.PathFor(rec.Position),
	}

	if f.storage.Exists(rec.Position) {
		if dims, ok := f.storage.ExistingDimensions(rec.Position); ok {
			f.logger.DebugWithFields("photo already downloaded, skipping", map[string]interface{}{
				"position": rec.Position,
				"photo_id": rec.ID,
				"width":    dims.Width,
				"height":   dims.Height,
			})
			outcome.Success = true
			outcome.Skipped = true
			outcome.Dimensions = dims
			outcome.Duration = time.Since(start)
			return outcome
		}
		f.logger.WarnWithFields("existing file is corrupt, re-downloading", map[string]interface{}{
			"position": rec.Position,
			"photo_id": rec.ID,
		})
	}

	cands, err := f.resolver.Resolve(ctx, rec.ID)
	if err != nil {
		outcome.Error = err
		outcome.Duration = time.Since(start)
		logger.LogDownload(rec.Position, rec.ID, false, err)
		return outcome
	}

	var lastErr error
	for _, cand := range cands {
		res, err := f.downloadCandidate(ctx, cand, rec.Position)
		if err != nil {
			var crawlErr *errs.Error
			if errors.As(err, &crawlErr) && crawlErr.Type == errs.ErrorTypeGone {
				// This size is no longer served; fall through to the
				// next smaller candidate without burning retries
				f.logger.DebugWithFields("size gone, trying next candidate", map[string]interface{}{
					"position": rec.Position,
					"photo_id": rec.ID,
					"label":    cand.Label,
				})
				continue
			}
			lastErr = err
			continue
		}

		outcome.Success = true
		outcome.Label = cand.Label
		outcome.URL = cand.URL
		outcome.Dimensions = res.dims
		outcome.Size = res.size
		outcome.Duration = time.Since(start)
		logger.LogDownload(rec.Position, rec.ID, true, nil)
		return outcome
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("failed to download photo %s: no candidate URL succeeded", rec.ID)
	}
	outcome.Error = lastErr
	outcome.Duration = time.Since(start)
	logger.LogDownload(rec.Position, rec.ID, false, lastErr)
	return outcome
}

// downloadCandidate downloads and stores one candidate URL, retrying
// transient failures with linear backoff. Empty payloads and data that
// fails to decode are retried; a 410 is returned to the caller at once.
func (f *Fetcher) downloadCandidate(ctx context.Context, cand flickr.Candidate, position int) (fetchResult, error) {
	cfg := &retry.Config{
		MaxAttempts: f.maxRetries,
		Backoff: &retry.LinearBackoff{
			BaseDelay: f.delay,
			Increment: f.delay,
			MaxDelay:  f.delay * time.Duration(f.maxRetries),
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
		Logger:  f.logger,
	}

	return retry.DoWithResult(func() (fetchResult, error) {
		data, err := f.client.DownloadImage(ctx, cand.URL)
		if err != nil {
			return fetchResult{}, err
		}

		dims, err := f.storage.SavePhoto(data, position)
		if err != nil {
			return fetchResult{}, &errs.Error{
				Type:    errs.ErrorTypeDecode,
				Message: fmt.Sprintf("failed to store photo: %v", err),
			}
		}

		return fetchResult{dims: dims, size: len(data)}, nil
	}, cfg)
}
