package flickr

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"photocrawl/pkg/errors"
	"photocrawl/pkg/logger"
	"photocrawl/pkg/retry"
)

// ResolverOptions controls which heuristics the resolver runs and how
// page fetches are retried
type ResolverOptions struct {
	// MaxRetries is the number of attempts for the page fetch
	MaxRetries int
	// Delay is the base retry delay; attempt n waits Delay * n
	Delay time.Duration
	// AllSizes enables following the sizes page for per-size URLs
	AllSizes bool
	// ReconstructURLs enables the best-effort URL reconstruction
	ReconstructURLs bool
}

// Resolver turns a photo ID into an ordered list of image URL
// candidates by scraping the photo's public page
type Resolver struct {
	client *Client
	chain  []Extractor
	opts   ResolverOptions
	logger logger.Logger
}

// NewResolver creates a resolver with the heuristic chain configured
// from opts
func NewResolver(client *Client, opts ResolverOptions, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}

	chain := []Extractor{
		MainPhotoExtractor{},
		OpenGraphExtractor{},
		TwitterCardExtractor{},
		StaticPhotoExtractor{},
	}
	if opts.AllSizes {
		chain = append(chain, AllSizesExtractor{Fetcher: client})
	}
	if opts.ReconstructURLs {
		chain = append(chain, ReconstructExtractor{})
	}

	return &Resolver{
		client: client,
		chain:  chain,
		opts:   opts,
		logger: log,
	}
}

// retryConfig builds the retry policy shared by page fetches
func (r *Resolver) retryConfig(ctx context.Context) *retry.Config {
	return &retry.Config{
		MaxAttempts: r.opts.MaxRetries,
		Backoff: &retry.LinearBackoff{
			BaseDelay: r.opts.Delay,
			Increment: r.opts.Delay,
			MaxDelay:  r.opts.Delay * time.Duration(r.opts.MaxRetries),
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
		Logger:  r.logger,
	}
}

// Resolve fetches the photo page for photoID and runs the extractor
// chain over it. The returned candidates are ordered largest size
// first. Private and missing photos fail without retrying; transient
// page errors are retried with linear backoff.
func (r *Resolver) Resolve(ctx context.Context, photoID string) (Candidates, error) {
	doc, err := retry.DoWithResult(func() (*goquery.Document, error) {
		return r.client.FetchPhotoPage(ctx, photoID)
	}, r.retryConfig(ctx))
	if err != nil {
		return nil, err
	}

	for _, ex := range r.chain {
		cands := ex.Extract(ctx, doc)
		if len(cands) == 0 {
			continue
		}

		ordered := OrderCandidates(cands)
		r.logger.DebugWithFields("resolved image URL", map[string]interface{}{
			"photo_id":   photoID,
			"extractor":  ex.Name(),
			"candidates": len(ordered),
			"best":       ordered[0].Label,
		})
		return ordered, nil
	}

	r.logger.WarnWithFields("could not resolve image URL", map[string]interface{}{
		"photo_id": photoID,
	})
	return nil, &errors.Error{
		Type:    errors.ErrorTypeUnresolvable,
		Message: fmt.Sprintf("could not find image URL for photo %s", photoID),
	}
}
