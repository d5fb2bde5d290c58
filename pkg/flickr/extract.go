package flickr

import (
	"context"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// Extractor pulls image URL candidates out of a parsed photo page.
// Extractors are independent heuristics; the resolver runs them in
// order and the first non-empty result wins.
type Extractor interface {
	// Name identifies the heuristic in logs
	Name() string
	// Extract returns image URL candidates found in the document
	Extract(ctx context.Context, doc *goquery.Document) Candidates
}

// smallSuffixPattern matches small-size suffixes that can be upgraded
// to the large variant of the same image
var smallSuffixPattern = regexp.MustCompile(`_(m|n|s|t|q|sq)(\.[a-z]+)$`)

// staticURLPattern captures the server, photo ID and secret components
// of a static image URL
var staticURLPattern = regexp.MustCompile(`live\.staticflickr\.com/(\d+)/(\d+)_([0-9a-f]+)(?:_[a-z0-9]{1,2})?\.(jpg|jpeg|png)`)

// MainPhotoExtractor reads the src of the main photo element
type MainPhotoExtractor struct{}

func (MainPhotoExtractor) Name() string { return "main_photo" }

func (MainPhotoExtractor) Extract(_ context.Context, doc *goquery.Document) Candidates {
	src, ok := doc.Find("img.main-photo").First().Attr("src")
	if !ok || src == "" {
		return nil
	}
	return Candidates{{Label: SizeLarge, URL: EnsureScheme(src)}}
}

// OpenGraphExtractor reads the OpenGraph image meta tag
type OpenGraphExtractor struct{}

func (OpenGraphExtractor) Name() string { return "og_image" }

func (OpenGraphExtractor) Extract(_ context.Context, doc *goquery.Document) Candidates {
	content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if !ok || content == "" {
		return nil
	}
	return Candidates{{Label: SizeLarge, URL: EnsureScheme(content)}}
}

// TwitterCardExtractor reads the Twitter card image meta tag
type TwitterCardExtractor struct{}

func (TwitterCardExtractor) Name() string { return "twitter_image" }

func (TwitterCardExtractor) Extract(_ context.Context, doc *goquery.Document) Candidates {
	content, ok := doc.Find(`meta[name="twitter:image"]`).First().Attr("content")
	if !ok || content == "" {
		return nil
	}
	return Candidates{{Label: SizeLarge, URL: EnsureScheme(content)}}
}

// StaticPhotoExtractor scans for any static-host image on the page and
// upgrades small size suffixes to the large variant
type StaticPhotoExtractor struct{}

func (StaticPhotoExtractor) Name() string { return "static_photo" }

func (StaticPhotoExtractor) Extract(_ context.Context, doc *goquery.Document) Candidates {
	var cands Candidates
	doc.Find(`img[src*="` + StaticHost + `"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			return true
		}
		if upgraded := smallSuffixPattern.ReplaceAllString(src, "_b$2"); upgraded != src {
			cands = Candidates{{Label: SizeLarge, URL: EnsureScheme(upgraded)}}
			return false
		}
		cands = Candidates{{Label: SizeLabelForURL(src), URL: EnsureScheme(src)}}
		return false
	})
	return cands
}

// PageFetcher fetches and parses linked pages. *Client implements it.
type PageFetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// AllSizesExtractor follows the "View all sizes" link of a photo page
// and collects every static image URL served there, labeled by the size
// suffix of each URL. This is the only heuristic that costs an extra
// request, so it sits late in the chain.
type AllSizesExtractor struct {
	Fetcher PageFetcher
}

func (AllSizesExtractor) Name() string { return "all_sizes" }

func (e AllSizesExtractor) Extract(ctx context.Context, doc *goquery.Document) Candidates {
	if e.Fetcher == nil {
		return nil
	}

	href, ok := doc.Find(`a[href*="/sizes/"]`).First().Attr("href")
	if !ok || href == "" {
		return nil
	}

	sizesDoc, err := e.Fetcher.FetchDocument(ctx, AbsoluteURL(href))
	if err != nil {
		return nil
	}

	var cands Candidates
	seen := make(map[string]bool)
	sizesDoc.Find(`img[src*="`+StaticHost+`"], a[href*="`+StaticHost+`"]`).Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			src, ok = sel.Attr("href")
		}
		if !ok || src == "" {
			return
		}
		url := EnsureScheme(src)
		if seen[url] {
			return
		}
		seen[url] = true
		cands = append(cands, Candidate{Label: SizeLabelForURL(url), URL: url})
	})

	return cands
}

// ReconstructExtractor rebuilds a large-size static URL from the
// server, ID and secret components of any static URL present in the
// markup. Best effort only: the rebuilt URL is a guess and may not
// exist, which is why this heuristic is disabled by default.
type ReconstructExtractor struct{}

func (ReconstructExtractor) Name() string { return "reconstruct" }

func (ReconstructExtractor) Extract(_ context.Context, doc *goquery.Document) Candidates {
	html, err := doc.Html()
	if err != nil {
		return nil
	}

	m := staticURLPattern.FindStringSubmatch(html)
	if m == nil {
		return nil
	}

	server, id, secret := m[1], m[2], m[3]
	url := "https://" + StaticHost + "/" + server + "/" + id + "_" + secret + "_b.jpg"
	return Candidates{{Label: SizeLarge, URL: url}}
}
