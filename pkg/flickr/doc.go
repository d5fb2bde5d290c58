// Package flickr resolves photo IDs to downloadable image URLs by
// scraping the public Flickr photo page, without an API key.
//
// The entry point is the Resolver. Given a photo ID it fetches
// https://www.flickr.com/photo.gne?id={id} and runs a chain of
// extraction heuristics over the parsed page:
//
//  1. MainPhotoExtractor - the img.main-photo element
//  2. OpenGraphExtractor - the og:image meta tag
//  3. TwitterCardExtractor - the twitter:image meta tag
//  4. StaticPhotoExtractor - any live.staticflickr.com image, with
//     small size suffixes upgraded to the large variant
//  5. AllSizesExtractor - follows the "View all sizes" link and
//     collects per-size URLs (optional, one extra request)
//  6. ReconstructExtractor - rebuilds a large URL from path components
//     (optional, best effort, off by default)
//
// The first heuristic that finds anything wins. Candidates come back
// ordered largest size first so the downloader can fall through to
// smaller variants when a size is no longer served.
//
// Failure classification matters to callers: a private photo or a 404
// is permanent and never retried, while transport errors and 5xx
// responses are retried with linear backoff.
package flickr
