// Package crawler orchestrates the photo download process.
//
// A Crawler reads the ID list, resolves and downloads each photo
// through the downloader, and folds every outcome into a Summary.
// One crawler serves both execution modes: sequential with a fixed
// politeness delay between requests, and a bounded worker pool when
// more than one worker is configured. In pool mode a single collector
// goroutine owns the summary counts, so nothing is shared between
// workers.
//
// Per-record failures never abort the run. They are counted as failed
// and, when the reason identifies a private or missing photo, broken
// down into those buckets in the final summary.
package crawler
