// Package metadata records what a crawl downloaded. Alongside the
// image files the crawler can write a crawl_report.json describing
// every saved photo, which is handy when the output directory is fed
// into a training pipeline that needs per-image provenance.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ReportFilename is the report file written into the output directory
const ReportFilename = "crawl_report.json"

// PhotoRecord describes one downloaded photo
type PhotoRecord struct {
	// Core identifiers
	Position int    `json:"position"`
	PhotoID  string `json:"photo_id"`
	Path     string `json:"path"`
	URL      string `json:"url,omitempty"`

	// Media properties
	SizeLabel string `json:"size_label,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FileSize  int64  `json:"file_size,omitempty"`

	// True when the file was already on disk and no download happened
	Skipped bool `json:"skipped,omitempty"`

	DownloadedAt time.Time `json:"downloaded_at"`
}

// Report aggregates the records of a crawl run
type Report struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Photos     []PhotoRecord `json:"photos"`

	mu sync.Mutex
}

// NewReport creates an empty report stamped with the current time
func NewReport() *Report {
	return &Report{
		StartedAt: time.Now(),
	}
}

// Add appends a photo record. Safe for concurrent use by pool workers.
func (r *Report) Add(rec PhotoRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Photos = append(r.Photos, rec)
}

// Len returns the number of recorded photos
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Photos)
}

// Save writes the report as JSON into the output directory
func (r *Report) Save(outputDir string) error {
	r.mu.Lock()
	r.FinishedAt = time.Now()
	data, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal crawl report: %w", err)
	}

	path := filepath.Join(outputDir, ReportFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write crawl report: %w", err)
	}

	return nil
}

// Load reads a report back from the output directory
func Load(outputDir string) (*Report, error) {
	path := filepath.Join(outputDir, ReportFilename)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read crawl report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal crawl report: %w", err)
	}

	return &report, nil
}

// Exists checks whether a report is present in the output directory
func Exists(outputDir string) bool {
	_, err := os.Stat(filepath.Join(outputDir, ReportFilename))
	return err == nil
}
