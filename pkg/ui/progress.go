package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of crawl progress
type StatusTracker struct {
	Total     int
	Processed int
	Succeeded int
	Failed    int
	StartTime time.Time
}

// NewStatusTracker creates a new status tracker for a crawl of the
// given size
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		Total:     total,
		StartTime: time.Now(),
	}
}

// RecordSuccess counts one successfully processed record
func (st *StatusTracker) RecordSuccess() {
	st.Processed++
	st.Succeeded++
}

// RecordFailure counts one failed record
func (st *StatusTracker) RecordFailure() {
	st.Processed++
	st.Failed++
}

// GetProgress returns a formatted progress bar for the crawl
func (st *StatusTracker) GetProgress() string {
	const width = 20
	progress := 0.0
	if st.Total > 0 {
		progress = float64(st.Processed) / float64(st.Total)
	}
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Processed, st.Total)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetRate returns the average processing rate (records per minute)
func (st *StatusTracker) GetRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Processed) / elapsed
}

// PrintProgress prints the current progress status on one line
func (st *StatusTracker) PrintProgress() {
	if IsQuietMode() {
		return
	}
	fmt.Printf("\r%s %s | ok: %d | failed: %d",
		Green("[CRAWLING]"),
		st.GetProgress(),
		st.Succeeded,
		st.Failed)
}
