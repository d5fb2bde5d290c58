package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// Dimensions holds the pixel size of a saved image
type Dimensions struct {
	Width  int
	Height int
}

// Manager handles file storage for downloaded photos. Files are named
// by their dataset position, zero padded to five digits.
type Manager struct {
	outputDir string
	verify    bool
	saved     map[int]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager. Image verification is on
// by default.
func NewManager(outputDir string) (*Manager, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		verify:    true,
		saved:     make(map[int]bool),
	}, nil
}

// SetVerification toggles decoding payloads and existing files as
// images. With verification off, saved files are taken at face value
// and no dimensions are reported.
func (m *Manager) SetVerification(enabled bool) {
	m.verify = enabled
}

// PathFor returns the output path for a dataset position
func (m *Manager) PathFor(position int) string {
	return filepath.Join(m.outputDir, fmt.Sprintf("%05d.jpg", position))
}

// Exists checks whether the file for a position is already on disk
func (m *Manager) Exists(position int) bool {
	m.mu.RLock()
	if m.saved[position] {
		m.mu.RUnlock()
		return true
	}
	m.mu.RUnlock()

	if _, err := os.Stat(m.PathFor(position)); err == nil {
		m.mu.Lock()
		m.saved[position] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// ExistingDimensions verifies the file already on disk for a position
// decodes as an image and returns its dimensions. A file that fails to
// decode is removed and reported as absent, so the caller re-downloads
// it rather than keeping a corrupt artifact.
func (m *Manager) ExistingDimensions(position int) (Dimensions, bool) {
	path := m.PathFor(position)

	if !m.verify {
		_, err := os.Stat(path)
		return Dimensions{}, err == nil
	}

	img, err := imaging.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dimensions{}, false
		}
		// Decode failed: treat the file as absent
		os.Remove(path)
		m.mu.Lock()
		delete(m.saved, position)
		m.mu.Unlock()
		return Dimensions{}, false
	}

	bounds := img.Bounds()
	return Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}, true
}

// SavePhoto writes image data for a position, verifying it decodes as
// an image first. The write goes through a temp file and an atomic
// rename so a crash never leaves a partial output file.
func (m *Manager) SavePhoto(data []byte, position int) (Dimensions, error) {
	if len(data) == 0 {
		return Dimensions{}, fmt.Errorf("refusing to save empty photo data")
	}

	var dims Dimensions
	if m.verify {
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return Dimensions{}, fmt.Errorf("photo data does not decode as an image: %w", err)
		}
		bounds := img.Bounds()
		dims = Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}
	}

	filename := m.PathFor(position)

	// Create temporary file first
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, bytes.NewReader(data))
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return Dimensions{}, fmt.Errorf("failed to save photo data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return Dimensions{}, fmt.Errorf("failed to close file: %w", closeErr)
	}

	// Atomic rename
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return Dimensions{}, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.saved[position] = true
	m.mu.Unlock()

	return dims, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetSavedCount returns the number of photos saved or seen on disk
func (m *Manager) GetSavedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.saved)
}
