package integration

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"photocrawl/pkg/config"
	"photocrawl/pkg/logger"
	"photocrawl/pkg/ui"
)

// TestHelper provides common test utilities
type TestHelper struct {
	t            *testing.T
	mockServer   *MockFlickrServer
	tempDir      string
	cleanupFuncs []func()
}

// NewTestHelper creates a new test helper
func NewTestHelper(t *testing.T) *TestHelper {
	ui.SetQuietMode(true)

	return &TestHelper{
		t:            t,
		tempDir:      t.TempDir(),
		cleanupFuncs: []func(){},
	}
}

// SetupMockServer initializes the mock Flickr server
func (h *TestHelper) SetupMockServer() *MockFlickrServer {
	h.mockServer = NewMockFlickrServer()
	h.AddCleanup(h.mockServer.Close)
	return h.mockServer
}

// AddCleanup adds a cleanup function to be called when the test ends
func (h *TestHelper) AddCleanup(fn func()) {
	h.cleanupFuncs = append(h.cleanupFuncs, fn)
}

// Cleanup runs all cleanup functions
func (h *TestHelper) Cleanup() {
	for i := len(h.cleanupFuncs) - 1; i >= 0; i-- {
		h.cleanupFuncs[i]()
	}
}

// CreateTestLogger creates a quiet logger for tests
func (h *TestHelper) CreateTestLogger() logger.Logger {
	return logger.NewNopLogger()
}

// CreateTestConfig creates a test configuration pointed at the temp dir
func (h *TestHelper) CreateTestConfig() *config.Config {
	cfg := config.DefaultConfig()

	cfg.Output.Directory = filepath.Join(h.tempDir, "photos")
	cfg.Crawl.Workers = 1
	cfg.Crawl.Delay = time.Millisecond
	cfg.Crawl.MaxRetries = 2
	cfg.Download.Timeout = 5 * time.Second
	cfg.Logging.Level = "error"

	return cfg
}

// WriteInputFile writes an ID list file into the temp dir and returns
// its path. Each entry becomes one "label id" line.
func (h *TestHelper) WriteInputFile(ids ...string) string {
	var b strings.Builder
	for i, id := range ids {
		b.WriteString("photo")
		b.WriteString(string(rune('a' + i)))
		b.WriteString(" ")
		b.WriteString(id)
		b.WriteString("\n")
	}

	path := filepath.Join(h.tempDir, "ids.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		h.t.Fatalf("Failed to write input file: %v", err)
	}
	return path
}

// AssertFileExists checks if a file exists
func (h *TestHelper) AssertFileExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		h.t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func (h *TestHelper) AssertFileNotExists(path string) {
	if _, err := os.Stat(path); err == nil {
		h.t.Errorf("Expected file to not exist: %s", path)
	}
}

// rewriteTransport routes every outgoing request to the mock server
// while keeping the original path and query intact. It lets production
// URLs like www.flickr.com and live.staticflickr.com resolve against
// the local test server.
type rewriteTransport struct {
	target *url.URL
}

// NewRewriteTransport creates a transport that sends all requests to
// the given mock server
func NewRewriteTransport(m *MockFlickrServer) http.RoundTripper {
	target, err := url.Parse(m.GetURL())
	if err != nil {
		panic(err)
	}
	return &rewriteTransport{target: target}
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}
