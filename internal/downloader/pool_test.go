package downloader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	errs "photocrawl/pkg/errors"
	"photocrawl/pkg/flickr"
	"photocrawl/pkg/logger"
	"photocrawl/pkg/ratelimit"
	"photocrawl/pkg/source"
	"photocrawl/pkg/storage"
)

// MockResolver is a mock URL resolver
type MockResolver struct {
	candidates   flickr.Candidates
	err          error
	resolveCount int32
}

func (m *MockResolver) Resolve(ctx context.Context, photoID string) (flickr.Candidates, error) {
	atomic.AddInt32(&m.resolveCount, 1)
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

func (m *MockResolver) ResolveCount() int {
	return int(atomic.LoadInt32(&m.resolveCount))
}

// MockImageClient is a mock image downloader with per-URL behavior
type MockImageClient struct {
	errors        map[string]error
	data          []byte
	downloadCount map[string]*int32
	mu            sync.Mutex
}

func NewMockImageClient(data []byte) *MockImageClient {
	return &MockImageClient{
		errors:        make(map[string]error),
		data:          data,
		downloadCount: make(map[string]*int32),
	}
}

func (m *MockImageClient) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	counter, ok := m.downloadCount[url]
	if !ok {
		counter = new(int32)
		m.downloadCount[url] = counter
	}
	err := m.errors[url]
	m.mu.Unlock()

	atomic.AddInt32(counter, 1)
	if err != nil {
		return nil, err
	}
	return m.data, nil
}

func (m *MockImageClient) DownloadCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if counter, ok := m.downloadCount[url]; ok {
		return int(atomic.LoadInt32(counter))
	}
	return 0
}

// MockStorage is an in-memory photo storage
type MockStorage struct {
	existing  map[int]storage.Dimensions
	corrupt   map[int]bool
	saved     map[int][]byte
	saveError error
	mu        sync.Mutex
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		existing: make(map[int]storage.Dimensions),
		corrupt:  make(map[int]bool),
		saved:    make(map[int][]byte),
	}
}

func (m *MockStorage) Exists(position int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.existing[position]; ok {
		return true
	}
	return m.corrupt[position]
}

func (m *MockStorage) ExistingDimensions(position int) (storage.Dimensions, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.corrupt[position] {
		delete(m.corrupt, position)
		return storage.Dimensions{}, false
	}
	dims, ok := m.existing[position]
	return dims, ok
}

func (m *MockStorage) SavePhoto(data []byte, position int) (storage.Dimensions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return storage.Dimensions{}, m.saveError
	}
	m.saved[position] = data
	dims := storage.Dimensions{Width: 100, Height: 80}
	m.existing[position] = dims
	return dims, nil
}

func (m *MockStorage) PathFor(position int) string {
	return fmt.Sprintf("%05d.jpg", position)
}

func (m *MockStorage) Saved(position int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.saved[position]
	return ok
}

func newTestFetcher(resolver URLResolver, client ImageDownloader, store PhotoStorage) *Fetcher {
	return NewFetcher(resolver, client, store, 2, time.Millisecond, logger.NewNopLogger())
}

func TestFetcherDownloadsPhoto(t *testing.T) {
	resolver := &MockResolver{candidates: flickr.Candidates{
		{Label: flickr.SizeLarge, URL: "https://example.com/b.jpg"},
	}}
	client := NewMockImageClient([]byte("image bytes"))
	store := NewMockStorage()

	outcome := newTestFetcher(resolver, client, store).Fetch(context.Background(), source.Record{Position: 0, ID: "111"})

	if !outcome.Success {
		t.Fatalf("Expected success, got error: %v", outcome.Error)
	}
	if !store.Saved(0) {
		t.Error("Expected photo to be saved")
	}
	if outcome.Dimensions.Width != 100 {
		t.Errorf("Expected dimensions to be reported, got %+v", outcome.Dimensions)
	}
	if outcome.Label != flickr.SizeLarge {
		t.Errorf("Expected label %q, got %q", flickr.SizeLarge, outcome.Label)
	}
}

func TestFetcherSkipsExistingFile(t *testing.T) {
	resolver := &MockResolver{candidates: flickr.Candidates{
		{Label: flickr.SizeLarge, URL: "https://example.com/b.jpg"},
	}}
	client := NewMockImageClient([]byte("image bytes"))
	store := NewMockStorage()
	store.existing[5] = storage.Dimensions{Width: 640, Height: 480}

	outcome := newTestFetcher(resolver, client, store).Fetch(context.Background(), source.Record{Position: 5, ID: "111"})

	if !outcome.Success || !outcome.Skipped {
		t.Fatalf("Expected skipped success, got %+v", outcome)
	}
	if outcome.Dimensions.Width != 640 {
		t.Errorf("Expected existing dimensions, got %+v", outcome.Dimensions)
	}
	// No network activity at all for an existing file
	if resolver.ResolveCount() != 0 {
		t.Error("Expected no page fetch for existing file")
	}
	if client.DownloadCount("https://example.com/b.jpg") != 0 {
		t.Error("Expected no download for existing file")
	}
}

func TestFetcherRedownloadsCorruptFile(t *testing.T) {
	resolver := &MockResolver{candidates: flickr.Candidates{
		{Label: flickr.SizeLarge, URL: "https://example.com/b.jpg"},
	}}
	client := NewMockImageClient([]byte("image bytes"))
	store := NewMockStorage()
	store.corrupt[2] = true
	capture := logger.NewTestLogger()
	fetcher := NewFetcher(resolver, client, store, 2, time.Millisecond, capture)

	outcome := fetcher.Fetch(context.Background(), source.Record{Position: 2, ID: "111"})

	if !outcome.Success || outcome.Skipped {
		t.Fatalf("Expected fresh download, got %+v", outcome)
	}
	if !store.Saved(2) {
		t.Error("Expected corrupt file to be replaced")
	}
	if !capture.Logged("existing file is corrupt, re-downloading") {
		t.Error("Expected a warning about the corrupt file")
	}
	warns := capture.EntriesAt("warn")
	if len(warns) != 1 || warns[0].Fields["position"] != 2 {
		t.Errorf("Expected one warning for position 2, got %+v", warns)
	}
}

func TestFetcherResolveErrorPropagates(t *testing.T) {
	resolver := &MockResolver{err: &errs.Error{
		Type:    errs.ErrorTypePrivate,
		Message: "photo 111 is private",
	}}
	client := NewMockImageClient(nil)
	store := NewMockStorage()

	outcome := newTestFetcher(resolver, client, store).Fetch(context.Background(), source.Record{Position: 0, ID: "111"})

	if outcome.Success {
		t.Fatal("Expected failure")
	}
	if outcome.Error == nil {
		t.Fatal("Expected error to be set")
	}
}

func TestFetcherGoneAdvancesToNextCandidate(t *testing.T) {
	resolver := &MockResolver{candidates: flickr.Candidates{
		{Label: flickr.SizeOriginal, URL: "https://example.com/o.jpg"},
		{Label: flickr.SizeLarge, URL: "https://example.com/b.jpg"},
	}}
	client := NewMockImageClient([]byte("image bytes"))
	client.errors["https://example.com/o.jpg"] = &errs.Error{
		Type: errs.ErrorTypeGone,
		Code: 410,
	}
	store := NewMockStorage()

	outcome := newTestFetcher(resolver, client, store).Fetch(context.Background(), source.Record{Position: 0, ID: "111"})

	if !outcome.Success {
		t.Fatalf("Expected success via fallback candidate, got %v", outcome.Error)
	}
	if outcome.URL != "https://example.com/b.jpg" {
		t.Errorf("Expected fallback URL, got %s", outcome.URL)
	}
	// A gone size must not consume the retry budget
	if got := client.DownloadCount("https://example.com/o.jpg"); got != 1 {
		t.Errorf("Expected exactly 1 attempt for gone URL, got %d", got)
	}
}

func TestFetcherRetriesTransientErrors(t *testing.T) {
	resolver := &MockResolver{candidates: flickr.Candidates{
		{Label: flickr.SizeLarge, URL: "https://example.com/b.jpg"},
	}}
	client := NewMockImageClient(nil)
	client.errors["https://example.com/b.jpg"] = &errs.Error{
		Type:    errs.ErrorTypeEmptyFile,
		Message: "empty image payload",
	}
	store := NewMockStorage()

	outcome := newTestFetcher(resolver, client, store).Fetch(context.Background(), source.Record{Position: 0, ID: "111"})

	if outcome.Success {
		t.Fatal("Expected failure after retries exhausted")
	}
	if got := client.DownloadCount("https://example.com/b.jpg"); got != 2 {
		t.Errorf("Expected 2 attempts, got %d", got)
	}
	if store.Saved(0) {
		t.Error("Expected no file to be saved")
	}
}

func TestFetcherRetriesUndecodableData(t *testing.T) {
	resolver := &MockResolver{candidates: flickr.Candidates{
		{Label: flickr.SizeLarge, URL: "https://example.com/b.jpg"},
	}}
	client := NewMockImageClient([]byte("not an image"))
	store := NewMockStorage()
	store.saveError = fmt.Errorf("photo data does not decode as an image")

	outcome := newTestFetcher(resolver, client, store).Fetch(context.Background(), source.Record{Position: 0, ID: "111"})

	if outcome.Success {
		t.Fatal("Expected failure")
	}
	if got := client.DownloadCount("https://example.com/b.jpg"); got != 2 {
		t.Errorf("Expected decode failures to be retried, got %d attempts", got)
	}
}

func TestWorkerPool(t *testing.T) {
	resolver := &MockResolver{candidates: flickr.Candidates{
		{Label: flickr.SizeLarge, URL: "https://example.com/b.jpg"},
	}}
	client := NewMockImageClient([]byte("image bytes"))
	store := NewMockStorage()
	fetcher := newTestFetcher(resolver, client, store)

	pool := NewWorkerPool(3, fetcher, ratelimit.NewNop(), logger.NewNopLogger())
	pool.Start()

	records := []source.Record{
		{Position: 0, ID: "111"},
		{Position: 1, ID: "222"},
		{Position: 2, ID: "333"},
		{Position: 3, ID: "444"},
	}

	done := make(chan struct{})
	var outcomes []Outcome
	go func() {
		defer close(done)
		for outcome := range pool.Results() {
			outcomes = append(outcomes, outcome)
		}
	}()

	for _, rec := range records {
		if err := pool.Submit(rec); err != nil {
			t.Fatalf("Failed to submit record: %v", err)
		}
	}
	pool.Stop()
	<-done

	if len(outcomes) != len(records) {
		t.Fatalf("Expected %d outcomes, got %d", len(records), len(outcomes))
	}
	for _, outcome := range outcomes {
		if !outcome.Success {
			t.Errorf("Expected success for position %d, got %v", outcome.Record.Position, outcome.Error)
		}
	}
	for _, rec := range records {
		if !store.Saved(rec.Position) {
			t.Errorf("Expected photo at position %d to be saved", rec.Position)
		}
	}
}
