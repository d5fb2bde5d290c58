package integration

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
)

// MockFlickrServer simulates the public Flickr photo pages and the
// static image host with realistic behavior.
type MockFlickrServer struct {
	server         *httptest.Server
	photos         map[string]*MockPhoto
	requestCount   int32
	errorResponses map[string]int // path prefix -> status code
	failuresLeft   map[string]int // path prefix -> remaining forced failures
	mu             sync.RWMutex
}

// MockPhoto describes one photo the mock server knows about
type MockPhoto struct {
	ID      string
	Secret  string
	Server  string
	Private bool
	// SizesOnly drops the inline image markup from the photo page and
	// leaves just a link to the sizes page
	SizesOnly bool
	// Width and Height of the served image
	Width  int
	Height int
}

// NewMockFlickrServer creates a new mock Flickr server
func NewMockFlickrServer() *MockFlickrServer {
	m := &MockFlickrServer{
		photos:         make(map[string]*MockPhoto),
		errorResponses: make(map[string]int),
		failuresLeft:   make(map[string]int),
	}

	mux := http.NewServeMux()

	// Photo page endpoint
	mux.HandleFunc("/photo.gne", m.handlePhotoPage)

	// All-sizes page
	mux.HandleFunc("/sizes/", m.handleSizesPage)

	// Everything else is treated as a static image path
	mux.HandleFunc("/", m.handleImage)

	m.server = httptest.NewServer(mux)
	return m
}

// AddPhoto registers a photo with the mock server
func (m *MockFlickrServer) AddPhoto(p *MockPhoto) {
	if p.Secret == "" {
		p.Secret = "abcdef1234"
	}
	if p.Server == "" {
		p.Server = "65535"
	}
	if p.Width == 0 {
		p.Width = 8
	}
	if p.Height == 0 {
		p.Height = 6
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos[p.ID] = p
}

// ImagePath returns the static path that serves the photo at the given
// size suffix
func (p *MockPhoto) ImagePath(suffix string) string {
	return fmt.Sprintf("/%s/%s_%s_%s.jpg", p.Server, p.ID, p.Secret, suffix)
}

// ImageURL returns the full static-host URL for the photo
func (p *MockPhoto) ImageURL(suffix string) string {
	return "https://live.staticflickr.com" + p.ImagePath(suffix)
}

// handlePhotoPage serves photo.gne requests
func (m *MockFlickrServer) handlePhotoPage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	id := r.URL.Query().Get("id")

	if code := m.takeFailure("/photo.gne?id=" + id); code > 0 {
		w.WriteHeader(code)
		fmt.Fprintf(w, "Error %d", code)
		return
	}

	m.mu.RLock()
	photo, ok := m.photos[id]
	m.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><body>Page Not Found</body></html>")
		return
	}

	if photo.Private {
		// The marker appears in the page body, the response is still 200
		fmt.Fprint(w, "<html><body><p>This photo is private. Sorry!</p></body></html>")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if photo.SizesOnly {
		fmt.Fprintf(w, `<html><body>
<h1>Photo %s</h1>
<a href="/sizes/%s/">View all sizes</a>
</body></html>`, photo.ID, photo.ID)
		return
	}

	fmt.Fprintf(w, `<html><head>
<meta property="og:image" content="%s" />
</head><body>
<img class="main-photo" src="%s" />
<a href="/sizes/%s/">View all sizes</a>
</body></html>`, photo.ImageURL("b"), photo.ImageURL("b"), photo.ID)
}

// handleSizesPage serves the all-sizes listing for a photo
func (m *MockFlickrServer) handleSizesPage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[1]

	m.mu.RLock()
	photo, ok := m.photos[id]
	m.mu.RUnlock()
	if !ok || photo.Private {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<html><body>
<img src="%s" />
<a href="%s">Original</a>
<a href="%s">Large</a>
<a href="%s">Medium</a>
</body></html>`, photo.ImageURL("m"), photo.ImageURL("o"), photo.ImageURL("b"), photo.ImageURL("z"))
}

// handleImage serves JPEG bytes for static image paths
func (m *MockFlickrServer) handleImage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if code := m.takeFailure(r.URL.Path); code > 0 {
		w.WriteHeader(code)
		return
	}

	// Find the photo this path belongs to
	m.mu.RLock()
	var photo *MockPhoto
	for _, p := range m.photos {
		if strings.Contains(r.URL.Path, p.ID+"_"+p.Secret) {
			photo = p
			break
		}
	}
	m.mu.RUnlock()

	if photo == nil || photo.Private {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(jpegBytes(photo.Width, photo.Height))
}

// SetErrorResponse makes a path fail with the given status code for the
// next count requests
func (m *MockFlickrServer) SetErrorResponse(path string, code, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[path] = code
	m.failuresLeft[path] = count
}

// takeFailure consumes one configured failure for the path, if any
func (m *MockFlickrServer) takeFailure(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for prefix, left := range m.failuresLeft {
		if left > 0 && strings.HasPrefix(path, prefix) {
			m.failuresLeft[prefix] = left - 1
			return m.errorResponses[prefix]
		}
	}
	return 0
}

// GetURL returns the base URL of the mock server
func (m *MockFlickrServer) GetURL() string {
	return m.server.URL
}

// GetRequestCount returns the total number of requests
func (m *MockFlickrServer) GetRequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// ResetCounters resets the request counter
func (m *MockFlickrServer) ResetCounters() {
	atomic.StoreInt32(&m.requestCount, 0)
}

// Close shuts down the mock server
func (m *MockFlickrServer) Close() {
	m.server.Close()
}

// jpegBytes encodes a solid JPEG image of the given dimensions
func jpegBytes(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
