package flickr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"photocrawl/pkg/errors"
	"photocrawl/pkg/logger"
)

// Client fetches Flickr photo pages and image files. It performs a
// single attempt per call and reports typed errors; retrying is the
// caller's job.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a new Flickr client
func NewClient(timeout time.Duration, userAgent string, log logger.Logger) *Client {
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}

	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
		},
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetTransport replaces the underlying HTTP transport. Tests use this
// to point the client at a local server.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// get performs a GET request with the configured headers
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// FetchPhotoPage fetches the public page for a photo ID and parses it.
// A page that reports the photo as private or missing is a permanent
// failure; any other non-200 response is worth retrying.
func (c *Client) FetchPhotoPage(ctx context.Context, photoID string) (*goquery.Document, error) {
	resp, err := c.get(ctx, PhotoPageURL(photoID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to body handling below
	case resp.StatusCode == http.StatusNotFound:
		c.logger.WarnWithFields("photo not found", map[string]interface{}{
			"photo_id": photoID,
			"status":   resp.StatusCode,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: fmt.Sprintf("photo %s not found (404)", photoID),
			Code:    resp.StatusCode,
		}
	default:
		return nil, &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: fmt.Sprintf("photo page returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read photo page: %v", err),
			Code:    resp.StatusCode,
		}
	}

	// The private marker is matched against the raw body, not the parsed
	// document, since it can sit inside script blocks
	if bytes.Contains(body, []byte(PrivateMarker)) {
		c.logger.WarnWithFields("photo is private", map[string]interface{}{
			"photo_id": photoID,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypePrivate,
			Message: fmt.Sprintf("photo %s is private", photoID),
			Code:    resp.StatusCode,
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse photo page: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return doc, nil
}

// FetchDocument fetches and parses an arbitrary HTML page, such as the
// sizes page linked from a photo page
func (c *Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: fmt.Sprintf("page returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse page: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return doc, nil
}

// DownloadImage downloads the image at the given URL. An empty payload
// is an error so callers never end up persisting zero-byte files.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	resp, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to body handling below
	case http.StatusGone:
		return nil, &errors.Error{
			Type:    errors.ErrorTypeGone,
			Message: fmt.Sprintf("image size no longer served: %s", imageURL),
			Code:    resp.StatusCode,
		}
	default:
		return nil, &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: fmt.Sprintf("image download returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read image data: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if len(data) == 0 {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeEmptyFile,
			Message: fmt.Sprintf("empty image payload from %s", imageURL),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("downloaded image", map[string]interface{}{
		"url":  imageURL,
		"size": len(data),
	})

	return data, nil
}
