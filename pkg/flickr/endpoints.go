package flickr

import (
	"fmt"
	"strings"
)

const (
	// BaseURL is the base URL for Flickr
	BaseURL = "https://www.flickr.com"

	// PhotoEndpoint resolves a photo ID to its photo page
	PhotoEndpoint = "/photo.gne"

	// StaticHost serves the image files themselves
	StaticHost = "live.staticflickr.com"

	// PrivateMarker appears in the page body when a photo is not public
	PrivateMarker = "This photo is private"
)

// PhotoPageURL constructs the public page URL for a photo ID
func PhotoPageURL(photoID string) string {
	return fmt.Sprintf("%s%s?id=%s", BaseURL, PhotoEndpoint, photoID)
}

// EnsureScheme normalizes a URL that might be protocol-relative or
// scheme-less, as Flickr markup mixes both forms
func EnsureScheme(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}
	if strings.HasPrefix(rawURL, "//") {
		return "https:" + rawURL
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}

// AbsoluteURL resolves a page-relative href against the Flickr origin
func AbsoluteURL(href string) string {
	if href == "" {
		return href
	}
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
		return BaseURL + href
	}
	return EnsureScheme(href)
}
