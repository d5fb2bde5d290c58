package flickr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeLabelForURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://live.staticflickr.com/65535/123_abc_o.jpg", SizeOriginal},
		{"https://live.staticflickr.com/65535/123_abc_k.jpg", SizeLarge2048},
		{"https://live.staticflickr.com/65535/123_abc_h.jpg", SizeLarge1600},
		{"https://live.staticflickr.com/65535/123_abc_b.jpg", SizeLarge},
		{"https://live.staticflickr.com/65535/123_abc_c.jpg", SizeMedium800},
		{"https://live.staticflickr.com/65535/123_abc_z.png", SizeMedium640},
		{"https://live.staticflickr.com/65535/123_abc_n.jpg", SizeSmall320},
		{"https://live.staticflickr.com/65535/123_abc_m.jpg", SizeSmall},
		{"https://live.staticflickr.com/65535/123_abc_t.jpg", SizeThumbnail},
		{"https://live.staticflickr.com/65535/123_abc_q.jpg", SizeSquare150},
		{"https://live.staticflickr.com/65535/123_abc_sq.jpg", SizeSquare},
		{"https://live.staticflickr.com/65535/123_abcdef1234.jpg", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SizeLabelForURL(tt.url), "url: %s", tt.url)
	}
}

func TestSizePriority(t *testing.T) {
	assert.Less(t, SizePriority(SizeOriginal), SizePriority(SizeLarge2048))
	assert.Less(t, SizePriority(SizeLarge2048), SizePriority(SizeLarge))
	assert.Less(t, SizePriority(SizeLarge), SizePriority(SizeMedium640))
	assert.Less(t, SizePriority(SizeMedium640), SizePriority(SizeSquare))

	// Unknown labels sort after every known size
	assert.Greater(t, SizePriority("Panoramic"), SizePriority(SizeSquare))
	assert.Greater(t, SizePriority(""), SizePriority(SizeSquare))
}

func TestOrderCandidates(t *testing.T) {
	cands := Candidates{
		{Label: SizeSmall, URL: "https://example.com/m.jpg"},
		{Label: SizeOriginal, URL: "https://example.com/o.jpg"},
		{Label: "", URL: "https://example.com/raw.jpg"},
		{Label: SizeLarge, URL: "https://example.com/b.jpg"},
	}

	ordered := OrderCandidates(cands)
	assert.Equal(t, []string{
		"https://example.com/o.jpg",
		"https://example.com/b.jpg",
		"https://example.com/m.jpg",
		"https://example.com/raw.jpg",
	}, ordered.URLs())
}

func TestOrderCandidatesDeduplicates(t *testing.T) {
	cands := Candidates{
		{Label: SizeLarge, URL: "https://example.com/b.jpg"},
		{Label: SizeOriginal, URL: "https://example.com/b.jpg"},
		{Label: SizeSmall, URL: ""},
	}

	ordered := OrderCandidates(cands)
	assert.Len(t, ordered, 1)
	assert.Equal(t, SizeLarge, ordered[0].Label)
}
