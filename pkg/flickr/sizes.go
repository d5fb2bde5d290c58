package flickr

import (
	"regexp"
	"sort"
)

// Size labels, largest first. The fetcher tries candidates in this order.
const (
	SizeOriginal  = "Original"
	SizeLarge2048 = "Large 2048"
	SizeLarge1600 = "Large 1600"
	SizeLarge     = "Large"
	SizeMedium800 = "Medium 800"
	SizeMedium640 = "Medium 640"
	SizeMedium    = "Medium"
	SizeSmall320  = "Small 320"
	SizeSmall     = "Small"
	SizeThumbnail = "Thumbnail"
	SizeSquare150 = "Square 150"
	SizeSquare    = "Square"
)

// sizePriority maps size labels to their download preference, lower is better
var sizePriority = map[string]int{
	SizeOriginal:  0,
	SizeLarge2048: 1,
	SizeLarge1600: 2,
	SizeLarge:     3,
	SizeMedium800: 4,
	SizeMedium640: 5,
	SizeMedium:    6,
	SizeSmall320:  7,
	SizeSmall:     8,
	SizeThumbnail: 9,
	SizeSquare150: 10,
	SizeSquare:    11,
}

// suffixLabels maps static URL size suffixes to their labels
var suffixLabels = map[string]string{
	"o":  SizeOriginal,
	"k":  SizeLarge2048,
	"h":  SizeLarge1600,
	"b":  SizeLarge,
	"c":  SizeMedium800,
	"z":  SizeMedium640,
	"w":  SizeMedium,
	"n":  SizeSmall320,
	"m":  SizeSmall,
	"t":  SizeThumbnail,
	"q":  SizeSquare150,
	"s":  SizeSquare,
	"sq": SizeSquare,
}

// sizeSuffixPattern matches the size suffix of a static image URL,
// e.g. the "_b" in ".../12345_abcdef_b.jpg"
var sizeSuffixPattern = regexp.MustCompile(`_(sq|[a-z0-9]{1,2})\.(jpg|jpeg|png|gif)$`)

// SizePriority returns the download preference for a size label.
// Unknown labels sort after every known size.
func SizePriority(label string) int {
	if p, ok := sizePriority[label]; ok {
		return p
	}
	return len(sizePriority)
}

// SizeLabelForURL derives the size label from a static image URL's
// suffix. Returns empty string when the URL carries no recognized suffix.
func SizeLabelForURL(rawURL string) string {
	m := sizeSuffixPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return suffixLabels[m[1]]
}

// Candidate is a resolved image URL with its size label
type Candidate struct {
	Label string
	URL   string
}

// Candidates is an ordered list of image URLs to try
type Candidates []Candidate

// URLs returns just the URLs, in candidate order
func (c Candidates) URLs() []string {
	urls := make([]string, len(c))
	for i, cand := range c {
		urls[i] = cand.URL
	}
	return urls
}

// OrderCandidates sorts candidates largest size first, dropping duplicate
// URLs. The sort is stable so equally labeled candidates keep their
// extraction order.
func OrderCandidates(cands Candidates) Candidates {
	seen := make(map[string]bool, len(cands))
	unique := make(Candidates, 0, len(cands))
	for _, c := range cands {
		if c.URL == "" || seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		unique = append(unique, c)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return SizePriority(unique[i].Label) < SizePriority(unique[j].Label)
	})

	return unique
}
