// Package pipeline implements listing ingestion: fetch, sanitize, model-assisted
// extraction, validation, image persistence and result assembly.
package pipeline

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/pkg/utils"
)

// DefaultMaxTextChars bounds the text handed to the model.
const DefaultMaxTextChars = 40000

// noiseSelectors are removed before text and image collection.
var noiseSelectors = "script, style, noscript, iframe, svg, head, nav, footer"

// imageSourceAttrs are tried in order; lazy-loading galleries often leave src empty.
var imageSourceAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

var (
	excludedSubstrings = []string{"avatar", "logo"}
	excludedSuffixes   = []string{".svg"}
)

// Sanitizer reduces listing HTML to plain text and candidate photo URLs.
type Sanitizer struct {
	maxTextChars int
}

func NewSanitizer(maxTextChars int) *Sanitizer {
	if maxTextChars <= 0 {
		maxTextChars = DefaultMaxTextChars
	}
	return &Sanitizer{maxTextChars: maxTextChars}
}

// Sanitize never fails; unusable elements are skipped.
func (s *Sanitizer) Sanitize(sourceURL, rawHTML string) *entity.SanitizedContent {
	content := &entity.SanitizedContent{CandidateImageURLs: []string{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return content
	}
	doc.Find(noiseSelectors).Remove()

	content.Text = truncateRunes(collapseWhitespace(nodeText(doc.Selection)), s.maxTextChars)
	content.CandidateImageURLs = collectImages(doc, sourceURL)
	return content
}

func collectImages(doc *goquery.Document, sourceURL string) []string {
	images := []string{}
	base, err := url.Parse(sourceURL)
	if err != nil {
		return images
	}

	seen := make(map[string]struct{})
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		ref := imageSource(sel)
		if ref == "" || strings.HasPrefix(strings.ToLower(ref), "data:") {
			return
		}
		abs, err := utils.ToAbsoluteURL(base, ref)
		if err != nil || !utils.IsHTTPURL(abs) {
			return
		}
		if isExcludedImage(abs) {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		images = append(images, abs)
	})
	return images
}

func imageSource(sel *goquery.Selection) string {
	for _, attr := range imageSourceAttrs {
		if v, ok := sel.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func isExcludedImage(abs string) bool {
	lower := strings.ToLower(abs)
	for _, sub := range excludedSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	path := lower
	if u, err := url.Parse(lower); err == nil {
		path = u.Path
	}
	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(lower, suffix) || strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// nodeText joins text nodes with spaces so adjacent block elements don't run together.
func nodeText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		appendText(n, &sb)
	}
	return sb.String()
}

func appendText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, sb)
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
