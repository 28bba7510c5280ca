package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagSortQuery |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveDotSegments

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeURL canonicalizes a URL so trivially different spellings of the same
// listing share a cache key. Unparseable input is returned trimmed.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	normalized, err := purell.NormalizeURLString(trimmed, normalizeFlags)
	if err != nil {
		return trimmed
	}
	return normalized
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// IsHTTPURL reports whether raw is an absolute http(s) URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
