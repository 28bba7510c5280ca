package entity

import "time"

// RawPage is the unprocessed HTML of a listing page.
type RawPage struct {
	URL        string
	HTML       string
	StatusCode int
	FetchedAt  time.Time
	// Rendered is true when the page came from a headless browser.
	Rendered bool
}

// ImageData is the downloaded body of a candidate listing photo.
type ImageData struct {
	URL         string
	Bytes       []byte
	ContentType string
}
