package entity

// ExtractionRequest is one inbound ingestion call.
type ExtractionRequest struct {
	SourceURL string
	// Force bypasses the result cache and refreshes it.
	Force bool
	// RequestID correlates log lines and the ingestion log row.
	RequestID string
}
