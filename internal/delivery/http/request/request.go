package request

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"` // skip the result cache and refresh it
}
