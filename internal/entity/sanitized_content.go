package entity

// SanitizedContent is a listing page reduced to plain text plus candidate photos.
// CandidateImageURLs are absolute, unique, and in document order.
type SanitizedContent struct {
	Text               string
	CandidateImageURLs []string
}
