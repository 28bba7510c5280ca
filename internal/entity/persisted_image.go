package entity

// ImageStatus is the outcome of copying one listing photo into object storage.
type ImageStatus string

const (
	ImageOK           ImageStatus = "ok"
	ImageFetchFailed  ImageStatus = "fetchFailed"
	ImageUploadFailed ImageStatus = "uploadFailed"
)

// PersistedImage is the per-URL result of the image pipeline.
type PersistedImage struct {
	SourceURL  string
	StorageKey string
	PublicURL  string
	Status     ImageStatus
	// Reason is the failure cause for non-ok statuses.
	Reason string
}
