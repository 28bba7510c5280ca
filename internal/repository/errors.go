package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured    = errors.New("service is not configured")
	ErrBucketNotFound   = errors.New("storage bucket does not exist")
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrCacheMiss        = errors.New("cache miss")
)

// FetchError is a page or image retrieval failure.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %v (status %d)", e.URL, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionServiceError is a failed or unconfigured model call.
type ExtractionServiceError struct {
	Err error
}

func (e *ExtractionServiceError) Error() string {
	return fmt.Sprintf("extraction service: %v", e.Err)
}

func (e *ExtractionServiceError) Unwrap() error { return e.Err }

// MalformedExtractionError means the model output could not be parsed as a listing object.
type MalformedExtractionError struct {
	// Snippet is the beginning of the offending output, for logs.
	Snippet string
	Err     error
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf("malformed extraction output: %v", e.Err)
}

func (e *MalformedExtractionError) Unwrap() error { return e.Err }

// UploadError is an object storage write failure.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("upload: %v", e.Err)
	}
	return fmt.Sprintf("upload %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
