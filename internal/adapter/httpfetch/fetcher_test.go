package httpfetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/listing-ingestor/internal/repository"
)

func TestPageFetcherSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	page, err := NewPageFetcher(time.Second, NewUserAgentPool("test-agent")).Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html><body>ok</body></html>", page.HTML)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "test-agent", gotUA)
	assert.Contains(t, gotAccept, "text/html")
	assert.False(t, page.FetchedAt.IsZero())
}

func TestPageFetcherForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewPageFetcher(time.Second, nil).Fetch(context.Background(), srv.URL)

	var fetchErr *repository.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.ErrorIs(t, err, repository.ErrUnexpectedStatus)
}

func TestPageFetcherNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewPageFetcher(time.Second, nil).Fetch(context.Background(), url)

	var fetchErr *repository.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
}

func TestImageFetcherKeepsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("RIFFxxxxWEBP"))
	}))
	defer srv.Close()

	img, err := NewImageFetcher(time.Second, 0, nil).FetchImage(context.Background(), srv.URL+"/a.webp")

	require.NoError(t, err)
	assert.Equal(t, "image/webp", img.ContentType)
	assert.Equal(t, []byte("RIFFxxxxWEBP"), img.Bytes)
}

func TestImageFetcherSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer srv.Close()

	_, err := NewImageFetcher(time.Second, 1024, nil).FetchImage(context.Background(), srv.URL)

	assert.ErrorIs(t, err, repository.ErrImageTooLarge)
}

func TestImageFetcherNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewImageFetcher(time.Second, 0, nil).FetchImage(context.Background(), srv.URL)

	var fetchErr *repository.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestUserAgentPoolRotates(t *testing.T) {
	pool := NewUserAgentPool("a", "b")

	assert.Equal(t, []string{"a", "b", "a"}, []string{pool.Next(), pool.Next(), pool.Next()})
}
