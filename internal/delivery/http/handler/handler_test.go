package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/listing-ingestor/internal/delivery/http/handler"
	"github.com/user/listing-ingestor/internal/delivery/http/router"
	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
	"github.com/user/listing-ingestor/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type fakeIngestor struct {
	result     *entity.IngestionResult
	err        error
	historyErr error
	got        entity.ExtractionRequest
	limit      int
}

func (f *fakeIngestor) Ingest(_ context.Context, req entity.ExtractionRequest) (*entity.IngestionResult, error) {
	f.got = req
	return f.result, f.err
}

func (f *fakeIngestor) History(_ context.Context, url string, limit int) ([]*entity.IngestionRecord, error) {
	f.limit = limit
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return []*entity.IngestionRecord{{ID: 1, SourceURL: url, Status: entity.IngestionSucceeded}}, nil
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newServer(t *testing.T, ing *fakeIngestor, pingers map[string]handler.Pinger) *httptest.Server {
	logger := zaptest.NewLogger(t)
	srv := httptest.NewServer(router.New(handler.NewHandler(ing, pingers, logger), logger, 5*time.Second))
	t.Cleanup(srv.Close)
	return srv
}

func postExtract(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]any) {
	resp, err := http.Post(srv.URL+"/api/extract", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestExtractSuccess(t *testing.T) {
	ing := &fakeIngestor{result: &entity.IngestionResult{
		ExtractedListing: entity.ExtractedListing{
			Title:     "Condo",
			Price:     2800000,
			Amenities: []string{},
			ImageURLs: []string{"https://cdn/1.jpg"},
		},
		MainImageURL: "https://cdn/1.jpg",
	}}
	srv := newServer(t, ing, nil)

	resp, body := postExtract(t, srv, `{"url":" https://example.com/listing/1 ","force":true}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, float64(2800000), body["price"])
	assert.Equal(t, "https://cdn/1.jpg", body["main_image_url"])
	assert.Equal(t, []any{"https://cdn/1.jpg"}, body["image_urls"])
	for _, key := range []string{"title", "description", "sqm", "layout", "floor", "amenities", "building_name", "area"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, "https://example.com/listing/1", ing.got.SourceURL)
	assert.True(t, ing.got.Force)
	assert.NotEmpty(t, ing.got.RequestID)
}

func TestExtractBadRequest(t *testing.T) {
	srv := newServer(t, &fakeIngestor{}, nil)

	for name, body := range map[string]string{
		"not json":     `url=https://example.com`,
		"missing url":  `{}`,
		"relative url": `{"url":"/listing/1"}`,
		"ftp url":      `{"url":"ftp://example.com/a"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, out := postExtract(t, srv, body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestExtractPipelineFailure(t *testing.T) {
	ing := &fakeIngestor{err: &repository.MalformedExtractionError{Err: errors.New("invalid character 'S'")}}
	srv := newServer(t, ing, nil)

	resp, out := postExtract(t, srv, `{"url":"https://example.com/listing/1"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, out["error"], "malformed extraction output")
}

func TestIngestions(t *testing.T) {
	ing := &fakeIngestor{}
	srv := newServer(t, ing, nil)

	resp, err := http.Get(srv.URL + "/api/ingestions?url=https://example.com/listing/1&limit=500")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		URL        string                    `json:"url"`
		Ingestions []*entity.IngestionRecord `json:"ingestions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "https://example.com/listing/1", out.URL)
	assert.Len(t, out.Ingestions, 1)
	assert.Equal(t, 100, ing.limit)
}

func TestIngestionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{"missing url", "", nil, http.StatusBadRequest},
		{"bad limit", "?url=https://a.com&limit=x", nil, http.StatusBadRequest},
		{"log disabled", "?url=https://a.com", repository.ErrNotConfigured, http.StatusNotFound},
		{"db error", "?url=https://a.com", errors.New("conn refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, &fakeIngestor{historyErr: tt.err}, nil)

			resp, err := http.Get(srv.URL + "/api/ingestions" + tt.query)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("down") })

	srv := newServer(t, &fakeIngestor{}, map[string]handler.Pinger{"storage": ok, "redis": ok})
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv = newServer(t, &fakeIngestor{}, map[string]handler.Pinger{"storage": ok, "postgres": down})
	resp, err = http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var status map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, map[string]string{"storage": "healthy", "postgres": "unhealthy"}, status)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, &fakeIngestor{}, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
