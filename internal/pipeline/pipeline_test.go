package pipeline

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
)

type fakePageFetcher struct {
	html   string
	status int
	calls  int
}

func (f *fakePageFetcher) Fetch(_ context.Context, url string) (*entity.RawPage, error) {
	f.calls++
	if f.status >= 300 {
		return nil, &repository.FetchError{URL: url, StatusCode: f.status, Err: repository.ErrUnexpectedStatus}
	}
	return &entity.RawPage{URL: url, HTML: f.html, StatusCode: http.StatusOK}, nil
}

const scenarioAPage = `<html><body>
	<h1>Lumpini Place</h1>
	<p>Price: 2,800,000 THB</p>
	<img src="/photo.jpg">
</body></html>`

func newTestPipeline(t *testing.T, page *fakePageFetcher, gen *fakeGenerator, images *fakeImageFetcher, storage *fakeStorage) *Pipeline {
	return New(page, gen, images, storage, Options{StoragePrefix: "listings"}, zaptest.NewLogger(t))
}

func TestPipelineScenarioA(t *testing.T) {
	page := &fakePageFetcher{html: scenarioAPage}
	gen := &fakeGenerator{response: `{"title":"Lumpini Place","price":2800000,"image_urls":["https://example.com/photo.jpg"]}`}
	images := &fakeImageFetcher{contentType: "image/jpeg"}
	storage := newFakeStorage()

	report, err := newTestPipeline(t, page, gen, images, storage).Run(context.Background(), "https://example.com/listing/1")

	require.NoError(t, err)
	result := report.Result
	assert.Equal(t, int64(2800000), result.Price)
	require.Len(t, result.ImageURLs, 1)
	assert.Equal(t, result.ImageURLs[0], result.MainImageURL)
	assert.Equal(t, 1, storage.count())
	assert.Contains(t, gen.prompt, "https://example.com/photo.jpg")
	assert.Contains(t, gen.prompt, "Price: 2,800,000 THB")
	for _, stage := range []Stage{StageFetch, StageSanitize, StageExtract, StageValidate, StageImages} {
		assert.Contains(t, report.Stages, stage)
	}
}

func TestPipelineScenarioCMalformedSkipsImages(t *testing.T) {
	page := &fakePageFetcher{html: scenarioAPage}
	gen := &fakeGenerator{response: "Sorry, I cannot help with that."}
	images := &fakeImageFetcher{}

	report, err := newTestPipeline(t, page, gen, images, newFakeStorage()).Run(context.Background(), "https://example.com/listing/1")

	var malformed *repository.MalformedExtractionError
	require.ErrorAs(t, err, &malformed)
	assert.Nil(t, report.Result)
	assert.Zero(t, images.calls.Load())
}

func TestPipelineScenarioDPartialImages(t *testing.T) {
	page := &fakePageFetcher{html: scenarioAPage}
	gen := &fakeGenerator{response: `{"title":"X","image_urls":["https://img/1.jpg","https://img/2.jpg","https://img/3.jpg"]}`}
	images := &fakeImageFetcher{fail: map[string]bool{"https://img/2.jpg": true}}

	report, err := newTestPipeline(t, page, gen, images, newFakeStorage()).Run(context.Background(), "https://example.com/listing/1")

	require.NoError(t, err)
	assert.Len(t, report.Result.ImageURLs, 2)
	assert.Len(t, report.Images, 3)
}

func TestPipelineScenarioEForbiddenPage(t *testing.T) {
	page := &fakePageFetcher{status: http.StatusForbidden}
	gen := &fakeGenerator{}

	_, err := newTestPipeline(t, page, gen, &fakeImageFetcher{}, newFakeStorage()).Run(context.Background(), "https://example.com/listing/1")

	var fetchErr *repository.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Zero(t, gen.calls)
}

func TestPipelineUnconfiguredModel(t *testing.T) {
	page := &fakePageFetcher{html: scenarioAPage}

	_, err := New(page, nil, &fakeImageFetcher{}, newFakeStorage(), Options{}, zaptest.NewLogger(t)).
		Run(context.Background(), "https://example.com/listing/1")

	var svcErr *repository.ExtractionServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, repository.ErrNotConfigured)
}

func TestPipelineMissingBucket(t *testing.T) {
	page := &fakePageFetcher{html: scenarioAPage}
	gen := &fakeGenerator{response: `{"image_urls":["https://example.com/photo.jpg"]}`}
	storage := newFakeStorage()
	storage.noBucket = true

	report, err := newTestPipeline(t, page, gen, &fakeImageFetcher{}, storage).Run(context.Background(), "https://example.com/listing/1")

	assert.ErrorIs(t, err, repository.ErrBucketNotFound)
	assert.Nil(t, report.Result)
	assert.NotNil(t, report.Validated)
}
