package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/tiktok-bulk-go/internal/app"
	"github.com/yourusername/tiktok-bulk-go/internal/domain"
)

// mockBatchService returns a canned result for every submitted batch
type mockBatchService struct {
	result *app.BatchResult
	err    error
	urls   []string
}

func (m *mockBatchService) Submit(ctx context.Context, urls []string) (*app.BatchResult, error) {
	m.urls = urls
	return m.result, m.err
}

func newDownloadTestRouter(t *testing.T, fs afero.Fs, batches BatchService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validator := app.NewURLValidator(&domain.DefaultConfig().Batch)
	janitor := app.NewJanitor(fs, zap.NewNop())
	h := NewDownloadHandler(validator, batches, janitor, fs, zap.NewNop())

	router := gin.New()
	router.POST("/api/download", h.Download)
	return router
}

func postDownload(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/download", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDownload_MalformedBody(t *testing.T) {
	router := newDownloadTestRouter(t, afero.NewMemMapFs(), &mockBatchService{})

	w := postDownload(router, `{"urls": "not-an-array"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postDownload(router, `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload_ValidationFailure(t *testing.T) {
	router := newDownloadTestRouter(t, afero.NewMemMapFs(), &mockBatchService{})

	w := postDownload(router, `{"urls": ["https://example.com/x", "not a url"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "at least one TikTok URL is required", body["error"])
}

func TestDownload_NoArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/tmp/tiktok_dl_x", 0755))

	job := domain.NewJob([]string{"https://www.tiktok.com/@a/video/1"}, "/tmp/tiktok_dl_x")
	batches := &mockBatchService{
		result: &app.BatchResult{Job: job, Summary: domain.NewJobSummary(job.ID, 1)},
		err:    domain.ErrNoArtifacts,
	}
	router := newDownloadTestRouter(t, fs, batches)

	w := postDownload(router, `{"urls": ["https://www.tiktok.com/@a/video/1"]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "none of the requested videos could be downloaded", body["error"])

	// partial workspace still got cleaned up
	exists, _ := afero.DirExists(fs, "/tmp/tiktok_dl_x")
	assert.False(t, exists)
}

func TestDownload_InternalFailureIsGeneric(t *testing.T) {
	batches := &mockBatchService{err: errors.New("disk exploded: /var/secret/path")}
	router := newDownloadTestRouter(t, afero.NewMemMapFs(), batches)

	w := postDownload(router, `{"urls": ["https://www.tiktok.com/@a/video/1"]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "/var/secret/path")
}

func TestDownload_StreamsArchiveWithHeaders(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/tmp/tiktok_dl_ok", 0755))
	require.NoError(t, afero.WriteFile(fs, "/tmp/tiktok_dl_ok/v.mp4", []byte("media"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/tmp/tiktok_dl_ok.zip", []byte("zip-bytes"), 0644))

	job := domain.NewJob([]string{
		"https://www.tiktok.com/@a/video/1",
		"https://www.tiktok.com/@b/video/2",
		"https://www.tiktok.com/@c/video/3",
	}, "/tmp/tiktok_dl_ok")
	summary := domain.NewJobSummary(job.ID, 3)
	summary.RecordSuccess()
	summary.RecordSuccess()
	summary.RecordFailure("https://www.tiktok.com/@c/video/3", "video unavailable")

	batches := &mockBatchService{
		result: &app.BatchResult{Job: job, Summary: summary, Archive: "/tmp/tiktok_dl_ok.zip"},
	}
	router := newDownloadTestRouter(t, fs, batches)

	w := postDownload(router, `{"urls": ["https://www.tiktok.com/@a/video/1", "https://www.tiktok.com/@b/video/2", "https://www.tiktok.com/@c/video/3"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tiktok_videos_`+job.ID+`.zip"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, job.ID, w.Header().Get("X-Job-Id"))
	assert.JSONEq(t, `{"total":3,"success":2,"failed":1}`, w.Header().Get("X-Download-Summary"))
	assert.Equal(t, "zip-bytes", w.Body.String())

	// delivery done: workspace and archive are gone
	exists, _ := afero.Exists(fs, "/tmp/tiktok_dl_ok.zip")
	assert.False(t, exists)
	exists, _ = afero.DirExists(fs, "/tmp/tiktok_dl_ok")
	assert.False(t, exists)
}

func TestDownload_MissingArchiveStillCleansUp(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/tmp/tiktok_dl_gone", 0755))

	job := domain.NewJob([]string{"https://www.tiktok.com/@a/video/1"}, "/tmp/tiktok_dl_gone")
	batches := &mockBatchService{
		result: &app.BatchResult{
			Job:     job,
			Summary: domain.NewJobSummary(job.ID, 1),
			Archive: "/tmp/never-written.zip",
		},
	}
	router := newDownloadTestRouter(t, fs, batches)

	w := postDownload(router, `{"urls": ["https://www.tiktok.com/@a/video/1"]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	exists, _ := afero.DirExists(fs, "/tmp/tiktok_dl_gone")
	assert.False(t, exists)
}

func TestDownload_ValidatedURLsReachService(t *testing.T) {
	batches := &mockBatchService{err: domain.ErrNoArtifacts}
	router := newDownloadTestRouter(t, afero.NewMemMapFs(), batches)

	postDownload(router, `{"urls": ["https://www.tiktok.com/@a/video/1", "junk", "https://www.tiktok.com/@a/video/1"]}`)

	assert.Equal(t, []string{"https://www.tiktok.com/@a/video/1"}, batches.urls)
}
