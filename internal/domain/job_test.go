package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	urls := []string{
		"https://www.tiktok.com/@user/video/1",
		"https://www.tiktok.com/@user/video/2",
	}

	job := NewJob(urls, "/tmp/tiktok_dl_abc")

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "/tmp/tiktok_dl_abc", job.Workspace)
	assert.Equal(t, urls, job.URLs)
	assert.WithinDuration(t, time.Now().UTC(), job.CreatedAt, time.Minute)
}

func TestJob_ArchiveName(t *testing.T) {
	job := NewJob([]string{"https://www.tiktok.com/@u/video/1"}, "/tmp/ws")
	assert.Equal(t, "tiktok_videos_"+job.ID+".zip", job.ArchiveName())
}

func TestJobSummary_Accounting(t *testing.T) {
	s := NewJobSummary("job-1", 3)

	s.RecordSuccess()
	s.RecordFailure("https://www.tiktok.com/@u/video/2", "video unavailable")
	assert.False(t, s.Accounted())

	s.RecordSuccess()
	assert.True(t, s.Accounted())

	assert.Equal(t, 2, s.Success)
	require.Len(t, s.Failed, 1)
	assert.Equal(t, "https://www.tiktok.com/@u/video/2", s.Failed[0].URL)
	assert.Equal(t, "video unavailable", s.Failed[0].Reason)
}

func TestJobSummary_Counts(t *testing.T) {
	s := NewJobSummary("job-1", 3)
	s.RecordSuccess()
	s.RecordSuccess()
	s.RecordFailure("https://www.tiktok.com/@u/video/3", "network error")

	counts := s.Counts()
	assert.Equal(t, SummaryCounts{Total: 3, Success: 2, Failed: 1}, counts)

	data, err := json.Marshal(counts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3,"success":2,"failed":1}`, string(data))
}

func TestJobSummary_ReportJSON(t *testing.T) {
	s := NewJobSummary("job-1", 1)
	s.RecordFailure("https://www.tiktok.com/@u/video/1", "403")
	s.Finalize()

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "job_id")
	assert.Contains(t, decoded, "total")
	assert.Contains(t, decoded, "success")
	assert.Contains(t, decoded, "failed")
	assert.Contains(t, decoded, "generated_at")

	// generated_at must be an RFC3339 UTC timestamp
	_, err = time.Parse(time.RFC3339, decoded["generated_at"].(string))
	assert.NoError(t, err)
}

func TestJobSummary_EmptyFailedSerializesAsArray(t *testing.T) {
	s := NewJobSummary("job-1", 1)
	s.RecordSuccess()

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"failed":[]`)
}

func TestFetchReason(t *testing.T) {
	fe := &FetchError{URL: "https://www.tiktok.com/@u/video/1", Reason: "geo blocked"}
	assert.Equal(t, "geo blocked", FetchReason(fe))
	assert.Equal(t, "geo blocked", FetchReason(errors.Join(errors.New("wrapped"), fe)))
	assert.Equal(t, "boom", FetchReason(errors.New("boom")))
}

func TestNewInvalidInput(t *testing.T) {
	err := NewInvalidInput("a batch may contain at most %d URLs", 100)
	assert.Equal(t, "a batch may contain at most 100 URLs", err.Error())
}
