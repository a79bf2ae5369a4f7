package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportFileName is the name of the summary report written into every
// job workspace before archiving.
const ReportFileName = "download_report.json"

// Job represents one batch of URLs processed as a single unit of work.
// A job owns exactly one workspace directory for its entire lifetime.
type Job struct {
	ID        string    `json:"id"`
	Workspace string    `json:"workspace"`
	URLs      []string  `json:"urls"`
	CreatedAt time.Time `json:"created_at"`
}

// NewJob creates a job for the given validated URL list, bound to an
// already-created workspace directory.
func NewJob(urls []string, workspace string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Workspace: workspace,
		URLs:      urls,
		CreatedAt: time.Now().UTC(),
	}
}

// ArchiveName returns the archive file name presented to the caller.
func (j *Job) ArchiveName() string {
	return "tiktok_videos_" + j.ID + ".zip"
}

// FailedFetch records one URL that could not be downloaded and why.
type FailedFetch struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// JobSummary is the per-URL success/failure accounting for a batch. It is
// serialized into the workspace as the report file and surfaced to the
// transport layer as response metadata.
type JobSummary struct {
	JobID       string        `json:"job_id"`
	Total       int           `json:"total"`
	Success     int           `json:"success"`
	Failed      []FailedFetch `json:"failed"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NewJobSummary creates an empty summary for a job with the given input size.
func NewJobSummary(jobID string, total int) *JobSummary {
	return &JobSummary{
		JobID:       jobID,
		Total:       total,
		Failed:      []FailedFetch{},
		GeneratedAt: time.Now().UTC(),
	}
}

// RecordSuccess counts one successfully fetched URL.
func (s *JobSummary) RecordSuccess() {
	s.Success++
}

// RecordFailure appends a failed URL with its reason, preserving input order.
func (s *JobSummary) RecordFailure(url, reason string) {
	s.Failed = append(s.Failed, FailedFetch{URL: url, Reason: reason})
}

// Finalize stamps the summary generation time. Called once, right before
// the summary is written into the workspace.
func (s *JobSummary) Finalize() {
	s.GeneratedAt = time.Now().UTC()
}

// Accounted reports whether every input URL is accounted for exactly once.
func (s *JobSummary) Accounted() bool {
	return s.Success+len(s.Failed) == s.Total
}

// SummaryCounts is the compact form of a summary sent in response headers.
type SummaryCounts struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Counts returns the summary reduced to its three counters.
func (s *JobSummary) Counts() SummaryCounts {
	return SummaryCounts{
		Total:   s.Total,
		Success: s.Success,
		Failed:  len(s.Failed),
	}
}
