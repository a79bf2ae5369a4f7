package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/yourusername/tiktok-bulk-go/internal/domain"
	"go.uber.org/zap"
)

// outputTemplate is the retrieval engine's naming pattern for files inside
// a workspace: unique video id, creator attribution, native extension.
const outputTemplate = "%(id)s_%(creator)s.%(ext)s"

// BatchResult bundles everything a finished batch produced. Job and Summary
// are populated as soon as a workspace exists, so callers can clean up even
// when Run returns an error.
type BatchResult struct {
	Job     *domain.Job
	Summary *domain.JobSummary
	Archive string
}

// Paths returns the transient paths owned by the job, archive first.
func (r *BatchResult) Paths() []string {
	paths := []string{}
	if r.Archive != "" {
		paths = append(paths, r.Archive)
	}
	if r.Job != nil {
		paths = append(paths, r.Job.Workspace)
	}
	return paths
}

// BatchRunner drives one batch end to end: fresh workspace, sequential
// per-URL fetches, summary accounting, packaging. Partial failure never
// aborts a batch; only an empty workspace does.
type BatchRunner struct {
	fs       afero.Fs
	fetcher  domain.Fetcher
	packager *Packager
	config   *domain.StorageConfig
	logger   *zap.Logger
}

// NewBatchRunner creates a batch runner.
func NewBatchRunner(
	fs afero.Fs,
	fetcher domain.Fetcher,
	packager *Packager,
	config *domain.StorageConfig,
	logger *zap.Logger,
) *BatchRunner {
	return &BatchRunner{
		fs:       fs,
		fetcher:  fetcher,
		packager: packager,
		config:   config,
		logger:   logger,
	}
}

// Run executes the full batch for an already-validated URL list. On any
// error after workspace creation the returned result still carries the
// paths that need cleanup.
func (r *BatchRunner) Run(ctx context.Context, urls []string) (*BatchResult, error) {
	workspace, err := afero.TempDir(r.fs, r.config.TempDir, r.config.WorkspacePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	job := domain.NewJob(urls, workspace)
	summary := domain.NewJobSummary(job.ID, len(urls))
	result := &BatchResult{Job: job, Summary: summary}

	r.logger.Info("Batch job started",
		zap.String("job_id", job.ID),
		zap.String("workspace", workspace),
		zap.Int("urls", len(urls)))

	template := filepath.Join(workspace, outputTemplate)
	for _, url := range urls {
		if err := r.fetcher.Fetch(ctx, url, template); err != nil {
			// recorded, never raised: one bad URL must not sink the batch
			summary.RecordFailure(url, domain.FetchReason(err))
			r.logger.Warn("Fetch failed",
				zap.String("job_id", job.ID),
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		summary.RecordSuccess()
	}

	fileCount, err := r.countWorkspaceFiles(workspace)
	if err != nil {
		return result, fmt.Errorf("failed to inspect workspace: %w", err)
	}
	if fileCount == 0 {
		// a fetch may "succeed" without producing a file; the job is only
		// a success if something actually exists
		return result, domain.ErrNoArtifacts
	}
	if summary.Success > fileCount {
		r.logger.Warn("Reported successes exceed files on disk",
			zap.String("job_id", job.ID),
			zap.Int("success", summary.Success),
			zap.Int("files", fileCount))
	}

	archive, err := r.packager.Package(job, summary)
	if err != nil {
		return result, fmt.Errorf("failed to package job %s: %w", job.ID, err)
	}
	result.Archive = archive

	r.logger.Info("Batch job finished",
		zap.String("job_id", job.ID),
		zap.Int("total", summary.Total),
		zap.Int("success", summary.Success),
		zap.Int("failed", len(summary.Failed)),
		zap.String("archive", archive))

	return result, nil
}

// countWorkspaceFiles counts regular files directly inside the workspace.
func (r *BatchRunner) countWorkspaceFiles(workspace string) (int, error) {
	entries, err := afero.ReadDir(r.fs, workspace)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			count++
		}
	}
	return count, nil
}
