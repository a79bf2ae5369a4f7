package app

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/yourusername/tiktok-bulk-go/internal/domain"
)

// Packager turns a finished job workspace into a single zip artifact. The
// archive lands in the temp directory, outside the workspace, named after
// the workspace directory so concurrent jobs cannot collide.
type Packager struct {
	fs      afero.Fs
	tempDir string
}

// NewPackager creates a packager writing archives into tempDir.
func NewPackager(fs afero.Fs, tempDir string) *Packager {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Packager{fs: fs, tempDir: tempDir}
}

// Package writes the summary report into the workspace and archives the
// whole workspace tree. Returns the archive path. The workspace itself is
// left untouched; cleanup happens later.
func (p *Packager) Package(job *domain.Job, summary *domain.JobSummary) (string, error) {
	if err := p.writeReport(job, summary); err != nil {
		return "", err
	}

	archivePath := filepath.Join(p.tempDir, filepath.Base(job.Workspace)+".zip")
	if err := p.archiveWorkspace(job.Workspace, archivePath); err != nil {
		// do not leave a truncated archive behind
		p.fs.Remove(archivePath)
		return "", err
	}

	return archivePath, nil
}

// writeReport serializes the summary as a UTF-8 JSON report inside the
// workspace so it becomes part of the archive.
func (p *Packager) writeReport(job *domain.Job, summary *domain.JobSummary) error {
	summary.Finalize()

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	reportPath := filepath.Join(job.Workspace, domain.ReportFileName)
	if err := afero.WriteFile(p.fs, reportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// archiveWorkspace zips the workspace tree recursively into archivePath.
func (p *Packager) archiveWorkspace(workspace, archivePath string) error {
	archiveFile, err := p.fs.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", archivePath, err)
	}

	zipWriter := zip.NewWriter(archiveFile)

	err = afero.Walk(p.fs, workspace, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(workspace, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		if relPath == "." || info.IsDir() {
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create zip header for %s: %w", path, err)
		}

		// Use forward slashes for cross-platform compatibility
		header.Name = filepath.ToSlash(relPath)
		header.Method = zip.Deflate

		w, err := zipWriter.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to write zip header for %s: %w", path, err)
		}

		file, err := p.fs.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", path, err)
		}
		defer file.Close()

		if _, err := io.Copy(w, file); err != nil {
			return fmt.Errorf("failed to write file %s to archive: %w", path, err)
		}

		return nil
	})
	if err != nil {
		zipWriter.Close()
		archiveFile.Close()
		return fmt.Errorf("failed to archive workspace %s: %w", workspace, err)
	}

	// Close flushes the central directory; a failure here means the archive
	// on disk is truncated and must not be delivered
	if err := zipWriter.Close(); err != nil {
		archiveFile.Close()
		return fmt.Errorf("failed to finalize archive %s: %w", archivePath, err)
	}
	if err := archiveFile.Close(); err != nil {
		return fmt.Errorf("failed to close archive %s: %w", archivePath, err)
	}

	return nil
}
