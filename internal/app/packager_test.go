package app

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tiktok-bulk-go/internal/domain"
)

// brokenWriteFs hands out files that reject every write, for names matching
// the given suffix. Other files pass through untouched.
type brokenWriteFs struct {
	afero.Fs
	suffix string
}

func (b *brokenWriteFs) Create(name string) (afero.File, error) {
	f, err := b.Fs.Create(name)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(name, b.suffix) {
		return &brokenWriteFile{File: f}, nil
	}
	return f, nil
}

type brokenWriteFile struct {
	afero.File
}

func (f *brokenWriteFile) Write(p []byte) (int, error) {
	return 0, errors.New("no space left on device")
}

func newPackagerWorkspace(t *testing.T, fs afero.Fs, files map[string]string) *domain.Job {
	t.Helper()
	workspace, err := afero.TempDir(fs, "/tmp", "tiktok_dl_")
	require.NoError(t, err)

	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(workspace, name), []byte(content), 0644))
	}

	return domain.NewJob([]string{"https://www.tiktok.com/@a/video/1"}, workspace)
}

func TestPackage_WritesReportIntoWorkspace(t *testing.T) {
	fs := afero.NewMemMapFs()
	job := newPackagerWorkspace(t, fs, map[string]string{"a.mp4": "media"})
	summary := domain.NewJobSummary(job.ID, 1)
	summary.RecordSuccess()

	p := NewPackager(fs, "/tmp")
	_, err := p.Package(job, summary)
	require.NoError(t, err)

	exists, _ := afero.Exists(fs, filepath.Join(job.Workspace, domain.ReportFileName))
	assert.True(t, exists)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestPackage_ArchivesWholeTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	job := newPackagerWorkspace(t, fs, map[string]string{
		"a.mp4": "first video",
		"b.mp4": "second video",
	})
	summary := domain.NewJobSummary(job.ID, 2)
	summary.RecordSuccess()
	summary.RecordSuccess()

	p := NewPackager(fs, "/tmp")
	archivePath, err := p.Package(job, summary)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/tmp", filepath.Base(job.Workspace)+".zip"), archivePath)

	data, err := afero.ReadFile(fs, archivePath)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	contents := make(map[string]string)
	for _, f := range reader.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		contents[f.Name] = string(body)
	}
	sort.Strings(names)

	assert.Equal(t, []string{"a.mp4", "b.mp4", domain.ReportFileName}, names)
	assert.Equal(t, "first video", contents["a.mp4"])
	assert.Equal(t, "second video", contents["b.mp4"])
}

func TestPackage_WorkspaceSurvivesPackaging(t *testing.T) {
	fs := afero.NewMemMapFs()
	job := newPackagerWorkspace(t, fs, map[string]string{"a.mp4": "media"})
	summary := domain.NewJobSummary(job.ID, 1)
	summary.RecordSuccess()

	p := NewPackager(fs, "/tmp")
	_, err := p.Package(job, summary)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, filepath.Join(job.Workspace, "a.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "media", string(data))
}

func TestPackage_ArchiveFlushFailureIsAnError(t *testing.T) {
	base := afero.NewMemMapFs()
	fs := &brokenWriteFs{Fs: base, suffix: ".zip"}
	job := newPackagerWorkspace(t, fs, map[string]string{"a.mp4": "media"})
	summary := domain.NewJobSummary(job.ID, 1)
	summary.RecordSuccess()

	p := NewPackager(fs, "/tmp")
	archivePath, err := p.Package(job, summary)
	require.Error(t, err)
	assert.Empty(t, archivePath)

	// the truncated archive must not be left behind
	exists, _ := afero.Exists(base, filepath.Join("/tmp", filepath.Base(job.Workspace)+".zip"))
	assert.False(t, exists)
}

func TestPackage_DefaultTempDir(t *testing.T) {
	p := NewPackager(afero.NewMemMapFs(), "")
	assert.NotEmpty(t, p.tempDir)
}
