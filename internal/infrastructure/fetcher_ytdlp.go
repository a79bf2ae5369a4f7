package infrastructure

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yourusername/tiktok-bulk-go/internal/domain"
	"go.uber.org/zap"
)

// YTDLPFetcher implements domain.Fetcher by shelling out to yt-dlp.
// All retry behavior lives inside yt-dlp itself (--retries); one Fetch call
// is one fully-retried attempt at a single URL.
type YTDLPFetcher struct {
	config *domain.FetchConfig
	logger *zap.Logger
}

// NewYTDLPFetcher creates a new yt-dlp fetch adapter.
func NewYTDLPFetcher(config *domain.FetchConfig, logger *zap.Logger) *YTDLPFetcher {
	return &YTDLPFetcher{
		config: config,
		logger: logger,
	}
}

// Fetch downloads one URL into the workspace described by outputTemplate.
// Every failure comes back as a *domain.FetchError so the batch loop can
// record it and move on.
func (f *YTDLPFetcher) Fetch(ctx context.Context, url string, outputTemplate string) error {
	args := f.buildArgs(url, outputTemplate)

	cmd := exec.CommandContext(ctx, f.config.YTDLPBinary, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	f.logger.Debug("Running fetch command",
		zap.String("url", url),
		zap.String("cmd", shellQuoteCommand(f.config.YTDLPBinary, args...)))

	if err := cmd.Run(); err != nil {
		return &domain.FetchError{
			URL:    url,
			Reason: fetchFailureReason(output.String(), err),
		}
	}

	return nil
}

// buildArgs assembles the yt-dlp command line for one URL.
func (f *YTDLPFetcher) buildArgs(url, outputTemplate string) []string {
	args := []string{
		"--quiet",
		"--no-warnings",
		"--no-progress",
		"--retries", strconv.Itoa(f.config.Retries),
		"--format", f.config.Format,
		"--merge-output-format", f.config.MergeFormat,
		"--geo-bypass",
		"--no-playlist",
		"--ignore-no-formats-error",
		"--output", outputTemplate,
	}

	// Add cookie file if configured. A configured but missing file is a
	// warning, not an error: public videos still work without it.
	if f.config.CookiesFile != "" {
		if fileExists(f.config.CookiesFile) {
			args = append(args, "--cookies", f.config.CookiesFile)
		} else {
			f.logger.Warn("Cookies file not found, continuing without authentication; videos requiring login may fail",
				zap.String("path", f.config.CookiesFile))
		}
	}

	return append(args, url)
}

// fetchFailureReason condenses yt-dlp output into a single reason line.
// yt-dlp prints its error as the last non-empty output line; fall back to
// the exec error when there is no output at all.
func fetchFailureReason(output string, err error) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return err.Error()
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
