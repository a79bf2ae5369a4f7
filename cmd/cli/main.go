package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yourusername/tiktok-bulk-go/internal/app"
	"github.com/yourusername/tiktok-bulk-go/internal/infrastructure"
	"github.com/yourusername/tiktok-bulk-go/pkg/logger"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "ttbulk",
		Short: "TikTok bulk downloader CLI",
		Long:  `A command-line interface for downloading batches of TikTok videos as a single archive.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(fetchCmd)

	submitCmd.Flags().StringP("file", "f", "", "Read URLs from a file, one per line")
	submitCmd.Flags().StringP("output", "o", "", "Output file for the archive (default: server-provided name)")
	fetchCmd.Flags().StringP("file", "f", "", "Read URLs from a file, one per line")
	fetchCmd.Flags().StringP("output", "o", "tiktok_videos.zip", "Output file for the archive")
	fetchCmd.Flags().StringP("config", "c", "", "Path to config file")
}

// collectURLs merges positional args with an optional --file list
func collectURLs(cmd *cobra.Command, args []string) ([]string, error) {
	urls := append([]string{}, args...)

	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL list: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				urls = append(urls, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read URL list: %w", err)
		}
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs given; pass them as arguments or via --file")
	}
	return urls, nil
}

var submitCmd = &cobra.Command{
	Use:   "submit [url...]",
	Short: "Submit a batch to a running server and save the archive",
	Run: func(cmd *cobra.Command, args []string) {
		urls, err := collectURLs(cmd, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ensureServer()

		payload, _ := json.Marshal(map[string][]string{"urls": urls})
		resp, err := http.Post(serverURL+"/api/download", "application/json", bytes.NewBuffer(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Error: %s\n", strings.TrimSpace(string(body)))
			os.Exit(1)
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = "tiktok_videos_" + resp.Header.Get("X-Job-Id") + ".zip"
		}

		out, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()

		if _, err := io.Copy(out, resp.Body); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Archive saved to %s\n", output)

		var counts struct {
			Total   int `json:"total"`
			Success int `json:"success"`
			Failed  int `json:"failed"`
		}
		if err := json.Unmarshal([]byte(resp.Header.Get("X-Download-Summary")), &counts); err == nil {
			fmt.Printf("Downloaded %d of %d videos (%d failed)\n", counts.Success, counts.Total, counts.Failed)
		}
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [url...]",
	Short: "Run a batch locally without a server and write the archive",
	Run: func(cmd *cobra.Command, args []string) {
		urls, err := collectURLs(cmd, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		configPath, _ := cmd.Flags().GetString("config")
		config, err := app.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		log, err := logger.New(logger.Config{
			Level:      "warn",
			Format:     "console",
			OutputPath: "stderr",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		validator := app.NewURLValidator(&config.Batch)
		validated, err := validator.Validate(urls)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fs := afero.NewOsFs()
		fetcher := infrastructure.NewYTDLPFetcher(&config.Fetch, log)
		packager := app.NewPackager(fs, config.Storage.TempDir)
		runner := app.NewBatchRunner(fs, fetcher, packager, &config.Storage, log)
		janitor := app.NewJanitor(fs, log)

		fmt.Printf("Fetching %d URLs...\n", len(validated))
		result, err := runner.Run(context.Background(), validated)
		if err != nil {
			// os.Exit skips defers, clean up explicitly
			if result != nil {
				janitor.Remove(result.Paths()...)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer janitor.Remove(result.Paths()...)

		output, _ := cmd.Flags().GetString("output")
		if err := copyFile(result.Archive, output); err != nil {
			janitor.Remove(result.Paths()...)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		summary := result.Summary
		fmt.Printf("Archive saved to %s\n", output)
		fmt.Printf("Downloaded %d of %d videos\n", summary.Success, summary.Total)

		if len(summary.Failed) > 0 {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "URL\tREASON")
			for _, f := range summary.Failed {
				fmt.Fprintf(w, "%s\t%s\n", f.URL, f.Reason)
			}
			w.Flush()
		}
	},
}

// copyFile copies src to dst; rename is not safe across filesystems
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
