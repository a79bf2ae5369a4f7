package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Storage StorageConfig `mapstructure:"storage"`
	Workers WorkerConfig  `mapstructure:"workers"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BatchConfig contains validation rules for submitted URL batches
type BatchConfig struct {
	MaxURLs        int      `mapstructure:"max_urls"`
	AllowedDomains []string `mapstructure:"allowed_domains"`
}

// FetchConfig contains the job-scoped options passed to the retrieval engine
type FetchConfig struct {
	YTDLPBinary string `mapstructure:"ytdlp_binary"`
	CookiesFile string `mapstructure:"cookies_file"`
	Format      string `mapstructure:"format"`
	MergeFormat string `mapstructure:"merge_format"`
	Retries     int    `mapstructure:"retries"`
}

// StorageConfig contains transient storage configuration
type StorageConfig struct {
	TempDir         string `mapstructure:"temp_dir"`
	WorkspacePrefix string `mapstructure:"workspace_prefix"`
}

// WorkerConfig contains the batch worker pool configuration
type WorkerConfig struct {
	PoolSize        int           `mapstructure:"pool_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Batch: BatchConfig{
			MaxURLs: 100,
			AllowedDomains: []string{
				"tiktok.com",
				"www.tiktok.com",
				"m.tiktok.com",
				"vm.tiktok.com",
			},
		},
		Fetch: FetchConfig{
			YTDLPBinary: "yt-dlp",
			CookiesFile: "",
			Format:      "bv*+ba/bestvideo+bestaudio/best",
			MergeFormat: "mp4",
			Retries:     3,
		},
		Storage: StorageConfig{
			TempDir:         "", // empty means os.TempDir()
			WorkspacePrefix: "tiktok_dl_",
		},
		Workers: WorkerConfig{
			PoolSize:        4,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
