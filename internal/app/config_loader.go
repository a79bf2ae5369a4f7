package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/tiktok-bulk-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	// Set up viper
	v := viper.New()
	v.SetConfigType("yaml")

	// If config path is provided, use it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.tiktok-bulk")
		v.AddConfigPath("/etc/tiktok-bulk")
	}

	// Seed viper with the defaults so every key is known. AutomaticEnv only
	// resolves keys viper has seen, so without this no TTBULK_* variable
	// would ever apply.
	setDefaults(v, config)

	// Read environment variables, e.g. TTBULK_FETCH_COOKIES_FILE
	v.SetEnvPrefix("TTBULK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// legacy environment variables from the Python deployment keep working
	if cookies := os.Getenv("TIKTOK_COOKIES_PATH"); cookies != "" {
		config.Fetch.CookiesFile = cookies
	}
	if format := os.Getenv("TIKTOK_VIDEO_FORMAT"); format != "" {
		config.Fetch.Format = format
	}

	// Expand environment variables in paths
	config.Fetch.CookiesFile = expandPath(config.Fetch.CookiesFile)
	config.Storage.TempDir = expandPath(config.Storage.TempDir)
	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}
	if config.Storage.TempDir == "" {
		config.Storage.TempDir = os.TempDir()
	}

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every config key with viper using the default values
func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)
	v.SetDefault("batch.max_urls", config.Batch.MaxURLs)
	v.SetDefault("batch.allowed_domains", config.Batch.AllowedDomains)
	v.SetDefault("fetch.ytdlp_binary", config.Fetch.YTDLPBinary)
	v.SetDefault("fetch.cookies_file", config.Fetch.CookiesFile)
	v.SetDefault("fetch.format", config.Fetch.Format)
	v.SetDefault("fetch.merge_format", config.Fetch.MergeFormat)
	v.SetDefault("fetch.retries", config.Fetch.Retries)
	v.SetDefault("storage.temp_dir", config.Storage.TempDir)
	v.SetDefault("storage.workspace_prefix", config.Storage.WorkspacePrefix)
	v.SetDefault("workers.pool_size", config.Workers.PoolSize)
	v.SetDefault("workers.shutdown_timeout", config.Workers.ShutdownTimeout)
	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Batch.MaxURLs < 1 {
		return fmt.Errorf("max batch size must be at least 1")
	}

	if len(config.Batch.AllowedDomains) == 0 {
		return fmt.Errorf("at least one allowed domain is required")
	}

	if config.Fetch.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Fetch.Retries < 0 {
		return fmt.Errorf("fetch retries cannot be negative")
	}

	if config.Workers.PoolSize < 1 {
		return fmt.Errorf("worker pool size must be at least 1")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
