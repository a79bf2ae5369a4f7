package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/tiktok-bulk-go/api"
	"github.com/yourusername/tiktok-bulk-go/api/handlers"
	"github.com/yourusername/tiktok-bulk-go/internal/app"
	"github.com/yourusername/tiktok-bulk-go/internal/infrastructure"
	"github.com/yourusername/tiktok-bulk-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	// Optional .env for local development; real env vars take precedence
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
			os.Exit(1)
		}
	}

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting TikTok bulk downloader",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.Int("max_urls", config.Batch.MaxURLs),
		zap.Bool("cookies_configured", config.Fetch.CookiesFile != ""))

	fs := afero.NewOsFs()

	fetcher := infrastructure.NewYTDLPFetcher(&config.Fetch, log)
	packager := app.NewPackager(fs, config.Storage.TempDir)
	runner := app.NewBatchRunner(fs, fetcher, packager, &config.Storage, log)
	janitor := app.NewJanitor(fs, log)
	dispatcher := app.NewDispatcher(runner, &config.Workers, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal("Failed to start dispatcher", zap.Error(err))
	}

	validator := app.NewURLValidator(&config.Batch)
	downloadHandler := handlers.NewDownloadHandler(validator, dispatcher, janitor, fs, log)
	healthHandler := handlers.NewHealthHandler(dispatcher)

	router := api.SetupRouter(downloadHandler, healthHandler, log)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.Workers.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// waits for in-flight batches before exiting
	if err := dispatcher.Stop(); err != nil {
		log.Error("Error stopping dispatcher", zap.Error(err))
	}

	log.Info("Server exited")
}
