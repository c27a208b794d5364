package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "net/http/pprof"

	"github.com/medassist/medassist-api/catalog"
	"github.com/medassist/medassist-api/config"
	"github.com/medassist/medassist-api/data"
	"github.com/medassist/medassist-api/handlers"
	"github.com/medassist/medassist-api/identify"
	"github.com/medassist/medassist-api/logging"
	"github.com/medassist/medassist-api/ocr"
	"github.com/medassist/medassist-api/scheduler"
	"github.com/medassist/medassist-api/server"
	"github.com/medassist/medassist-api/speech"
	"github.com/medassist/medassist-api/validation"
)

func main() {
	// Read the env file from the working directory, falling back to the
	// executable directory so the service can run from anywhere
	if err := godotenv.Load(); err != nil {
		if ex, exErr := os.Executable(); exErr == nil {
			_ = os.Chdir(filepath.Dir(ex))
			_ = godotenv.Load()
		}
	}

	logging.InitLogger("logs")

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Data layer
	dataContainer := data.NewDataContainerWithHistoryLimit(cfg.HistoryLimit)
	dataContainer.SetServerStartTime(time.Now())

	loader := catalog.NewFileLoader(cfg.CatalogPath, cfg.DoctorsPath)

	sched := scheduler.NewScheduler(dataContainer, loader)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Identification pipeline
	engine := ocr.NewTesseractEngine(cfg.OCRLanguage)
	identifier := identify.NewIdentifier(engine, dataContainer)

	// Speech pipeline. Without an endpoint the selector always picks the
	// device engine and the speak endpoint reports cloud as unavailable.
	speechRuntime := speech.NewRuntime()
	var (
		selector *speech.Selector
		cloud    *speech.CloudClient
	)
	if cfg.TTSEndpoint != "" {
		selector = speech.NewSelector(cfg.TTSEndpoint, cfg.CloudLanguages(), speechRuntime)
		cloud = speech.NewCloudClient(cfg.TTSEndpoint,
			speech.WithProvider(cfg.TTSProvider),
			speech.WithVoice(cfg.TTSVoice),
			speech.WithAudioFormat(cfg.TTSAudioFormat),
			speech.WithPitch(cfg.TTSPitch),
			speech.WithSpeakingRate(cfg.TTSRate),
		)
	}

	validator := validation.NewDataValidator()
	handler := handlers.NewHTTPHandler(dataContainer, validator, identifier, selector, cloud, speechRuntime)

	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}
