package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"resumai/internal/analytics"
	"resumai/internal/auth"
	"resumai/internal/common"
	"resumai/internal/export"
	"resumai/internal/extract"
	"resumai/internal/llm/openai"
	"resumai/internal/pipeline"
	"resumai/internal/repository"
	"resumai/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)

	if err := repository.Migrate(ctx, db, logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(db, logger)
	resumes := repository.NewResumeRepository(db, logger)
	analyses := repository.NewAnalysisRepository(db, logger)
	matches := repository.NewJobMatchRepository(db, logger)
	events := repository.NewAnalyticsRepository(db, logger)

	renderer := extract.NewPopplerRenderer(cfg.OCR.Pdftoppm, cfg.OCR.DPI, cfg.OCR.MaxPages)
	ocr := extract.NewTesseractEngine(cfg.OCR.Tesseract, cfg.OCR.TesseractLang)
	extractor := extract.NewExtractor(renderer, ocr, logger)

	analyzer := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	tracker := analytics.NewService(resumes, analyses, matches, events, logger)
	processor := pipeline.NewProcessor(extractor, analyzer, resumes, analyses, matches, tracker,
		pipeline.Options{UploadDir: cfg.Storage.UploadDir, MaxFileSize: cfg.Storage.MaxFileSize}, logger)

	verifier := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	sessions := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	authService := auth.NewService(verifier, sessions, users, logger)

	exporter := export.NewService(resumes, analyses, logger)

	srv := server.New(cfg.Server, cfg.Storage.MaxFileSize, server.Deps{
		Auth:      authService,
		Processor: processor,
		Resumes:   resumes,
		Analyses:  analyses,
		Matches:   matches,
		Analytics: tracker,
		Export:    exporter,
		DB:        db,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down...")
		if err := srv.Shutdown(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
	fmt.Println("stopped.")
}
