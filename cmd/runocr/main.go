package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/docgate/docgate/internal/acquire"
	"github.com/docgate/docgate/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	_ = godotenv.Load()

	engine := ocr.NewEngine(ocr.Config{
		HeicConverter:       getenv("HEIC_CONVERTER", "magick"),
		TessdataDir:         os.Getenv("TESSDATA_PREFIX"),
		ArtifactCacheDir:    getenv("ARTIFACT_CACHE_DIR", "./tmp"),
		EnableTSVConfidence: true,
	}, logger)
	acquirer := acquire.NewAcquirer(acquire.Config{}, engine, logger)

	raw, err := acquire.NewRawDocument(path)
	if err != nil {
		logger.Error("loading document", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	text, err := acquirer.Acquire(ctx, raw)
	dur := time.Since(start)

	if err != nil {
		logger.Error("text acquisition failed",
			"file", raw.Filename, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text acquisition OK",
		"file", raw.Filename,
		"method", text.Method,
		"pages", text.Pages,
		"language", text.Language,
		"bytes", len(text.Text),
		"warnings", len(text.Warnings),
		"duration_ms", dur.Milliseconds(),
	)

	fmt.Println(text.Text)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
