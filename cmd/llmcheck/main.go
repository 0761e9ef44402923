package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/llm"
	"github.com/docgate/docgate/internal/llm/gemini"
)

// sampleInvoice is a small built-in document for smoke-testing the external
// service without touching real files.
const sampleInvoice = `ACME SUPPLIES INC.
123 Market Street, Springfield

INVOICE

Invoice No: INV-1001
Date: 2024-03-05

Item                 Qty    Price
Copy paper A4        10     $45.00
Toner cartridge       2     $89.90

Total Due: $224.80 USD
Payment due within 30 days.`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		file    = flag.String("file", "", "read the sample text from this file instead of the built-in invoice")
		docType = flag.String("type", "invoice", "document type hint for the prompt")
		genuine = flag.Bool("genuineness", false, "also run the genuineness check")
	)
	flag.Parse()

	_ = godotenv.Load()

	if os.Getenv("GEMINI_API_KEY") == "" {
		logger.Error("GEMINI_API_KEY env var is required")
		os.Exit(2)
	}

	text := sampleInvoice
	if *file != "" {
		buf, err := os.ReadFile(*file)
		if err != nil {
			logger.Error("reading sample file", "path", *file, "error", err)
			os.Exit(1)
		}
		text = string(buf)
	}

	dt, ok := constants.Canonicalize(*docType)
	if !ok {
		logger.Error("unknown document type", "arg", *docType)
		os.Exit(2)
	}

	model := getenv("GEMINI_MODEL", "gemini-2.0-flash")
	client := gemini.NewClient(gemini.Config{
		Model:   model,
		Timeout: 45 * time.Second,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := llm.ExtractRequest{
		Text:    text,
		DocType: dt,
	}

	start := time.Now()
	res, rawJSON, err := client.ExtractFields(ctx, req)
	if err != nil {
		logger.Error("extraction check: FAIL",
			"error", err, "elapsed_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("extraction check: OK",
		"model", model,
		"fields", len(res.Data),
		"confidence", res.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds())
	fmt.Println(string(rawJSON))

	if *genuine {
		start = time.Now()
		report, _, err := client.CheckGenuineness(ctx, req)
		if err != nil {
			logger.Error("genuineness check: FAIL",
				"error", err, "elapsed_ms", time.Since(start).Milliseconds())
			os.Exit(1)
		}
		logger.Info("genuineness check: OK",
			"is_genuine", report.IsGenuine,
			"confidence", report.ConfidenceScore,
			"checks", len(report.VerificationChecks),
			"elapsed_ms", time.Since(start).Milliseconds())
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
