package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/docgate/docgate/internal/acquire"
	"github.com/docgate/docgate/internal/batch"
	"github.com/docgate/docgate/internal/classify"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/fields"
	"github.com/docgate/docgate/internal/ingest"
	"github.com/docgate/docgate/internal/llm"
	"github.com/docgate/docgate/internal/llm/gemini"
	"github.com/docgate/docgate/internal/ocr"
	"github.com/docgate/docgate/internal/pipeline"
	"github.com/docgate/docgate/internal/privacy"
	"github.com/docgate/docgate/internal/verify"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir        = flag.String("dir", "", "directory to process documents from (required)")
		out        = flag.String("out", "", "report output directory (defaults to BATCH_OUTPUT_DIR)")
		workers    = flag.Int("workers", 0, "worker count (defaults to BATCH_WORKERS)")
		watch      = flag.Bool("watch", false, "keep watching the directory for new files after the initial scan")
		debounce   = flag.Duration("debounce", 2*time.Second, "settle window for watched file events")
		keepHidden = flag.Bool("keep-hidden", false, "do not skip dotfiles and dot-directories")
		forceLocal = flag.Bool("force-local", false, "never send document content to the external service")
		strict     = flag.Bool("strict", false, "use the strict verification threshold")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(2)
	}

	// Flags override the environment so one config path serves both.
	if *forceLocal {
		_ = os.Setenv("FORCE_LOCAL", "true")
	}
	if *strict {
		_ = os.Setenv("STRICT_VERIFICATION", "true")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *out == "" {
		*out = cfg.Batch.OutputDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	proc := buildProcessor(cfg, logger)

	// Scan the directory and load every matching document
	scanner := ingest.NewScanner(logger)
	scanner.SkipHidden = !*keepHidden

	logger.Info("scanning directory", "dir", *dir)
	scanResults, stats, err := scanner.ScanDirectory(ctx, *dir)
	if err != nil {
		logger.Error("directory scan failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	queue := batch.NewQueue(proc, logger,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithQueueSize(cfg.Batch.QueueSize),
		batch.WithDocumentTimeout(cfg.Batch.ProcessTimeout))

	seen := make(map[string]bool, len(scanResults))
	enqueued := 0
	for _, sr := range scanResults {
		if sr.HashHex != "" {
			seen[sr.HashHex] = true
		}
		if sr.Doc == nil {
			continue
		}
		if err := queue.Enqueue(ctx, batch.Job{Doc: sr.Doc}); err != nil {
			logger.Error("enqueue failed", "file", sr.Path, "error", err)
			break
		}
		enqueued++
	}

	// In watch mode, keep feeding the queue until interrupted. Content
	// hashes seen during the scan suppress re-announced duplicates.
	if *watch {
		events, watchErrs, err := ingest.Watch(ctx, ingest.WatchConfig{
			Roots:    []string{*dir},
			Debounce: *debounce,
		}, logger)
		if err != nil {
			logger.Error("starting watch", "dir", *dir, "error", err)
			os.Exit(1)
		}
		logger.Info("watching for new documents", "dir", *dir, "debounce", *debounce)

	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case path, ok := <-events:
				if !ok {
					break loop
				}
				if !*keepHidden && ingest.IsHidden(path) {
					continue
				}
				raw, err := acquire.NewRawDocument(path)
				if err != nil {
					logger.Warn("loading watched file", "path", path, "error", err)
					continue
				}
				hash := hex.EncodeToString(raw.ContentHash)
				if seen[hash] {
					logger.Info("watched file already seen", "path", path)
					continue
				}
				seen[hash] = true
				if err := queue.Enqueue(ctx, batch.Job{Doc: raw}); err != nil {
					logger.Error("enqueue failed", "file", path, "error", err)
					break loop
				}
				enqueued++
			case werr, ok := <-watchErrs:
				if ok && werr != nil {
					logger.Error("watch error", "error", werr)
				}
			}
		}
	}

	// Drain the queue on a fresh context so an interrupt that ended the
	// watch loop does not abort in-flight documents.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	queue.Shutdown(shutdownCtx)

	report := batch.BuildReport(queue.Results())
	successful, skipped, failed := report.Counts()

	written, err := report.Save(*out, time.Now())
	if err != nil {
		logger.Error("writing report", "dir", *out, "error", err)
		os.Exit(1)
	}

	// Log summary
	logger.Info("batch processing complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped_files", stats.Skipped,
		"deduplicated", stats.Deduplicated,
		"enqueued", enqueued,
		"successful", successful,
		"skipped", skipped,
		"failed", failed,
		"output_dir", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents processed: %d\n", successful+skipped+failed)
	fmt.Printf("- Successful: %d\n", successful)
	fmt.Printf("- Skipped: %d\n", skipped)
	fmt.Printf("- Failed: %d\n", failed)
	for _, p := range written {
		fmt.Printf("- Output: %s\n", p)
	}
	if failed > 0 {
		summary := report.ErrorSummary()
		reasons := make([]string, 0, len(summary))
		for reason := range summary {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		fmt.Printf("Failure reasons:\n")
		for _, reason := range reasons {
			fmt.Printf("- %s: %d\n", reason, summary[reason])
		}
	}
}

// buildProcessor wires the full pipeline from configuration. The external
// service client is attached only when an API key is present; otherwise every
// document stays on the local path.
func buildProcessor(cfg *common.Config, logger *slog.Logger) *pipeline.Processor {
	// Setup text acquisition
	engine := ocr.NewEngine(ocr.Config{
		HeicConverter:    cfg.OCR.HeicConverter,
		TessdataDir:      cfg.OCR.TessdataDir,
		DPI:              cfg.OCR.RenderDPI,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, logger)
	if missing := engine.Preflight(); len(missing) > 0 {
		logger.Warn("external tools missing, dependent formats will fail", "tools", missing)
	}
	acquirer := acquire.NewAcquirer(acquire.Config{
		MinPageTextChars: cfg.Pipeline.MinPageTextChars,
	}, engine, logger)

	// Setup classification. A missing template directory only disables the
	// visual strategy; text scoring still runs.
	registry := classify.NewRegistry(logger)
	if n, err := registry.LoadDir(cfg.Templates.Dir); err != nil {
		logger.Warn("reference templates unavailable", "dir", cfg.Templates.Dir, "error", err)
	} else {
		logger.Info("reference templates loaded", "dir", cfg.Templates.Dir, "count", n)
	}
	var cache *classify.MatchCache
	if c, err := classify.OpenMatchCache(cfg.Templates.CachePath, logger); err != nil {
		logger.Warn("match cache unavailable", "path", cfg.Templates.CachePath, "error", err)
	} else {
		cache = c
	}
	matcher := classify.NewTemplateMatcher(registry, cfg.Pipeline.MinTemplateConfidence, logger)
	classifier := classify.NewClassifier(matcher, classify.NewTextScorer(0, logger), cache, acquirer.Raster, logger)

	detector, err := privacy.NewDefaultDetector(logger)
	if err != nil {
		logger.Error("building confidential detector", "error", err)
		os.Exit(1)
	}

	// Setup local extraction, with the QA sidecar when enabled
	var qa fields.Extractor
	if cfg.QA.Enabled {
		qaClient := fields.NewHTTPQAClient(cfg.QA.BaseURL, logger)
		qaClient.Client.Timeout = cfg.QA.Timeout
		qax := fields.NewQAExtractor(qaClient, logger)
		if cfg.QA.MinAnswerConfidence > 0 {
			qax.MinScore = float64(cfg.QA.MinAnswerConfidence)
		}
		qa = qax
		logger.Info("qa sidecar enabled", "base_url", cfg.QA.BaseURL)
	}
	local := fields.NewLocalExtractor(fields.NewRegexExtractor(logger), qa, logger)

	// Setup external service client (graceful if missing)
	var external llm.FieldExtractor
	var checker llm.GenuinenessChecker
	if cfg.LLM.APIKey != "" {
		client := gemini.NewClient(gemini.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: float64(cfg.LLM.Temperature),
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		external = client
		checker = client
		logger.Info("external service client initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("GEMINI_API_KEY not configured, external routing disabled")
	}

	verifier := verify.NewVerifier(logger)
	verifier.Strict = cfg.Pipeline.StrictVerification
	verifier.Threshold = cfg.Pipeline.VerificationThreshold

	return pipeline.NewProcessor(logger, pipeline.Config{
		ForceLocal: cfg.Pipeline.ForceLocal,
		ModelName:  cfg.LLM.Model,
	}, acquirer, classifier, detector, local, external, checker, verifier, cache)
}
