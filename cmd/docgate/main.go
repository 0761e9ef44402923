package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/acquire"
	"github.com/docgate/docgate/internal/classify"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/fields"
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
		forceLocal = flag.Bool("force-local", false, "never send document content to the external service")
		strict     = flag.Bool("strict", false, "use the strict verification threshold")
		templates  = flag.String("templates", "", "reference template directory (overrides TEMPLATE_DIR)")
		out        = flag.String("out", "", "write the result JSON to this path instead of stdout")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("usage: docgate [flags] <file>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	// Flags override the environment so one config path serves both.
	if *forceLocal {
		_ = os.Setenv("FORCE_LOCAL", "true")
	}
	if *strict {
		_ = os.Setenv("STRICT_VERIFICATION", "true")
	}
	if *templates != "" {
		_ = os.Setenv("TEMPLATE_DIR", *templates)
	}

	// Setup logger. The result JSON goes to stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	proc := buildProcessor(cfg, logger)

	raw, err := acquire.NewRawDocument(path)
	if err != nil {
		logger.Error("loading document", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx, cancel := context.WithTimeout(ctx, cfg.Batch.ProcessTimeout)
	defer cancel()

	res := proc.Process(runCtx, raw)

	buf, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("encoding result", "error", err)
		os.Exit(1)
	}
	if *out != "" {
		if err := os.WriteFile(*out, buf, 0644); err != nil {
			logger.Error("writing result file", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("result written", "path", *out)
	} else {
		fmt.Println(string(buf))
	}

	logger.Info("document processed",
		"file", raw.Filename,
		"status", res.Status,
		"doc_type", res.DocumentType,
		"confidence", res.Confidence,
		"backend", res.Meta.Backend,
		"elapsed_ms", res.Meta.ElapsedMS)

	switch res.Status {
	case constants.StatusSuccess:
	case constants.StatusRejected:
		os.Exit(3)
	default:
		os.Exit(1)
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
