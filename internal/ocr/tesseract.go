package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

type Config struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Pdfimages     string // binary name or absolute path; if empty -> "pdfimages"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	HeicConverter string // "heif-convert" | "magick" | "sips"

	TessdataDir string
	DPI         int // rasterization DPI for image-only pages, default 400
	MaxPages    int // 0 = no limit
	OEM         int // 3 = default engine; passed through verbatim when > 0

	EnableTSVConfidence bool

	ArtifactCacheDir string
}

// Engine drives the external OCR and PDF tools. All invocations go through
// the Runner so tests never exec real binaries.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	return NewEngineWithRunner(cfg, execRunner{}, logger)
}

func NewEngineWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Pdfimages == "" {
		cfg.Pdfimages = "pdfimages"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 400
	}
	if cfg.OEM == 0 {
		cfg.OEM = 3
	}
	if cfg.ArtifactCacheDir == "" {
		cfg.ArtifactCacheDir = "./tmp"
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

// OCRImage runs tesseract over one raster with an explicit segmentation mode
// and language hint. psm <= 0 leaves the mode to tesseract.
func (e *Engine) OCRImage(ctx context.Context, path string, psm int, lang string) (string, []string, error) {
	if lang == "" {
		lang = "eng"
	}
	args := []string{path, "stdout", "-l", lang}
	if psm > 0 {
		args = append(args, "--psm", strconv.Itoa(psm))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang> --psm <n> --oem <n>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

// TSVConfidence runs tesseract in TSV mode and returns mean word confidence
// in 0..1.
func (e *Engine) TSVConfidence(ctx context.Context, path string, psm int, lang string) (float32, []string, error) {
	if lang == "" {
		lang = "eng"
	}
	args := []string{path, "stdout", "-l", lang}
	if psm > 0 {
		args = append(args, "--psm", strconv.Itoa(psm))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	// TSV output
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract TSV: %w", err)
	}
	lines := strings.Split(string(out), "\n")
	// TSV columns: level page block par line word left top width height conf text.
	// conf is -1 for non-word rows.
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	mean := sum / n // 0..100
	return float32(mean / 100.0), nil, nil
}

// MaxPages exposes the configured page cap to the acquisition layer.
func (e *Engine) MaxPagesLimit() int {
	return e.cfg.MaxPages
}

// Preflight returns the configured external tools that are not on PATH. A
// missing tool only breaks the formats that need it, so callers usually warn
// rather than abort.
func (e *Engine) Preflight() []string {
	tools := []string{e.cfg.Pdftotext, e.cfg.Pdftoppm, e.cfg.Pdfimages, e.cfg.Tesseract}
	if e.cfg.HeicConverter != "" && e.cfg.HeicConverter != "none" {
		tools = append(tools, e.cfg.HeicConverter)
	}
	var missing []string
	for _, tool := range tools {
		if !BinaryAvailable(tool) {
			missing = append(missing, tool)
		}
	}
	return missing
}
