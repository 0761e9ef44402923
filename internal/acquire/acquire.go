package acquire

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
	"github.com/docgate/docgate/internal/ocr"
)

// Config tunes text acquisition.
type Config struct {
	// MinPageTextChars is the per-page threshold below which directly
	// extracted text is considered inadequate and the page is re-rendered
	// for OCR.
	MinPageTextChars int
}

// Acquirer turns raw documents into text, choosing direct extraction or OCR
// per format and falling back between them per page.
type Acquirer struct {
	cfg    Config
	engine *ocr.Engine
	logger *slog.Logger
}

var _ TextExtractor = (*Acquirer)(nil)

func NewAcquirer(cfg Config, engine *ocr.Engine, logger *slog.Logger) *Acquirer {
	if cfg.MinPageTextChars <= 0 {
		cfg.MinPageTextChars = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{cfg: cfg, engine: engine, logger: logger}
}

// Acquire extracts text from the document using the strategy for its format.
// It returns an acquisition error when the format is unsupported or when all
// strategies produced empty text.
func (a *Acquirer) Acquire(ctx context.Context, raw *entity.RawDocument) (*entity.ExtractedText, error) {
	if raw == nil {
		return nil, common.NewAcquisitionError("nil document", common.ErrInvalidInput)
	}
	start := time.Now()

	var (
		out *entity.ExtractedText
		err error
	)
	switch raw.Format {
	case constants.FormatText:
		out, err = a.acquirePlainText(ctx, raw)
	case constants.FormatStructured:
		out, err = a.acquireStructured(ctx, raw)
	case constants.FormatPage:
		out, err = a.acquirePDF(ctx, raw)
	case constants.FormatImage:
		out, err = a.acquireImage(ctx, raw)
	default:
		return nil, common.NewUnsupportedFormatError(raw.FileExt)
	}
	if err != nil {
		a.logger.Error("acquire.failed",
			"file", raw.Filename,
			"format", string(raw.Format),
			"error", err)
		return nil, err
	}

	out.Text = ocr.Normalize(out.Text)
	if strings.TrimSpace(out.Text) == "" {
		a.logger.Warn("acquire.empty", "file", raw.Filename, "method", string(out.Method))
		return nil, common.NewAcquisitionError("no text could be extracted from "+raw.Filename, common.ErrEmptyText)
	}
	if out.Pages == 0 {
		out.Pages = 1
	}
	out.Duration = time.Since(start)

	a.logger.Info("acquire.done",
		"file", raw.Filename,
		"method", string(out.Method),
		"pages", out.Pages,
		"chars", len(out.Text),
		"duration_ms", out.Duration.Milliseconds())
	return out, nil
}

// adequate reports whether directly extracted page text clears the
// re-render threshold.
func (a *Acquirer) adequate(pageText string) bool {
	return len(strings.TrimSpace(pageText)) >= a.cfg.MinPageTextChars
}

func (a *Acquirer) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAcquisitionError("read "+path, err)
	}
	return data, nil
}

// acquireStructured handles office formats that carry their text in a
// machine-readable container.
func (a *Acquirer) acquireStructured(ctx context.Context, raw *entity.RawDocument) (*entity.ExtractedText, error) {
	switch raw.FileExt {
	case "docx":
		return a.acquireDOCX(ctx, raw)
	case "xlsx":
		return a.acquireXLSX(ctx, raw)
	default:
		return nil, common.NewUnsupportedFormatError(raw.FileExt)
	}
}
