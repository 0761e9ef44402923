package acquire

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
	"github.com/docgate/docgate/internal/ocr"
)

// acquireImage OCRs a single raster. HEIC input is converted first, the
// raster is preprocessed, then a quick pass supplies a language sample that
// steers the full configuration sweep.
func (a *Acquirer) acquireImage(ctx context.Context, raw *entity.RawDocument) (*entity.ExtractedText, error) {
	path, cleanup, err := materialize(raw)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	hashHex := hex.EncodeToString(raw.ContentHash)

	raster, rasterCleanup, warnings, err := a.engine.EnsureRaster(ctx, path, hashHex)
	defer rasterCleanup()
	if err != nil {
		return nil, common.NewAcquisitionError("convert "+raw.Filename, err)
	}

	pre, preCleanup, err := a.engine.PreprocessFile(raster, hashHex)
	if err != nil {
		a.logger.Warn("acquire.image.preprocess_failed", "file", raw.Filename, "error", err)
		warnings = append(warnings, "preprocess failed, using original raster")
		pre = raster
		preCleanup = func() {}
	}
	defer preCleanup()

	var langSets []string
	if sample, _, err := a.engine.OCRImage(ctx, pre, 6, "eng"); err == nil && len(strings.TrimSpace(sample)) >= 20 {
		langSets = ocr.PrioritizeLanguages(sample)
	}

	outcome, err := a.engine.Sweep(ctx, pre, ocr.BuildSweep(langSets), ocr.LengthScore)
	if err != nil {
		return nil, common.NewAcquisitionError("OCR failed for "+raw.Filename, err)
	}
	warnings = append(warnings, outcome.Warnings...)

	a.logger.Debug("acquire.image.swept",
		"file", raw.Filename,
		"psm", outcome.Config.PSM,
		"lang", outcome.Config.Lang,
		"attempts", outcome.Attempts,
		"confidence", outcome.Confidence)

	return &entity.ExtractedText{
		Text:     outcome.Text,
		Method:   entity.MethodOCR,
		Pages:    1,
		Language: ocr.LanguageName(outcome.Text),
		Warnings: warnings,
	}, nil
}
