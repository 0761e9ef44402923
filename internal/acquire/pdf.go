package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
	"github.com/docgate/docgate/internal/ocr"
)

// Embedded images must yield more than this many characters to be worth
// appending to a page that already has direct text.
const minEmbeddedImageChars = 10

// acquirePDF extracts text page by page. Pages whose direct text clears the
// threshold keep it and only have their embedded images OCRed; weak pages are
// re-rendered and swept, and the longer of direct vs OCR text wins. When the
// text layer is absent entirely the whole document is rendered and OCRed.
func (a *Acquirer) acquirePDF(ctx context.Context, raw *entity.RawDocument) (*entity.ExtractedText, error) {
	path, cleanup, err := materialize(raw)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	direct, pages, warnings, err := a.engine.PDFText(ctx, path)
	if err != nil {
		return a.ocrWholePDF(ctx, raw, path, err)
	}

	pageTexts := strings.Split(direct, "\f")
	if len(pageTexts) < pages {
		pages = len(pageTexts)
	}

	// Language hints come from whatever direct text the document has.
	var langSets []string
	if len(strings.TrimSpace(direct)) >= 20 {
		langSets = ocr.PrioritizeLanguages(direct)
	}

	var (
		directPages  int
		ocrPages     int
		ocrPagesLeft = a.engine.MaxPagesLimit() // 0 = no limit
		ocrLimited   = a.engine.MaxPagesLimit() > 0
	)
	for i := 0; i < pages; i++ {
		pageNo := i + 1
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if a.adequate(pageTexts[i]) {
			directPages++
			if extra := a.embeddedImageText(ctx, path, pageNo); extra != "" {
				pageTexts[i] = pageTexts[i] + "\n" + extra
			}
			continue
		}

		if ocrLimited {
			if ocrPagesLeft == 0 {
				warnings = append(warnings, fmt.Sprintf("page %d below text threshold but OCR page limit reached", pageNo))
				directPages++
				continue
			}
			ocrPagesLeft--
		}

		outcome, err := a.ocrPDFPage(ctx, raw, path, pageNo, langSets)
		if err != nil {
			a.logger.Warn("acquire.pdf.page_ocr_failed", "file", raw.Filename, "page", pageNo, "error", err)
			warnings = append(warnings, fmt.Sprintf("page %d OCR failed: %v", pageNo, err))
			directPages++
			continue
		}
		warnings = append(warnings, outcome.Warnings...)

		// Keep whichever version says more.
		if len(strings.TrimSpace(outcome.Text)) > len(strings.TrimSpace(pageTexts[i])) {
			pageTexts[i] = outcome.Text
			ocrPages++
			a.logger.Debug("acquire.pdf.page_upgraded",
				"file", raw.Filename,
				"page", pageNo,
				"psm", outcome.Config.PSM,
				"lang", outcome.Config.Lang)
		} else {
			directPages++
		}
	}

	method := entity.MethodDirect
	switch {
	case ocrPages > 0 && directPages > 0:
		method = entity.MethodMixed
	case ocrPages > 0:
		method = entity.MethodOCR
	}

	text := strings.Join(pageTexts, "\n\f\n")
	return &entity.ExtractedText{
		Text:     text,
		Method:   method,
		Pages:    pages,
		Language: ocr.LanguageName(text),
		Warnings: warnings,
	}, nil
}

// embeddedImageText OCRs the raster images embedded in one page with a single
// quick configuration and returns their combined text, or "" when nothing
// substantial was found.
func (a *Acquirer) embeddedImageText(ctx context.Context, path string, page int) string {
	images, cleanup, err := a.engine.ExtractPDFImages(ctx, path, page)
	if err != nil || len(images) == 0 {
		return ""
	}
	defer cleanup()

	var parts []string
	for _, img := range images {
		txt, _, err := a.engine.OCRImage(ctx, img, 6, "eng")
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(txt); len(trimmed) > minEmbeddedImageChars {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n")
}

// ocrPDFPage renders one page at OCR resolution, preprocesses the raster and
// runs the full configuration sweep over it.
func (a *Acquirer) ocrPDFPage(ctx context.Context, raw *entity.RawDocument, path string, page int, langSets []string) (ocr.SweepOutcome, error) {
	png, renderCleanup, err := a.engine.RenderPDFPage(ctx, path, page)
	if err != nil {
		return ocr.SweepOutcome{}, err
	}
	defer renderCleanup()

	hashHex := fmt.Sprintf("%x_p%d", raw.ContentHash, page)
	pre, preCleanup, err := a.engine.PreprocessFile(png, hashHex)
	if err != nil {
		pre = png
		preCleanup = func() {}
	}
	defer preCleanup()

	return a.engine.Sweep(ctx, pre, ocr.BuildSweep(langSets), ocr.LengthScore)
}

// ocrWholePDF is the fallback when the text layer cannot be read at all:
// render every page and OCR each one.
func (a *Acquirer) ocrWholePDF(ctx context.Context, raw *entity.RawDocument, path string, cause error) (*entity.ExtractedText, error) {
	a.logger.Warn("acquire.pdf.direct_failed", "file", raw.Filename, "error", cause)

	pngs, cleanup, err := a.engine.RenderPDFPages(ctx, path)
	if err != nil {
		return nil, common.NewAcquisitionError("pdf text and render both failed for "+raw.Filename, errors.Join(cause, err))
	}
	defer cleanup()

	var (
		parts    []string
		warnings []string
	)
	for i, png := range pngs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hashHex := fmt.Sprintf("%x_r%d", raw.ContentHash, i+1)
		pre, preCleanup, err := a.engine.PreprocessFile(png, hashHex)
		if err != nil {
			pre = png
			preCleanup = func() {}
		}
		outcome, err := a.engine.Sweep(ctx, pre, ocr.BuildSweep(nil), ocr.LengthScore)
		preCleanup()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d OCR failed: %v", i+1, err))
			continue
		}
		parts = append(parts, outcome.Text)
		warnings = append(warnings, outcome.Warnings...)
	}
	if len(parts) == 0 {
		return nil, common.NewAcquisitionError("OCR produced no text for "+raw.Filename, common.ErrEmptyText)
	}

	text := strings.Join(parts, "\n\f\n")
	return &entity.ExtractedText{
		Text:     text,
		Method:   entity.MethodOCR,
		Pages:    len(pngs),
		Language: ocr.LanguageName(text),
		Warnings: warnings,
	}, nil
}
