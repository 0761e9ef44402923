package acquire

import (
	"bytes"
	"context"
	"encoding/hex"
	"image"

	"github.com/disintegration/imaging"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
)

// Raster renders a document for template correlation. Images decode
// directly (HEIC through the converter), PDFs render their first page
// through the engine. Formats without a raster rendition return an error,
// which callers treat as "skip template matching", not as a failure.
func (a *Acquirer) Raster(ctx context.Context, raw *entity.RawDocument) (image.Image, func(), error) {
	noop := func() {}
	if raw == nil {
		return nil, noop, common.NewAcquisitionError("nil document", common.ErrInvalidInput)
	}

	switch raw.Format {
	case constants.FormatImage:
		if constants.IsHEICExt(raw.FileExt) {
			return a.rasterHEIC(ctx, raw)
		}
		if len(raw.Data) == 0 && raw.SourcePath != "" {
			img, err := imaging.Open(raw.SourcePath)
			if err != nil {
				return nil, noop, common.NewAcquisitionError("decode "+raw.Filename, err)
			}
			return img, noop, nil
		}
		img, err := imaging.Decode(bytes.NewReader(raw.Data))
		if err != nil {
			return nil, noop, common.NewAcquisitionError("decode "+raw.Filename, err)
		}
		return img, noop, nil
	case constants.FormatPage:
		return a.rasterPDF(ctx, raw)
	default:
		return nil, noop, common.NewAcquisitionError("no raster rendition for "+string(raw.Format), common.ErrInvalidInput)
	}
}

func (a *Acquirer) rasterHEIC(ctx context.Context, raw *entity.RawDocument) (image.Image, func(), error) {
	noop := func() {}
	if a.engine == nil {
		return nil, noop, common.NewAcquisitionError("no OCR engine configured", common.ErrInternal)
	}
	path, cleanup, err := materialize(raw)
	if err != nil {
		return nil, noop, err
	}
	defer cleanup()

	converted, convCleanup, _, err := a.engine.EnsureRaster(ctx, path, hex.EncodeToString(raw.ContentHash))
	defer convCleanup()
	if err != nil {
		return nil, noop, common.NewAcquisitionError("convert "+raw.Filename, err)
	}

	img, err := imaging.Open(converted)
	if err != nil {
		return nil, noop, common.NewAcquisitionError("decode "+raw.Filename, err)
	}
	return img, noop, nil
}

func (a *Acquirer) rasterPDF(ctx context.Context, raw *entity.RawDocument) (image.Image, func(), error) {
	noop := func() {}
	if a.engine == nil {
		return nil, noop, common.NewAcquisitionError("no OCR engine configured", common.ErrInternal)
	}
	path, cleanup, err := materialize(raw)
	if err != nil {
		return nil, noop, err
	}
	defer cleanup()

	page, renderCleanup, err := a.engine.RenderPDFPage(ctx, path, 1)
	if err != nil {
		return nil, noop, common.NewAcquisitionError("render "+raw.Filename, err)
	}
	defer renderCleanup()

	img, err := imaging.Open(page)
	if err != nil {
		return nil, noop, common.NewAcquisitionError("decode rendered page of "+raw.Filename, err)
	}
	return img, noop, nil
}
