package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docgate/docgate/constants"
)

// EnsureRaster hands back a path tesseract can read. HEIC/HEIF inputs are
// converted to PNG first, cached by content hash when one is known. cleanup
// is always non-nil and safe to call.
func (e *Engine) EnsureRaster(ctx context.Context, path string, hashHex string) (string, func(), []string, error) {
	noop := func() {}
	if !constants.IsHEICExt(filepath.Ext(path)) {
		return path, noop, nil, nil
	}

	if e.cfg.ArtifactCacheDir != "" && hashHex != "" {
		cached := filepath.Join(e.cfg.ArtifactCacheDir, hashHex+".png")
		if st, err := os.Stat(cached); err == nil && !st.IsDir() {
			e.logger.Debug("using cached heic->png", "cache", cached)
			return cached, noop, nil, nil
		}
	}

	out, warns, cleanup, err := e.convertHEICtoPNG(ctx, path)
	if cleanup == nil {
		cleanup = noop
	}
	if err != nil {
		return "", cleanup, warns, err
	}

	// persist into the artifact cache so repeat runs skip the converter
	if e.cfg.ArtifactCacheDir != "" && hashHex != "" {
		if mkErr := os.MkdirAll(e.cfg.ArtifactCacheDir, 0o755); mkErr == nil {
			cached := filepath.Join(e.cfg.ArtifactCacheDir, hashHex+".png")
			if renameErr := os.Rename(out, cached); renameErr == nil {
				cleanup()
				return cached, noop, warns, nil
			}
		}
	}
	return out, cleanup, warns, nil
}

// convertHEICtoPNG shells out to the configured converter:
// "heif-convert" | "magick" | "sips".
func (e *Engine) convertHEICtoPNG(ctx context.Context, in string) (string, []string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "dg-heic-*")
	if err != nil {
		return "", nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "page.png")

	switch e.cfg.HeicConverter {
	case "heif-convert":
		if _, errb, err2 := e.runner.Run(ctx, "heif-convert", in, out); err2 != nil {
			return "", []string{string(errb)}, cleanup, fmt.Errorf("heif-convert failed: %w", err2)
		}
	case "magick":
		if _, errb, err2 := e.runner.Run(ctx, "magick", in, out); err2 != nil {
			return "", []string{string(errb)}, cleanup, fmt.Errorf("magick convert failed: %w", err2)
		}
	case "sips":
		if _, errb, err2 := e.runner.Run(ctx, "sips", "-s", "format", "png", in, "--out", out); err2 != nil {
			return "", []string{string(errb)}, cleanup, fmt.Errorf("sips convert failed: %w", err2)
		}
	default:
		return "", nil, cleanup, fmt.Errorf("HEIC not supported: set ocr.Config.HeicConverter to one of: heif-convert | magick | sips")
	}

	if _, statErr := os.Stat(out); statErr != nil {
		return "", nil, cleanup, fmt.Errorf("HEIC conversion produced no output: %v", statErr)
	}
	return out, nil, cleanup, nil
}
