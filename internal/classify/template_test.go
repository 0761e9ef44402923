package classify

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// checkerboard returns an 8x8-cell alternating pattern.
func checkerboard(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/8+y/8)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// gradient ramps left to right.
func gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / w)})
		}
	}
	return img
}

// vsplit is black on the left half, white on the right; the pattern survives
// resizing, unlike a checkerboard.
func vsplit(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

func TestCorrelate(t *testing.T) {
	t.Run("identical images score one", func(t *testing.T) {
		vals := grayValues(checkerboard(64, 64))
		assert.InDelta(t, 1.0, correlate(vals, vals), 1e-9)
	})

	t.Run("black input scores zero", func(t *testing.T) {
		black := grayValues(image.NewGray(image.Rect(0, 0, 64, 64)))
		ref := grayValues(checkerboard(64, 64))
		assert.Equal(t, 0.0, correlate(black, ref))
	})

	t.Run("length mismatch scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, correlate([]float64{1, 2}, []float64{1, 2, 3}))
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		a := grayValues(gradient(32, 32))
		b := grayValues(checkerboard(32, 32))
		got := correlate(a, b)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	})
}

func TestTemplateMatcher(t *testing.T) {
	reg := NewRegistry(quietLogger())
	reg.Register("passport", vsplit(64, 64))
	reg.Register("resume", gradient(64, 64))

	m := NewTemplateMatcher(reg, 0.40, quietLogger())

	t.Run("exact raster wins with full confidence", func(t *testing.T) {
		cand, ok := m.Match(context.Background(), gradient(64, 64))
		require.True(t, ok)
		assert.Equal(t, constants.Resume, cand.Type)
		assert.Equal(t, entity.ClassifySourceTemplate, cand.Source)
		assert.InDelta(t, 1.0, cand.Confidence, 1e-6)
	})

	t.Run("different size still matches after resize", func(t *testing.T) {
		cand, ok := m.Match(context.Background(), vsplit(128, 128))
		require.True(t, ok)
		assert.Equal(t, constants.Passport, cand.Type)
	})

	t.Run("black input clears nothing", func(t *testing.T) {
		_, ok := m.Match(context.Background(), image.NewGray(image.Rect(0, 0, 64, 64)))
		assert.False(t, ok)
	})

	t.Run("empty registry never matches", func(t *testing.T) {
		empty := NewTemplateMatcher(NewRegistry(quietLogger()), 0.40, quietLogger())
		_, ok := empty.Match(context.Background(), gradient(64, 64))
		assert.False(t, ok)
	})
}

func TestRegistryLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imaging.Save(checkerboard(32, 32), filepath.Join(dir, "passport.png")))
	require.NoError(t, imaging.Save(gradient(32, 32), filepath.Join(dir, "custom_form.png")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a template"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.png"), []byte("skip"), 0o644))

	reg := NewRegistry(quietLogger())
	loaded, err := reg.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, 2, reg.Len())

	refs := reg.References()
	require.Len(t, refs, 2)
	assert.Equal(t, "custom_form", refs[0].Name)
	assert.Equal(t, constants.DocumentType("custom_form"), refs[0].Type)
	assert.Equal(t, "passport", refs[1].Name)
	assert.Equal(t, constants.Passport, refs[1].Type)

	_, err = reg.LoadDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestTypeForName(t *testing.T) {
	tests := []struct {
		name string
		want constants.DocumentType
	}{
		{"passport", constants.Passport},
		{"passport_2", constants.Passport},
		{"driving_license", constants.DrivingLicense},
		{"driving licence", constants.DrivingLicense},
		{"aadhaar_card", constants.NationalID},
		{"bank_statement-3", constants.BankStatement},
		{"lease_form", constants.DocumentType("lease_form")},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TypeForName(tc.name), "stem %q", tc.name)
	}
}
