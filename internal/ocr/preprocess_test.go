package ocr

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// documentRaster builds a white image with a black block, the minimal shape
// that survives thresholding recognizably.
func documentRaster(w, h int, block image.Rectangle) *image.NRGBA {
	img := imaging.New(w, h, color.White)
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func TestToGray(t *testing.T) {
	src := documentRaster(16, 16, image.Rect(4, 4, 8, 8))
	g := ToGray(src)
	assert.Equal(t, image.Rect(0, 0, 16, 16), g.Bounds())
	assert.Less(t, g.GrayAt(5, 5).Y, uint8(10))
	assert.Greater(t, g.GrayAt(12, 12).Y, uint8(245))

	// already-gray input passes through untouched
	same := image.NewGray(image.Rect(0, 0, 3, 3))
	assert.Same(t, same, ToGray(same))
}

func TestAdaptiveThreshold(t *testing.T) {
	t.Run("uniform image stays white", func(t *testing.T) {
		g := image.NewGray(image.Rect(0, 0, 16, 16))
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				g.SetGray(x, y, color.Gray{Y: 128})
			}
		}
		out := adaptiveThreshold(g, thresholdBlock, thresholdDelta)
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				require.Equal(t, uint8(255), out.GrayAt(x, y).Y)
			}
		}
	})

	t.Run("dark strokes binarize to black on white", func(t *testing.T) {
		g := ToGray(documentRaster(16, 16, image.Rect(6, 6, 10, 10)))
		out := adaptiveThreshold(g, thresholdBlock, thresholdDelta)
		assert.Equal(t, uint8(0), out.GrayAt(8, 8).Y)
		assert.Equal(t, uint8(255), out.GrayAt(1, 1).Y)
	})
}

func TestMedianFilterRemovesSaltNoise(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 7, 7))
	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			g.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	g.SetGray(3, 3, color.Gray{Y: 0})

	out := medianFilter(g)
	assert.Equal(t, uint8(255), out.GrayAt(3, 3).Y)
	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
}

func TestPreprocessImage(t *testing.T) {
	src := documentRaster(32, 32, image.Rect(10, 10, 22, 22))
	out := PreprocessImage(src)
	assert.Equal(t, image.Rect(0, 0, 32, 32), out.Bounds())
}

func TestPreprocessFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "page.png")
	require.NoError(t, imaging.Save(documentRaster(32, 32, image.Rect(8, 8, 24, 24)), srcPath))

	t.Run("uncached artifact lands in temp dir", func(t *testing.T) {
		e := NewEngineWithRunner(Config{}, &fakeRunner{}, quietLogger())
		e.cfg.ArtifactCacheDir = ""

		out, cleanup, err := e.PreprocessFile(srcPath, "")
		require.NoError(t, err)
		require.NotNil(t, cleanup)

		_, err = os.Stat(out)
		require.NoError(t, err)
		cleanup()
		_, err = os.Stat(out)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("hashed artifact is cached and reused", func(t *testing.T) {
		cacheDir := filepath.Join(dir, "cache")
		e := NewEngineWithRunner(Config{ArtifactCacheDir: cacheDir}, &fakeRunner{}, quietLogger())

		out, cleanup, err := e.PreprocessFile(srcPath, "cafe01")
		require.NoError(t, err)
		require.NotNil(t, cleanup)
		cleanup()

		assert.Equal(t, filepath.Join(cacheDir, "cafe01_pre.png"), out)
		_, err = os.Stat(out)
		require.NoError(t, err, "cached artifact must survive cleanup")

		again, cleanup2, err := e.PreprocessFile(srcPath, "cafe01")
		require.NoError(t, err)
		require.NotNil(t, cleanup2)
		cleanup2()
		assert.Equal(t, out, again)
	})

	t.Run("undecodable input", func(t *testing.T) {
		bad := filepath.Join(dir, "broken.png")
		require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))

		e := NewEngineWithRunner(Config{}, &fakeRunner{}, quietLogger())
		e.cfg.ArtifactCacheDir = ""

		_, _, err := e.PreprocessFile(bad, "")
		require.Error(t, err)
	})
}
