package ocr

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Preprocessing chain applied to every raster before OCR, in fixed order:
// grayscale, adaptive threshold, median denoise, contrast equalization.
const (
	thresholdBlock = 11
	thresholdDelta = 2
	claheTiles     = 8
	claheClipLimit = 2.0
)

// PreprocessFile decodes a raster, runs the chain, and writes the result as
// PNG. With a content hash available the artifact is cached under
// {ArtifactCacheDir}/{hash}_pre.png and reused; otherwise it lands in a temp
// dir. cleanup is always non-nil and safe to call; it is a no-op for cached
// artifacts, which persist across runs.
func (e *Engine) PreprocessFile(path string, hashHex string) (string, func(), error) {
	noop := func() {}

	if e.cfg.ArtifactCacheDir != "" && hashHex != "" {
		cached := filepath.Join(e.cfg.ArtifactCacheDir, hashHex+"_pre.png")
		if st, err := os.Stat(cached); err == nil && !st.IsDir() {
			e.logger.Debug("using cached preprocessed raster", "cache", cached)
			return cached, noop, nil
		}
	}

	src, err := imaging.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("decode %q: %w", path, err)
	}
	processed := PreprocessImage(src)

	if e.cfg.ArtifactCacheDir != "" && hashHex != "" {
		if err := os.MkdirAll(e.cfg.ArtifactCacheDir, 0o755); err != nil {
			return "", nil, err
		}
		cached := filepath.Join(e.cfg.ArtifactCacheDir, hashHex+"_pre.png")
		if err := imaging.Save(processed, cached); err != nil {
			return "", nil, fmt.Errorf("save preprocessed raster: %w", err)
		}
		return cached, noop, nil
	}

	tmpDir, err := os.MkdirTemp("", "dg-pre-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "pre.png")
	if err := imaging.Save(processed, out); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("save preprocessed raster: %w", err)
	}
	return out, cleanup, nil
}

// PreprocessImage runs the full chain on a decoded image.
func PreprocessImage(src image.Image) *image.Gray {
	g := ToGray(src)
	g = adaptiveThreshold(g, thresholdBlock, thresholdDelta)
	g = medianFilter(g)
	g = claheEqualize(g, claheTiles, claheClipLimit)
	return g
}

// ToGray converts any image to 8-bit grayscale.
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	// flatten exotic color models first; Grayscale keeps the bounds intact
	flat := imaging.Grayscale(src)
	b := flat.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(flat.At(x, y)).(color.Gray))
		}
	}
	return g
}

// adaptiveThreshold binarizes against the local mean over a block×block
// window, offset by delta. An integral image keeps it linear in pixels.
func adaptiveThreshold(g *image.Gray, block, delta int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return g
	}

	// integral[y][x] = sum of all pixels above and left of (x,y)
	integral := make([][]int64, h+1)
	for y := range integral {
		integral[y] = make([]int64, w+1)
	}
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(g.GrayAt(x, y).Y)
			integral[y+1][x+1] = integral[y][x+1] + rowSum
		}
	}

	half := block / 2
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w-1, x+half), min(h-1, y+half)
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[y1+1][x1+1] - integral[y0][x1+1] - integral[y1+1][x0] + integral[y0][x0]
			mean := sum / count

			if int64(g.GrayAt(x, y).Y) < mean-int64(delta) {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// medianFilter applies a 3×3 median, knocking out salt-and-pepper noise
// without smearing strokes the way a box blur would.
func medianFilter(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	var window [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					window[n] = g.GrayAt(nx, ny).Y
					n++
				}
			}
			// insertion sort; n is at most 9
			for i := 1; i < n; i++ {
				v := window[i]
				j := i - 1
				for j >= 0 && window[j] > v {
					window[j+1] = window[j]
					j--
				}
				window[j+1] = v
			}
			out.SetGray(x, y, color.Gray{Y: window[n/2]})
		}
	}
	return out
}

// claheEqualize runs contrast-limited adaptive histogram equalization over a
// tiles×tiles grid with bilinear interpolation between tile mappings.
func claheEqualize(g *image.Gray, tiles int, clipLimit float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < tiles || h < tiles {
		return g
	}

	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles

	// one 256-entry mapping per tile
	luts := make([][][]uint8, tiles)
	for ty := 0; ty < tiles; ty++ {
		luts[ty] = make([][]uint8, tiles)
		for tx := 0; tx < tiles; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)

			var hist [256]int
			pixels := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[g.GrayAt(x, y).Y]++
					pixels++
				}
			}
			if pixels == 0 {
				luts[ty][tx] = identityLUT()
				continue
			}

			// clip and redistribute
			limit := int(clipLimit * float64(pixels) / 256.0)
			if limit < 1 {
				limit = 1
			}
			excess := 0
			for i := 0; i < 256; i++ {
				if hist[i] > limit {
					excess += hist[i] - limit
					hist[i] = limit
				}
			}
			share := excess / 256
			for i := 0; i < 256; i++ {
				hist[i] += share
			}

			lut := make([]uint8, 256)
			cum := 0
			for i := 0; i < 256; i++ {
				cum += hist[i]
				lut[i] = uint8(min(255, cum*255/pixels))
			}
			luts[ty][tx] = lut
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// position in tile-center space
			fx := (float64(x) - float64(tileW)/2) / float64(tileW)
			fy := (float64(y) - float64(tileH)/2) / float64(tileH)
			tx0 := int(fx)
			ty0 := int(fy)
			if fx < 0 {
				tx0 = 0
			}
			if fy < 0 {
				ty0 = 0
			}
			tx0 = min(tx0, tiles-1)
			ty0 = min(ty0, tiles-1)
			tx1 := min(tx0+1, tiles-1)
			ty1 := min(ty0+1, tiles-1)

			wx := fx - float64(tx0)
			wy := fy - float64(ty0)
			if wx < 0 {
				wx = 0
			}
			if wy < 0 {
				wy = 0
			}
			if wx > 1 {
				wx = 1
			}
			if wy > 1 {
				wy = 1
			}

			v := g.GrayAt(x, y).Y
			top := (1-wx)*float64(luts[ty0][tx0][v]) + wx*float64(luts[ty0][tx1][v])
			bot := (1-wx)*float64(luts[ty1][tx0][v]) + wx*float64(luts[ty1][tx1][v])
			out.SetGray(x, y, color.Gray{Y: uint8((1-wy)*top + wy*bot)})
		}
	}
	return out
}

func identityLUT() []uint8 {
	lut := make([]uint8, 256)
	for i := range lut {
		lut[i] = uint8(i)
	}
	return lut
}
