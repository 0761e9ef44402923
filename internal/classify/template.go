package classify

import (
	"context"
	"image"
	"log/slog"
	"math"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
	"github.com/docgate/docgate/internal/ocr"
)

// Confidence at or above this mark is logged as a high-confidence win.
const highConfidenceMark = 0.8

// TemplateMatcher scores an input raster against every reference template
// and returns the best candidate when it clears the minimum confidence.
type TemplateMatcher struct {
	registry      *Registry
	minConfidence float64
	logger        *slog.Logger
}

func NewTemplateMatcher(registry *Registry, minConfidence float64, logger *slog.Logger) *TemplateMatcher {
	if minConfidence <= 0 {
		minConfidence = 0.40
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateMatcher{registry: registry, minConfidence: minConfidence, logger: logger}
}

// Match correlates the input against each reference in sorted name order.
// Ties keep the first reference encountered and are logged so the choice is
// observable. The boolean is false when nothing clears the threshold.
func (m *TemplateMatcher) Match(ctx context.Context, input image.Image) (entity.TypeCandidate, bool) {
	unknown := entity.TypeCandidate{Type: constants.Unknown, Source: entity.ClassifySourceNone}
	if input == nil || m.registry == nil || m.registry.Len() == 0 {
		return unknown, false
	}

	gray := ocr.ToGray(input)
	b := gray.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return unknown, false
	}
	inputVals := grayValues(gray)

	best := unknown
	bestName := ""
	for _, ref := range m.registry.References() {
		if err := ctx.Err(); err != nil {
			return unknown, false
		}
		score := correlate(inputVals, grayValues(ref.resizedTo(b.Dx(), b.Dy())))
		if score > best.Confidence {
			best = entity.TypeCandidate{
				Type:       ref.Type,
				Confidence: score,
				Source:     entity.ClassifySourceTemplate,
			}
			bestName = ref.Name
		} else if score > 0 && score == best.Confidence {
			m.logger.Info("classify.template.tie",
				"kept", bestName,
				"tied", ref.Name,
				"score", score)
		}
	}

	if best.Confidence < m.minConfidence {
		m.logger.Debug("classify.template.below_threshold",
			"best", bestName,
			"confidence", best.Confidence,
			"min", m.minConfidence)
		return unknown, false
	}

	m.logger.Info("classify.template.win",
		"template", bestName,
		"type", string(best.Type),
		"confidence", best.Confidence,
		"high_confidence", best.Confidence >= highConfidenceMark)
	return best, true
}

// correlate computes two normalized cross-correlation metrics over
// equal-length pixel vectors and keeps the higher, clamped to [0,1].
func correlate(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	score := math.Max(zeroMeanNCC(a, b), plainNCC(a, b))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// zeroMeanNCC subtracts each vector's mean before correlating, which makes
// the score invariant to uniform brightness shifts.
func zeroMeanNCC(a, b []float64) float64 {
	n := float64(len(a))
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA, meanB := sumA/n, sumB/n

	var num, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		num += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return num / math.Sqrt(varA*varB)
}

// plainNCC is the normalized dot product, sensitive to overall intensity.
func plainNCC(a, b []float64) float64 {
	var num, normA, normB float64
	for i := range a {
		num += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return num / math.Sqrt(normA*normB)
}

// grayValues flattens the gray image into one float vector, row-major.
func grayValues(g *image.Gray) []float64 {
	bounds := g.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	vals := make([]float64, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		offset := g.PixOffset(bounds.Min.X, y)
		row := g.Pix[offset : offset+w]
		for _, p := range row {
			vals = append(vals, float64(p))
		}
	}
	return vals
}
