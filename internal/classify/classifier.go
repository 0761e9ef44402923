package classify

import (
	"context"
	"image"
	"log/slog"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

// RasterFunc supplies a raster rendition of a document for template
// correlation. It returns an error when no raster can be produced, which is
// normal for plain-text input, never fatal.
type RasterFunc func(ctx context.Context, raw *entity.RawDocument) (image.Image, func(), error)

// Classifier arbitrates the strategies: match cache, template correlation,
// textual signatures, in that order. It always returns a candidate; the
// degraded outcome is type unknown, not an error.
type Classifier struct {
	Matcher *TemplateMatcher
	Scorer  *TextScorer
	Cache   *MatchCache
	Raster  RasterFunc
	Logger  *slog.Logger
}

func NewClassifier(matcher *TemplateMatcher, scorer *TextScorer, cache *MatchCache, raster RasterFunc, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{Matcher: matcher, Scorer: scorer, Cache: cache, Raster: raster, Logger: logger}
}

func (c *Classifier) Classify(ctx context.Context, raw *entity.RawDocument, text *entity.ExtractedText) entity.TypeCandidate {
	if cand, ok := c.fromCache(ctx, raw); ok {
		return cand
	}

	if cand, ok := c.fromTemplate(ctx, raw); ok {
		c.remember(ctx, raw, cand)
		return cand
	}

	var content string
	if text != nil {
		content = text.Text
	}
	cand := c.Scorer.Score(content)
	if cand.Type == constants.Unknown {
		c.Logger.Info("classify.unknown", "file", filenameOf(raw))
		return cand
	}
	c.Logger.Info("classify.textual.win",
		"file", filenameOf(raw),
		"type", string(cand.Type),
		"confidence", cand.Confidence)
	return cand
}

func (c *Classifier) fromCache(ctx context.Context, raw *entity.RawDocument) (entity.TypeCandidate, bool) {
	if c.Cache == nil || raw == nil || len(raw.ContentHash) == 0 {
		return entity.TypeCandidate{}, false
	}
	m, err := c.Cache.Lookup(ctx, raw.ContentHash)
	if err != nil {
		c.Logger.Warn("classify.cache.lookup_failed", "file", filenameOf(raw), "error", err)
		return entity.TypeCandidate{}, false
	}
	if m == nil {
		return entity.TypeCandidate{}, false
	}
	c.Logger.Info("classify.cache.hit",
		"file", filenameOf(raw),
		"type", string(m.DocType),
		"confidence", m.Confidence,
		"hits", m.Hits)
	return entity.TypeCandidate{
		Type:       m.DocType,
		Confidence: m.Confidence,
		Source:     entity.ClassifySourceCache,
	}, true
}

func (c *Classifier) fromTemplate(ctx context.Context, raw *entity.RawDocument) (entity.TypeCandidate, bool) {
	if c.Matcher == nil || c.Raster == nil || raw == nil {
		return entity.TypeCandidate{}, false
	}
	img, cleanup, err := c.Raster(ctx, raw)
	if err != nil {
		c.Logger.Debug("classify.raster.unavailable", "file", filenameOf(raw), "error", err)
		return entity.TypeCandidate{}, false
	}
	defer cleanup()
	return c.Matcher.Match(ctx, img)
}

// remember stores a template win in the match cache; failures only log.
func (c *Classifier) remember(ctx context.Context, raw *entity.RawDocument, cand entity.TypeCandidate) {
	if c.Cache == nil || raw == nil || len(raw.ContentHash) == 0 {
		return
	}
	if err := c.Cache.Store(ctx, raw.ContentHash, cand.Type, cand.Confidence); err != nil {
		c.Logger.Warn("classify.cache.store_failed", "file", filenameOf(raw), "error", err)
	}
}

func filenameOf(raw *entity.RawDocument) string {
	if raw == nil {
		return ""
	}
	return raw.Filename
}
