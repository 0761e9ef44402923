package fields

import (
	"context"
	"log/slog"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

// LocalExtractor is the on-machine extraction path. Regex patterns run first
// and set the floor; the question-answering model fills the gaps. When the QA
// model is absent or down, the regex result stands alone.
type LocalExtractor struct {
	Regex  Extractor
	QA     Extractor
	Logger *slog.Logger
}

func NewLocalExtractor(regex Extractor, qa Extractor, logger *slog.Logger) *LocalExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalExtractor{Regex: regex, QA: qa, Logger: logger}
}

var _ Extractor = (*LocalExtractor)(nil)

func (e *LocalExtractor) Extract(ctx context.Context, text string, docType constants.DocumentType) (*entity.Fields, error) {
	base, err := e.Regex.Extract(ctx, text, docType)
	if err != nil {
		return nil, err
	}
	if e.QA == nil {
		return base, nil
	}

	extra, err := e.QA.Extract(ctx, text, docType)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		e.Logger.Warn("fields.local.qa_unavailable", slog.Any("error", err))
		return base, nil
	}

	merged := Merge(base, extra)
	e.Logger.Debug("fields.local.done",
		slog.String("doc_type", string(docType)),
		slog.Int("regex", base.Len()),
		slog.Int("qa", extra.Len()),
		slog.Int("merged", merged.Len()),
	)
	return merged, nil
}

// Merge folds secondary into primary. Fields new to primary are appended;
// on a name collision the higher-confidence value wins, keeping the
// original position.
func Merge(primary, secondary *entity.Fields) *entity.Fields {
	out := entity.NewFields()
	for _, fv := range primary.Values() {
		out.Set(fv.Name, fv.Value, fv.Confidence)
	}
	for _, fv := range secondary.Values() {
		if existing, ok := out.Get(fv.Name); ok && existing.Confidence >= fv.Confidence {
			continue
		}
		out.Set(fv.Name, fv.Value, fv.Confidence)
	}
	return out
}
