package acquire

import (
	"context"

	"github.com/docgate/docgate/internal/entity"
)

// TextExtractor is the first stage of the pipeline: raw document -> text.
// Implementations fail with an acquisition error when the format is
// unsupported or every fallback produced empty text.
type TextExtractor interface {
	Acquire(ctx context.Context, raw *entity.RawDocument) (*entity.ExtractedText, error)
}
