package fields

import (
	"context"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

// Extractor turns extracted text into a named field mapping for one document
// type. Implementations must only return cleaned, non-empty values.
type Extractor interface {
	Extract(ctx context.Context, text string, docType constants.DocumentType) (*entity.Fields, error)
}

// QAModel is the local question-answering collaborator. Answers whose
// confidence is at or below the model floor are treated as "no answer" by
// callers.
type QAModel interface {
	Answer(ctx context.Context, question, passage string) (Answer, error)
}

// Answer is one QA model response.
type Answer struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"score"`
}
