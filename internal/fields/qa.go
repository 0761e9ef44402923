package fields

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
	"github.com/docgate/docgate/internal/llm"
)

// DefaultQABaseURL is where the extractive question-answering sidecar listens
// when nothing else is configured. The sidecar runs on this machine; the
// local path never crosses it.
const DefaultQABaseURL = "http://127.0.0.1:8750"

// minAnswerScore is the floor under which a model answer counts as "no
// answer" and is discarded.
const minAnswerScore = 0.1

// HTTPQAClient asks the sidecar one question at a time over JSON.
type HTTPQAClient struct {
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

func NewHTTPQAClient(baseURL string, logger *slog.Logger) *HTTPQAClient {
	if baseURL == "" {
		baseURL = DefaultQABaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPQAClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
		Logger:  logger,
	}
}

var _ QAModel = (*HTTPQAClient)(nil)

func (c *HTTPQAClient) Answer(ctx context.Context, question, passage string) (Answer, error) {
	body := map[string]string{
		"question": question,
		"context":  passage,
	}
	raw, _, err := llm.SendJSON(ctx, c.Client, c.BaseURL+"/answer", body, nil, c.Logger)
	if err != nil {
		return Answer{}, common.NewExtractionError("qa sidecar request failed", err)
	}

	var ans Answer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return Answer{}, common.NewExtractionError("qa sidecar returned unparseable body", err)
	}
	return ans, nil
}

// QAExtractor drives the per-type question lists against the QA model and
// maps answers back to field names. Questions that fail or score at or below
// MinScore contribute nothing; a partially answered set is still a result.
type QAExtractor struct {
	Model    QAModel
	MinScore float64
	Logger   *slog.Logger
}

func NewQAExtractor(model QAModel, logger *slog.Logger) *QAExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &QAExtractor{
		Model:    model,
		MinScore: minAnswerScore,
		Logger:   logger,
	}
}

var _ Extractor = (*QAExtractor)(nil)

func (e *QAExtractor) Extract(ctx context.Context, text string, docType constants.DocumentType) (*entity.Fields, error) {
	questions, ok := constants.Questions[docType]
	if !ok {
		questions = constants.GenericQuestions
	}

	out := entity.NewFields()
	for _, question := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ans, err := e.Model.Answer(ctx, question, text)
		if err != nil {
			e.Logger.Warn("fields.qa.answer_failed",
				slog.String("question", question),
				slog.Any("error", err),
			)
			continue
		}
		if ans.Confidence <= e.MinScore {
			e.Logger.Debug("fields.qa.low_score",
				slog.String("question", question),
				slog.Float64("score", ans.Confidence),
			)
			continue
		}

		value := CleanValue(ans.Answer)
		if value == "" || IsEmptyLike(value) {
			continue
		}
		out.Set(fieldForQuestion(question), value, ans.Confidence)
	}

	e.Logger.Debug("fields.qa.done",
		slog.String("doc_type", string(docType)),
		slog.Int("asked", len(questions)),
		slog.Int("answered", out.Len()),
	)
	return out, nil
}

// fieldForQuestion resolves the field a question's answer is stored under.
// Unmapped questions degrade to a slug of the question text itself.
func fieldForQuestion(question string) string {
	if field, ok := constants.QuestionField[question]; ok {
		return field
	}
	slug := strings.ToLower(question)
	slug = strings.ReplaceAll(slug, "what is the ", "")
	slug = strings.ReplaceAll(slug, "what is ", "")
	slug = strings.ReplaceAll(slug, "?", "")
	slug = strings.TrimSpace(slug)
	return strings.ReplaceAll(slug, " ", "_")
}
