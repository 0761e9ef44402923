package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/llm"
)

// errSafetyBlocked marks a refusal by the safety filters, as opposed to a
// transport or decoding failure. The caller gets one retry with softened
// wording before giving up.
var errSafetyBlocked = errors.New("gemini: blocked by safety filters")

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type normalizeFunc func(raw []byte, logger *slog.Logger) ([]byte, []string, error)
type repairFunc func(doc []byte) ([]byte, []string, error)

// ExtractFields implements llm.FieldExtractor over the generateContent REST
// endpoint.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.ExtractResult, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()
	log := c.logFor(ctx)

	log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"doc_type", req.DocType,
		"text_len", len(req.Text),
		"filename_hint", req.FilenameHint,
	)

	schema := llm.BuildExtractionJSONSchema()
	prompt := llm.BuildExtractionPrompt(req)

	doc, err := c.runPrompt(ctx, rid, prompt, schema, llm.NormalizeExtractionJSON, llm.RepairExtractionEnvelope)
	if err != nil {
		log.Error("llm.extract.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, doc, err
	}

	var out llm.ExtractResult
	if err := json.Unmarshal(doc, &out); err != nil {
		log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, doc, fmt.Errorf("unmarshal extraction: %w", err)
	}

	log.Info("llm.extract.ok",
		"req_id", rid,
		"fields", len(out.Data),
		"confidence", out.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, doc, nil
}

// CheckGenuineness implements llm.GenuinenessChecker. It runs before any
// extraction so an obvious fake never reaches the field stage.
func (c *Client) CheckGenuineness(ctx context.Context, req llm.ExtractRequest) (llm.GenuinenessReport, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()
	log := c.logFor(ctx)

	log.Info("llm.verify.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"doc_type", req.DocType,
		"text_len", len(req.Text),
	)

	schema := llm.BuildGenuinenessJSONSchema()
	prompt := llm.BuildGenuinenessPrompt(req)

	doc, err := c.runPrompt(ctx, rid, prompt, schema, llm.NormalizeGenuinenessJSON, llm.RepairGenuinenessEnvelope)
	if err != nil {
		log.Error("llm.verify.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.GenuinenessReport{}, doc, err
	}

	var out llm.GenuinenessReport
	if err := json.Unmarshal(doc, &out); err != nil {
		log.Error("llm.verify.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.GenuinenessReport{}, doc, fmt.Errorf("unmarshal genuineness: %w", err)
	}

	log.Info("llm.verify.ok",
		"req_id", rid,
		"is_genuine", out.IsGenuine,
		"confidence_score", out.ConfidenceScore,
		"checks", len(out.VerificationChecks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, doc, nil
}

// logFor returns the client logger, tagged with the pipeline job when the
// context carries one.
func (c *Client) logFor(ctx context.Context) *slog.Logger {
	if jid := common.JobIDFromContext(ctx); jid != "" {
		return c.log.With("job_id", jid)
	}
	return c.log
}

// runPrompt sends the prompt and turns the reply into schema-valid JSON. A
// safety block or unusable reply earns exactly one retry with softened
// wording; schema mismatches go through the lenient envelope repair instead.
func (c *Client) runPrompt(ctx context.Context, rid, prompt string, schema map[string]any, normalize normalizeFunc, repair repairFunc) ([]byte, error) {
	attempts := []struct {
		label  string
		prompt string
	}{
		{"original", prompt},
		{"softened", llm.SoftenPrompt(prompt)},
	}

	var lastErr error
	for i, at := range attempts {
		content, err := c.generateContent(ctx, rid, at.prompt)
		if err != nil {
			lastErr = err
			if errors.Is(err, errSafetyBlocked) && i == 0 {
				c.log.Warn("llm.prompt.softened_retry",
					"req_id", rid, "reason", "safety_block")
				continue
			}
			return nil, err
		}

		doc := llm.StripCodeFences(content)
		cleaned, _, err := normalize(doc, c.log)
		if err != nil {
			lastErr = fmt.Errorf("parse model json: %w", err)
			if i == 0 {
				c.log.Warn("llm.prompt.softened_retry",
					"req_id", rid, "reason", "malformed_json")
				continue
			}
			return doc, lastErr
		}

		if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
			if !c.cfg.StrictJSON {
				repaired, filled, rErr := repair(cleaned)
				if rErr == nil {
					if vErr := llm.ValidateJSONAgainstSchema(schema, repaired); vErr == nil {
						c.log.Warn("llm.prompt.lenient_repair_applied",
							"req_id", rid, "attempt", at.label, "repaired", filled)
						return repaired, nil
					}
				}
			}
			lastErr = fmt.Errorf("schema validation failed: %w", err)
			if i == 0 {
				c.log.Warn("llm.prompt.softened_retry",
					"req_id", rid, "reason", "schema_mismatch")
				continue
			}
			return cleaned, lastErr
		}

		if at.label == "softened" {
			c.log.Info("llm.prompt.softened_recovered", "req_id", rid)
		}
		return cleaned, nil
	}
	return nil, lastErr
}

// generateContent posts to models/{model}:generateContent and returns the
// first candidate's text. The API key travels in a header, never in the URL,
// because request URLs end up in logs. 5xx and 429 get retried on a fixed
// backoff; other 4xx fail immediately.
func (c *Client) generateContent(ctx context.Context, rid string, prompt string) ([]byte, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     c.cfg.Temperature,
			"topP":            c.cfg.TopP,
			"topK":            c.cfg.TopK,
			"maxOutputTokens": c.cfg.MaxOutputTokens,
		},
		"safetySettings": documentSafetySettings(),
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + c.cfg.Model + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	var raw []byte
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryBackoff):
			}
			c.log.Warn("llm.gemini.retry", "req_id", rid, "attempt", attempt)
		}

		var status int
		raw, status, lastErr = llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
		if lastErr == nil {
			break
		}
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			return nil, fmt.Errorf("gemini status %d: %s", status, truncateBody(raw))
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		c.log.Warn("llm.gemini.safety_block",
			"req_id", rid, "block_reason", gr.PromptFeedback.BlockReason)
		return nil, fmt.Errorf("%w: %s", errSafetyBlocked, gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in gemini response")
	}
	cand := gr.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		c.log.Warn("llm.gemini.safety_block",
			"req_id", rid, "finish_reason", cand.FinishReason)
		return nil, fmt.Errorf("%w: finish_reason=SAFETY", errSafetyBlocked)
	}

	var text strings.Builder
	for _, p := range cand.Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty candidate content")
	}
	return []byte(text.String()), nil
}

// documentSafetySettings relaxes the filters enough that identity documents
// (which trip "dangerous content" heuristics surprisingly often) still get
// processed.
func documentSafetySettings() []map[string]string {
	return []map[string]string{
		{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "BLOCK_ONLY_HIGH"},
		{"category": "HARM_CATEGORY_HATE_SPEECH", "threshold": "BLOCK_ONLY_HIGH"},
		{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "threshold": "BLOCK_ONLY_HIGH"},
		{"category": "HARM_CATEGORY_SEXUALLY_EXPLICIT", "threshold": "BLOCK_MEDIUM_AND_ABOVE"},
	}
}

func truncateBody(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200] + "…"
	}
	return s
}
