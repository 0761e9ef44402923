package verify

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

const (
	// DefaultThreshold is the acceptance bar in normal operation;
	// StrictThreshold replaces it in strict mode.
	DefaultThreshold = 0.5
	StrictThreshold  = 0.8

	qualityBar = 0.7
)

// nonGenuineRes match the specimen markers on word boundaries. Substring
// matching would fire "void" inside "avoid".
var nonGenuineRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(constants.NonGenuineIndicators))
	for _, ind := range constants.NonGenuineIndicators {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(ind)+`\b`))
	}
	return res
}()

// Verifier turns extracted fields plus the source text into a genuineness
// verdict. It never errors: an unusable extraction is a rejection, not a
// failure.
type Verifier struct {
	Threshold float64
	Strict    bool
	Logger    *slog.Logger
}

func NewVerifier(logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{Logger: logger}
}

func (v *Verifier) threshold() float64 {
	if v.Strict {
		return StrictThreshold
	}
	if v.Threshold > 0 {
		return v.Threshold
	}
	return DefaultThreshold
}

// Verify scores field completeness against the per-type required list, data
// quality over what was extracted, and scans the source text for non-genuine
// markers. Completeness is gated by the threshold on its own: a document
// missing most of its required fields is rejected no matter how clean the few
// extracted values look. Unknown document types keep the relaxed policy of no
// required list, so anything extracted counts as complete.
func (v *Verifier) Verify(fields *entity.Fields, docType constants.DocumentType, text string) entity.VerificationVerdict {
	checks := make(map[string]entity.CheckResult, 3)

	indicators := scanNonGenuine(text)
	if len(indicators) == 0 {
		checks["authenticity"] = entity.CheckResult{
			Passed:     true,
			Confidence: 1,
			Details:    "no non-genuine indicators",
		}
	} else {
		checks["authenticity"] = entity.CheckResult{
			Passed:     false,
			Confidence: 0,
			Details:    "non-genuine indicators found: " + strings.Join(indicators, ", "),
		}
	}

	if fields == nil || fields.Len() == 0 {
		checks["field_completeness"] = entity.CheckResult{Details: "no fields extracted"}
		checks["data_quality"] = entity.CheckResult{Details: "no fields extracted"}
		reason := "no data extracted"
		v.Logger.Info("verify.done",
			"doc_type", string(docType),
			"is_genuine", false,
			"confidence", 0.0,
			"reason", reason)
		return entity.VerificationVerdict{
			IsGenuine:       false,
			ConfidenceScore: 0,
			RejectionReason: &reason,
			Checks:          checks,
		}
	}

	completeness, missing := scoreCompleteness(fields, docType)
	if len(missing) == 0 {
		checks["field_completeness"] = entity.CheckResult{
			Passed:     true,
			Confidence: completeness,
			Details:    "All required fields present",
		}
	} else {
		checks["field_completeness"] = entity.CheckResult{
			Passed:     false,
			Confidence: completeness,
			Details:    "Missing fields: " + strings.Join(missing, ", "),
		}
	}

	quality := float64(fields.NonEmpty()) / float64(fields.Len())
	checks["data_quality"] = entity.CheckResult{
		Passed:     quality >= qualityBar,
		Confidence: quality,
		Details:    fmt.Sprintf("Data quality score: %.2f", quality),
	}

	score := (completeness + quality) / 2
	if avg, ok := averageConfidence(fields); ok {
		score = (completeness + quality + avg) / 3
	}
	score = clamp01(score)

	threshold := v.threshold()
	genuine := score >= threshold && completeness >= threshold && len(indicators) == 0

	verdict := entity.VerificationVerdict{
		IsGenuine:       genuine,
		ConfidenceScore: score,
		Checks:          checks,
	}
	if !genuine {
		reason := rejectionReason(score, completeness, threshold, missing, indicators)
		verdict.RejectionReason = &reason
	}

	v.Logger.Info("verify.done",
		"doc_type", string(docType),
		"is_genuine", genuine,
		"confidence", score,
		"completeness", completeness,
		"quality", quality,
		"missing_fields", len(missing),
		"indicators", len(indicators))
	return verdict
}

// scoreCompleteness is the fraction of the type's required fields present
// with a non-empty value. No required list means nothing can be missing.
func scoreCompleteness(fields *entity.Fields, docType constants.DocumentType) (float64, []string) {
	required := constants.RequiredFields[docType]
	if len(required) == 0 {
		return 1.0, nil
	}

	present := 0
	var missing []string
	for _, name := range required {
		if fv, ok := fields.Get(name); ok && strings.TrimSpace(fv.Value) != "" {
			present++
		} else {
			missing = append(missing, name)
		}
	}
	return float64(present) / float64(len(required)), missing
}

func rejectionReason(score, completeness, threshold float64, missing, indicators []string) string {
	if len(indicators) > 0 {
		return "document contains non-genuine indicators: " + strings.Join(indicators, ", ")
	}

	var reason string
	if completeness < threshold {
		reason = fmt.Sprintf("Field completeness %.2f below threshold %.2f", completeness, threshold)
	} else {
		reason = fmt.Sprintf("Low confidence score: %.2f (threshold %.2f)", score, threshold)
	}
	if len(missing) > 0 {
		reason += ". Missing fields: " + strings.Join(missing, ", ")
	}
	return reason
}

// averageConfidence is the mean of the per-field confidences the extraction
// backend reported, when it reported any.
func averageConfidence(fields *entity.Fields) (float64, bool) {
	sum, n := 0.0, 0
	for _, fv := range fields.Values() {
		if fv.Confidence > 0 {
			sum += fv.Confidence
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// scanNonGenuine returns the markers present in the text, in table order.
func scanNonGenuine(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var hits []string
	for i, re := range nonGenuineRes {
		if re.MatchString(lower) {
			hits = append(hits, constants.NonGenuineIndicators[i])
		}
	}
	return hits
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
