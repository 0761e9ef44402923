package llm

import (
	"context"

	"github.com/docgate/docgate/constants"
)

// ExtractRequest carries one document's text to the external service.
type ExtractRequest struct {
	Text         string
	DocType      constants.DocumentType
	FilenameHint string
	Language     string
}

// ExtractResult is the normalized shape the external extractor returns:
// a flat field mapping plus the service's own confidence in it.
type ExtractResult struct {
	Data           map[string]string `json:"data"`
	Confidence     float64           `json:"confidence"`
	AdditionalInfo string            `json:"additional_info,omitempty"`
}

// VerificationCheck is one named check inside a genuineness report.
type VerificationCheck struct {
	CheckType string `json:"check_type"`
	Status    string `json:"status"`
	Details   string `json:"details,omitempty"`
}

// GenuinenessReport is the service's pre-extraction authenticity verdict.
type GenuinenessReport struct {
	IsGenuine             bool                `json:"is_genuine"`
	ConfidenceScore       float64             `json:"confidence_score"`
	RejectionReason       string              `json:"rejection_reason,omitempty"`
	VerificationChecks    []VerificationCheck `json:"verification_checks,omitempty"`
	SecurityFeaturesFound []string            `json:"security_features_found,omitempty"`
	VerificationSummary   string              `json:"verification_summary,omitempty"`
}

// FieldExtractor is the boundary the external extraction path depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (ExtractResult, []byte /*rawJSON*/, error)
}

// GenuinenessChecker asks the service whether a document looks genuine at
// all, before any extraction work is spent on it.
type GenuinenessChecker interface {
	CheckGenuineness(ctx context.Context, req ExtractRequest) (GenuinenessReport, []byte /*rawJSON*/, error)
}
