package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/docgate/docgate/constants"
)

// CheckResult is one named verification sub-check.
type CheckResult struct {
	Passed     bool    `json:"passed"`
	Confidence float64 `json:"confidence"`
	Details    string  `json:"details,omitempty"`
}

// VerificationVerdict aggregates extracted fields into a genuineness
// judgment.
type VerificationVerdict struct {
	IsGenuine       bool                   `json:"is_genuine"`
	ConfidenceScore float64                `json:"confidence_score"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	Checks          map[string]CheckResult `json:"verification_checks,omitempty"`
	SecurityNotes   []string               `json:"security_features_found,omitempty"`
}

// ProcessingMeta records how a document was handled. Backend is frozen at
// routing time and never rewritten afterwards.
type ProcessingMeta struct {
	JobID     uuid.UUID                   `json:"job_id"`
	Backend   constants.ProcessingBackend `json:"backend"`
	OCRUsed   bool                        `json:"ocr_used"`
	ModelName *string                     `json:"model_name,omitempty"`
	StartedAt time.Time                   `json:"started_at"`
	ElapsedMS int64                       `json:"elapsed_ms"`
}

// ProcessingResult is the terminal artifact for one document run. Fields are
// attached even on rejected and errored runs so callers can review partial
// data.
type ProcessingResult struct {
	Status       constants.ResultStatus `json:"status"`
	DocumentType constants.DocumentType `json:"document_type"`
	Confidence   float64                `json:"confidence"`
	Fields       *Fields                `json:"fields,omitempty"`
	Verification *VerificationVerdict   `json:"verification,omitempty"`
	Confidential *ConfidentialVerdict   `json:"confidential,omitempty"`
	Reason       string                 `json:"reason,omitempty"`
	SourcePath   string                 `json:"source_path,omitempty"`
	Meta         ProcessingMeta         `json:"meta"`
}

// Succeeded reports whether the run completed and the document was accepted.
func (r *ProcessingResult) Succeeded() bool {
	return r.Status == constants.StatusSuccess
}
