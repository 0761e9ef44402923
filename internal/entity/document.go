package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/docgate/docgate/constants"
)

// RawDocument is the handle to one input document for data transfer between
// layers. Files loaded from disk carry both SourcePath and Data; in-memory
// input carries Data alone. Temporary artifacts derived from it (rendered
// pages, preprocessed rasters) live only for the duration of text
// acquisition.
type RawDocument struct {
	ID          uuid.UUID            `json:"id"`
	SourcePath  string               `json:"source_path,omitempty"`
	Data        []byte               `json:"-"`
	Filename    string               `json:"filename"`
	FileExt     string               `json:"file_ext"`
	Format      constants.FileFormat `json:"format"`
	MIMEType    string               `json:"mime_type,omitempty"`
	ContentHash []byte               `json:"content_hash,omitempty"`
	FileSize    int64                `json:"file_size"`
	IngestedAt  time.Time            `json:"ingested_at"`
}

// AcquisitionMethod records which strategy produced the text.
type AcquisitionMethod string

const (
	MethodDirect AcquisitionMethod = "direct"
	MethodOCR    AcquisitionMethod = "ocr"
	MethodMixed  AcquisitionMethod = "mixed"
)

// ExtractedText is the immutable acquisition output plus its provenance.
// Never shared across documents.
type ExtractedText struct {
	Text     string            `json:"text"`
	Method   AcquisitionMethod `json:"method"`
	Pages    int               `json:"pages,omitempty"`
	Language string            `json:"language,omitempty"`
	Duration time.Duration     `json:"-"`
	Warnings []string          `json:"warnings,omitempty"`
}

// TypeCandidate is one classification outcome. Source names the strategy
// that produced it.
type TypeCandidate struct {
	Type       constants.DocumentType `json:"type"`
	Confidence float64                `json:"confidence"`
	Source     string                 `json:"source"`
}

// Classification sources.
const (
	ClassifySourceTemplate = "template"
	ClassifySourceTextual  = "textual"
	ClassifySourceCache    = "cache"
	ClassifySourceNone     = "none"
)

// ConfidentialVerdict is the privacy scan outcome plus the signals that
// produced it, so callers can show why a document was kept local.
type ConfidentialVerdict struct {
	Confidential    bool     `json:"confidential"`
	SensitiveType   bool     `json:"sensitive_type"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
	InternalError   bool     `json:"internal_error,omitempty"`
}

// Signals returns a flat, human-readable list of everything that fired.
func (v ConfidentialVerdict) Signals() []string {
	var signals []string
	if v.SensitiveType {
		signals = append(signals, "sensitive document type")
	}
	for _, kw := range v.MatchedKeywords {
		signals = append(signals, "keyword: "+kw)
	}
	for _, p := range v.MatchedPatterns {
		signals = append(signals, "pattern: "+p)
	}
	if v.InternalError {
		signals = append(signals, "internal error (failed closed)")
	}
	return signals
}
