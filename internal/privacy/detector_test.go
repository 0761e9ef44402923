package privacy

import (
	"log/slog"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

func newDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDefaultDetector(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	require.NoError(t, err)
	return d
}

func TestDetectKeywordHit(t *testing.T) {
	d := newDetector(t)

	verdict := d.Detect("Social Security Number: 123-45-6789", nil)
	assert.True(t, verdict.Confidential)
	require.NotEmpty(t, verdict.MatchedKeywords)
	assert.Contains(t, verdict.MatchedKeywords, "social security number")
	assert.False(t, verdict.SensitiveType)
	assert.False(t, verdict.InternalError)
}

func TestDetectSensitiveTypeShortCircuits(t *testing.T) {
	d := newDetector(t)

	known := &entity.TypeCandidate{Type: constants.Passport, Confidence: 0.9}
	verdict := d.Detect("completely innocuous text", known)
	assert.True(t, verdict.Confidential)
	assert.True(t, verdict.SensitiveType)
	assert.Empty(t, verdict.MatchedKeywords, "type short-circuit must skip the scan")
}

func TestDetectNonSensitiveType(t *testing.T) {
	d := newDetector(t)

	known := &entity.TypeCandidate{Type: constants.Invoice, Confidence: 0.8}
	verdict := d.Detect("Invoice INV-2041. Subtotal 100. Total due 110. Payment within 30 days.", known)
	assert.False(t, verdict.Confidential)
}

func TestDetectPatternCategories(t *testing.T) {
	d := newDetector(t)

	t.Run("two categories flag", func(t *testing.T) {
		verdict := d.Detect("Terms and Conditions apply. Work experience section follows.", nil)
		assert.True(t, verdict.Confidential)
		assert.ElementsMatch(t, []string{"legal", "resume"}, verdict.MatchedPatterns)
	})

	t.Run("one category is a recorded near-miss", func(t *testing.T) {
		verdict := d.Detect("Please review the terms and conditions.", nil)
		assert.False(t, verdict.Confidential)
		assert.Equal(t, []string{"legal"}, verdict.MatchedPatterns)
	})
}

func TestDetectEmptyText(t *testing.T) {
	d := newDetector(t)

	verdict := d.Detect("", nil)
	assert.False(t, verdict.Confidential)
	assert.Empty(t, verdict.Signals())
}

func TestDetectUnknownTypeFallsThroughToScan(t *testing.T) {
	d := newDetector(t)

	known := &entity.TypeCandidate{Type: constants.Unknown}
	verdict := d.Detect("patient name: A. Nonymous, diagnosis pending", known)
	assert.True(t, verdict.Confidential)
	assert.NotEmpty(t, verdict.MatchedKeywords)
}

func TestDetectFailsClosed(t *testing.T) {
	// A nil compiled pattern makes the category scan panic; the verdict must
	// still come back confidential.
	d := &Detector{
		logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		categories: []patternCategory{{name: "broken", patterns: []*regexp.Regexp{nil}}},
	}

	verdict := d.Detect("anything at all", nil)
	assert.True(t, verdict.Confidential)
	assert.True(t, verdict.InternalError)
	assert.Contains(t, verdict.Signals(), "internal error (failed closed)")
}

func TestSignalsList(t *testing.T) {
	d := newDetector(t)

	verdict := d.Detect("Patient Name: J. Roe. Blood test scheduled.", nil)
	require.True(t, verdict.Confidential)
	signals := verdict.Signals()
	assert.NotEmpty(t, signals)
	for _, s := range signals {
		assert.NotEmpty(t, s)
	}
}
