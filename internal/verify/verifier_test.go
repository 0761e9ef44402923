package verify

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func passportFields(conf float64) *entity.Fields {
	f := entity.NewFields()
	f.Set("name", "Anita Verma", conf)
	f.Set("date_of_birth", "1991-02-14", conf)
	f.Set("passport_number", "K8245617", conf)
	f.Set("nationality", "Indian", conf)
	f.Set("expiry_date", "2029-05-02", conf)
	return f
}

func TestVerifyCompletePassport(t *testing.T) {
	v := NewVerifier(quietLogger())
	verdict := v.Verify(passportFields(0.9), constants.Passport, "REPUBLIC OF TESTLANDIA\nPassport")

	assert.True(t, verdict.IsGenuine)
	assert.InDelta(t, (1.0+1.0+0.9)/3, verdict.ConfidenceScore, 1e-9)
	assert.Nil(t, verdict.RejectionReason)

	require.Contains(t, verdict.Checks, "field_completeness")
	assert.True(t, verdict.Checks["field_completeness"].Passed)
	assert.Equal(t, "All required fields present", verdict.Checks["field_completeness"].Details)
	assert.True(t, verdict.Checks["data_quality"].Passed)
	assert.True(t, verdict.Checks["authenticity"].Passed)
}

func TestVerifyRejectsIncompleteExtraction(t *testing.T) {
	f := entity.NewFields()
	f.Set("name", "Anita Verma", 0.9)
	f.Set("passport_number", "K8245617", 0.9)

	v := NewVerifier(quietLogger())
	verdict := v.Verify(f, constants.Passport, "Passport")

	assert.False(t, verdict.IsGenuine)
	// completeness 2/5 gates the verdict even though both values are clean
	assert.InDelta(t, (0.4+1.0+0.9)/3, verdict.ConfidenceScore, 1e-9)

	require.NotNil(t, verdict.RejectionReason)
	reason := *verdict.RejectionReason
	assert.Contains(t, reason, "0.40")
	assert.Contains(t, reason, "Missing fields:")
	assert.Contains(t, reason, "date_of_birth")
	assert.Contains(t, reason, "nationality")
	assert.Contains(t, reason, "expiry_date")

	assert.False(t, verdict.Checks["field_completeness"].Passed)
	assert.InDelta(t, 0.4, verdict.Checks["field_completeness"].Confidence, 1e-9)
}

func TestVerifyZeroFields(t *testing.T) {
	v := NewVerifier(quietLogger())

	for _, fields := range []*entity.Fields{nil, entity.NewFields()} {
		verdict := v.Verify(fields, constants.Invoice, "INVOICE")

		assert.False(t, verdict.IsGenuine)
		assert.Zero(t, verdict.ConfidenceScore)
		require.NotNil(t, verdict.RejectionReason)
		assert.Equal(t, "no data extracted", *verdict.RejectionReason)
	}
}

func TestVerifyNonGenuineIndicatorForcesReject(t *testing.T) {
	v := NewVerifier(quietLogger())
	verdict := v.Verify(passportFields(0.9), constants.Passport, "SPECIMEN\nRepublic of Testlandia Passport")

	assert.False(t, verdict.IsGenuine)
	require.NotNil(t, verdict.RejectionReason)
	assert.Contains(t, *verdict.RejectionReason, "specimen")

	// the numeric confidence is still reported honestly
	assert.InDelta(t, (1.0+1.0+0.9)/3, verdict.ConfidenceScore, 1e-9)
	assert.False(t, verdict.Checks["authenticity"].Passed)
}

func TestVerifyIndicatorScanUsesWordBoundaries(t *testing.T) {
	v := NewVerifier(quietLogger())

	verdict := v.Verify(passportFields(0.9), constants.Passport, "holder must avoid damage to this booklet")
	assert.True(t, verdict.IsGenuine, "'avoid' must not fire the 'void' indicator")

	verdict = v.Verify(passportFields(0.9), constants.Passport, "VOID VOID VOID")
	assert.False(t, verdict.IsGenuine)
	require.NotNil(t, verdict.RejectionReason)
	assert.Contains(t, *verdict.RejectionReason, "void")
}

func TestVerifyUnknownTypeLenient(t *testing.T) {
	f := entity.NewFields()
	f.Set("summary", "quarterly maintenance report", 0.8)
	f.Set("date", "2024-03-01", 0.9)

	v := NewVerifier(quietLogger())
	verdict := v.Verify(f, constants.Unknown, "Maintenance Report March 2024")

	assert.True(t, verdict.IsGenuine)
	assert.True(t, verdict.Checks["field_completeness"].Passed)
	assert.InDelta(t, 1.0, verdict.Checks["field_completeness"].Confidence, 1e-9)
}

func TestVerifyStrictMode(t *testing.T) {
	f := entity.NewFields()
	f.Set("name", "Jane Roe", 0.8)
	f.Set("email", "jane.roe@example.org", 0.9)
	f.Set("experience", "6 years backend development", 0.8)

	text := "Jane Roe\njane.roe@example.org\nExperience: 6 years backend development"

	relaxed := NewVerifier(quietLogger())
	assert.True(t, relaxed.Verify(f, constants.Resume, text).IsGenuine)

	strict := NewVerifier(quietLogger())
	strict.Strict = true
	verdict := strict.Verify(f, constants.Resume, text)
	assert.False(t, verdict.IsGenuine)
	require.NotNil(t, verdict.RejectionReason)
	assert.Contains(t, *verdict.RejectionReason, "0.80")
}

func TestVerifyEmptyValueCountsAsMissing(t *testing.T) {
	f := entity.NewFields()
	f.Set("vendor", "Acme Supplies Inc.", 0.9)
	f.Set("invoice_number", "   ", 0.9)
	f.Set("date", "2024-01-15", 0.9)
	f.Set("total", "1,249.50", 0.9)

	v := NewVerifier(quietLogger())
	verdict := v.Verify(f, constants.Invoice, "INVOICE")

	assert.True(t, verdict.IsGenuine)
	assert.InDelta(t, 0.75, verdict.Checks["field_completeness"].Confidence, 1e-9)
	assert.Contains(t, verdict.Checks["field_completeness"].Details, "invoice_number")
	assert.InDelta(t, 0.75, verdict.Checks["data_quality"].Confidence, 1e-9)
}

func TestVerifyConfidenceBounds(t *testing.T) {
	v := NewVerifier(quietLogger())

	cases := []*entity.Fields{
		nil,
		passportFields(0.1),
		passportFields(1.0),
	}
	for _, f := range cases {
		verdict := v.Verify(f, constants.Passport, "passport text")
		assert.GreaterOrEqual(t, verdict.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, verdict.ConfidenceScore, 1.0)
	}
}

func TestScanNonGenuineTableOrder(t *testing.T) {
	hits := scanNonGenuine("This dummy file is a sample based on a template.")
	assert.Equal(t, []string{"sample", "template", "dummy"}, hits)

	assert.Nil(t, scanNonGenuine(""))
	assert.Nil(t, scanNonGenuine("ordinary passport text"))
}

func TestThresholdSelection(t *testing.T) {
	v := NewVerifier(quietLogger())
	assert.InDelta(t, DefaultThreshold, v.threshold(), 1e-9)

	v.Threshold = 0.65
	assert.InDelta(t, 0.65, v.threshold(), 1e-9)

	v.Strict = true
	assert.InDelta(t, StrictThreshold, v.threshold(), 1e-9)
}
