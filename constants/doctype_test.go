package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want DocumentType
	}{
		{"passport", Passport},
		{"Passport", Passport},
		{"  PASSPORT.  ", Passport},
		{"driving license", DrivingLicense},
		{"Driver's License", DrivingLicense},
		{"dl", DrivingLicense},
		{"aadhaar card", NationalID},
		{"pan card", NationalID},
		{"curriculum vitae", Resume},
		{"CV", Resume},
		{"mark sheet", EducationalCertificate},
		{"transcript", EducationalCertificate},
		{"lab report", MedicalReport},
		{"account statement", BankStatement},
		{"agreement", LegalContract},
		{"payslip", EmploymentRecord},
		{"certificate", Certification},
		{"receipt", Invoice},
		{"bank statement", BankStatement},
		{"national id", NationalID},
		{"unknown", Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Canonicalize(tc.in)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanonicalizeRejectsUnrecognized(t *testing.T) {
	for _, in := range []string{"", "shopping list", "passports", "xlsx"} {
		got, ok := Canonicalize(in)
		assert.False(t, ok, "input %q", in)
		assert.Equal(t, Unknown, got)
	}
}

func TestIsSensitive(t *testing.T) {
	// Every recognized type except invoice and unknown routes local-only on
	// type alone.
	for _, dt := range AllDocumentTypes() {
		want := dt != Invoice && dt != Unknown
		assert.Equal(t, want, IsSensitive(dt), "type %s", dt)
	}
}

func TestAllDocumentTypesIsACopy(t *testing.T) {
	got := AllDocumentTypes()
	require.NotEmpty(t, got)
	got[0] = "tampered"
	assert.Equal(t, Passport, AllDocumentTypes()[0])
}

func TestFormatForExt(t *testing.T) {
	cases := []struct {
		ext  string
		want FileFormat
	}{
		{"txt", FormatText},
		{".txt", FormatText},
		{"XLSX", FormatStructured},
		{"docx", FormatStructured},
		{"pdf", FormatPage},
		{"jpg", FormatImage},
		{".HEIC", FormatImage},
	}
	for _, tc := range cases {
		got, ok := FormatForExt(tc.ext)
		require.True(t, ok, "ext %q", tc.ext)
		assert.Equal(t, tc.want, got, "ext %q", tc.ext)
	}

	_, ok := FormatForExt("exe")
	assert.False(t, ok)
	_, ok = FormatForExt("")
	assert.False(t, ok)
}
