package constants

import (
	"strings"
)

type DocumentType string

const (
	Passport               DocumentType = "passport"
	DrivingLicense         DocumentType = "driving_license"
	NationalID             DocumentType = "national_id"
	Resume                 DocumentType = "resume"
	EducationalCertificate DocumentType = "educational_certificate"
	MedicalReport          DocumentType = "medical_report"
	BankStatement          DocumentType = "bank_statement"
	LegalContract          DocumentType = "legal_contract"
	EmploymentRecord       DocumentType = "employment_record"
	Certification          DocumentType = "certification"
	Invoice                DocumentType = "invoice"
	Unknown                DocumentType = "unknown"
)

var allDocumentTypes = []DocumentType{
	Passport,
	DrivingLicense,
	NationalID,
	Resume,
	EducationalCertificate,
	MedicalReport,
	BankStatement,
	LegalContract,
	EmploymentRecord,
	Certification,
	Invoice,
	Unknown,
}

// sensitiveTypes are always routed to local-only processing, regardless of
// what the content scan finds.
var sensitiveTypes = map[DocumentType]struct{}{
	Passport:               {},
	DrivingLicense:         {},
	NationalID:             {},
	Resume:                 {},
	EducationalCertificate: {},
	MedicalReport:          {},
	BankStatement:          {},
	LegalContract:          {},
	EmploymentRecord:       {},
	Certification:          {},
}

func AsStringSlice() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// AllDocumentTypes returns the closed set of recognized types in a fixed,
// deterministic order.
func AllDocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

func IsSensitive(dt DocumentType) bool {
	_, ok := sensitiveTypes[dt]
	return ok
}

func Canonicalize(input string) (DocumentType, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.Trim(normalized, ".,:;")

	// alias map
	aliases := map[string]DocumentType{
		"dl":                 DrivingLicense,
		"driving licence":    DrivingLicense,
		"driving license":    DrivingLicense,
		"driver's license":   DrivingLicense,
		"drivers license":    DrivingLicense,
		"licence":            DrivingLicense,
		"aadhar":             NationalID,
		"aadhaar":            NationalID,
		"aadhaar card":       NationalID,
		"aadhar card":        NationalID,
		"pan card":           NationalID,
		"voter id":           NationalID,
		"identity card":      NationalID,
		"id card":            NationalID,
		"cv":                 Resume,
		"curriculum vitae":   Resume,
		"marksheet":          EducationalCertificate,
		"mark sheet":         EducationalCertificate,
		"transcript":         EducationalCertificate,
		"degree":             EducationalCertificate,
		"degree certificate": EducationalCertificate,
		"diploma":            EducationalCertificate,
		"medical":            MedicalReport,
		"health report":      MedicalReport,
		"lab report":         MedicalReport,
		"prescription":       MedicalReport,
		"contract":           LegalContract,
		"agreement":          LegalContract,
		"legal document":     LegalContract,
		"account statement":  BankStatement,
		"bank statement":     BankStatement,
		"statement":          BankStatement,
		"salary slip":        EmploymentRecord,
		"payslip":            EmploymentRecord,
		"pay slip":           EmploymentRecord,
		"offer letter":       EmploymentRecord,
		"experience letter":  EmploymentRecord,
		"certificate":        Certification,
		"bill":               Invoice,
		"receipt":            Invoice,
	}

	if dt, ok := aliases[normalized]; ok {
		return dt, true
	}

	// check if it matches any type string, with or without underscores
	despaced := strings.ReplaceAll(normalized, " ", "_")
	for _, dt := range allDocumentTypes {
		if normalized == string(dt) || despaced == string(dt) {
			return dt, true
		}
	}

	return Unknown, false
}
