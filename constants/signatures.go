package constants

// TypeSignature carries the textual fingerprint of one document type:
// indicator phrases plus layout-marker regular expressions. The textual
// classifier scores a document against every signature.
type TypeSignature struct {
	Keywords []string
	Markers  []string
}

// TypeSignatures is consulted when no reference image matches, or none is
// available at all. Keywords are matched lowercased; markers are compiled as
// written.
var TypeSignatures = map[DocumentType]TypeSignature{
	Passport: {
		Keywords: []string{"passport", "nationality", "place of issue", "surname", "given names"},
		Markers:  []string{`(?i)passport\s+(no|number)`, `\b[A-Z]\d{7}\b`},
	},
	DrivingLicense: {
		Keywords: []string{"driving licence", "driving license", "transport", "vehicle class", "dl no"},
		Markers:  []string{`(?i)(licence|license)\s+(no|number)`, `(?i)valid\s+(till|until)`},
	},
	NationalID: {
		Keywords: []string{"aadhaar", "unique identification", "government of", "voter", "identity card"},
		Markers:  []string{`\b\d{4}\s\d{4}\s\d{4}\b`, `\b[A-Z]{5}\d{4}[A-Z]\b`},
	},
	Resume: {
		Keywords: []string{"resume", "curriculum vitae", "work experience", "skills", "education", "objective", "projects"},
		Markers:  []string{`(?im)^\s*(work\s+)?experience\s*:?\s*$`, `[\w.+-]+@[\w-]+\.[\w.]+`},
	},
	EducationalCertificate: {
		Keywords: []string{"university", "degree", "bachelor", "master", "marksheet", "examination", "grade", "awarded"},
		Markers:  []string{`(?i)this\s+is\s+to\s+certify`, `(?i)(cgpa|gpa|percentage)\s*[:of]*\s*\d`},
	},
	MedicalReport: {
		Keywords: []string{"patient", "hospital", "clinic", "diagnosis", "doctor", "laboratory", "specimen collected"},
		Markers:  []string{`(?i)patient\s*(name|id)`, `(?i)dr\.\s+[A-Z]`},
	},
	BankStatement: {
		Keywords: []string{"bank", "account statement", "transaction", "balance", "deposit", "withdrawal", "branch"},
		Markers:  []string{`(?i)(opening|closing)\s+balance`, `(?i)statement\s+period`},
	},
	LegalContract: {
		Keywords: []string{"agreement", "contract", "party", "parties", "hereby", "obligations", "jurisdiction"},
		Markers:  []string{`(?i)this\s+agreement\s+is\s+made`, `(?i)in\s+witness\s+whereof`},
	},
	EmploymentRecord: {
		Keywords: []string{"employee", "employer", "designation", "salary", "offer", "appointment", "human resources"},
		Markers:  []string{`(?i)(gross|net|basic)\s+(salary|pay)`, `(?i)date\s+of\s+joining`},
	},
	Certification: {
		Keywords: []string{"certificate", "certification", "certified", "completion", "issued by", "accredited"},
		Markers:  []string{`(?i)certificate\s+of\s+(completion|achievement)`, `(?i)has\s+successfully\s+completed`},
	},
	Invoice: {
		Keywords: []string{"invoice", "bill to", "subtotal", "total due", "quantity", "unit price", "payment terms"},
		Markers:  []string{`(?i)invoice\s+(no|number|#)`, `(?i)(total|amount)\s+due`},
	},
}
