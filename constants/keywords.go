package constants

// ConfidentialKeywords is the high-recall keyword set for the content scan.
// One hit is enough to route a document local-only, so the entries favor
// phrases that rarely show up in harmless text. All lowercase; the scanner
// lowercases input before matching.
var ConfidentialKeywords = []string{
	// personal identifiers
	"social security number",
	"social security no",
	"ssn",
	"date of birth",
	"place of birth",
	"passport number",
	"passport no",
	"aadhaar",
	"aadhar",
	"pan number",
	"voter id",
	"national id",
	"tax identification",
	"driving licence",
	"driving license",
	"license number",
	"blood group",
	"marital status",
	"father's name",
	"mother's name",
	"nationality",

	// legal and privacy terms
	"confidential",
	"strictly private",
	"privileged",
	"non-disclosure",
	"nondisclosure",
	"attorney-client",
	"power of attorney",
	"affidavit",
	"notarized",
	"plaintiff",
	"defendant",
	"hereinafter",
	"witnesseth",
	"party of the first part",

	// medical terms
	"patient name",
	"patient id",
	"diagnosis",
	"prescription",
	"medical record",
	"medical history",
	"blood test",
	"pathology",
	"radiology",
	"discharge summary",
	"treatment plan",

	// financial terms
	"account number",
	"account no",
	"ifsc",
	"iban",
	"swift code",
	"routing number",
	"credit card number",
	"debit card",
	"cvv",
	"net banking",
	"closing balance",
	"opening balance",
	"statement of account",
	"annual income",

	// employment terms
	"employee id",
	"salary slip",
	"payslip",
	"gross salary",
	"net salary",
	"basic pay",
	"appointment letter",
	"offer letter",
	"resignation",
	"appraisal",
	"ctc",

	// educational terms
	"roll number",
	"roll no",
	"registration number",
	"enrollment number",
	"marksheet",
	"mark sheet",
	"grade point",
	"gpa",
	"cgpa",
	"transcript",

	// credential terms
	"username",
	"password",
	"passcode",
	"security question",
	"one-time password",
	"otp",
	"api key",
	"secret key",
}

// PatternCategories holds structural regular expressions grouped by document
// family. At least two distinct categories must match before the scan flags a
// document on structure alone.
var PatternCategories = map[string][]string{
	"legal": {
		`(?i)this\s+agreement\s+is\s+made`,
		`(?i)whereas[\s,]`,
		`(?i)in\s+witness\s+whereof`,
		`(?i)terms\s+and\s+conditions`,
	},
	"resume": {
		`(?i)work\s+experience`,
		`(?i)technical\s+skills`,
		`(?i)career\s+objective`,
		`(?i)professional\s+summary`,
	},
	"medical": {
		`(?i)patient\s*(name|id)`,
		`(?i)referred\s+by\s+dr`,
		`(?i)clinical\s+(findings|history)`,
	},
	"financial": {
		`(?i)account\s+statement`,
		`(?i)(opening|closing)\s+balance`,
		`(?i)transaction\s+(date|details)`,
	},
	"identity": {
		`(?i)date\s+of\s+birth`,
		`\b\d{3}-\d{2}-\d{4}\b`,
		`\b\d{4}\s\d{4}\s\d{4}\b`,
		`\b[A-Z]{5}\d{4}[A-Z]\b`,
	},
}

// NonGenuineIndicators mark specimen or placeholder documents. Any hit forces
// verification to reject regardless of field coverage.
var NonGenuineIndicators = []string{
	"sample",
	"specimen",
	"template",
	"dummy",
	"placeholder",
	"not valid",
	"void",
	"for demonstration",
	"test document",
	"example only",
	"lorem ipsum",
}

// PromptSoftening rewrites trigger words before the single retry against the
// external service. Safety filters over-trigger on identity vocabulary even
// for legitimate extraction requests.
var PromptSoftening = map[string]string{
	"passport":        "travel document",
	"social security": "reference",
	"ssn":             "reference number",
	"confidential":    "private",
	"identity":        "record",
	"license":         "permit document",
	"extract":         "read out",
	"verify":          "review",
}
