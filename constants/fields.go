package constants

// RequiredFields lists, per document type, the field names a genuine document
// is expected to yield. Verification scores completeness against this table.
var RequiredFields = map[DocumentType][]string{
	Passport:               {"name", "date_of_birth", "passport_number", "nationality", "expiry_date"},
	DrivingLicense:         {"name", "date_of_birth", "license_number", "issue_date", "expiry_date"},
	NationalID:             {"name", "date_of_birth", "id_number", "address"},
	Resume:                 {"name", "email", "phone", "skills", "experience"},
	EducationalCertificate: {"name", "institution", "degree", "graduation_year"},
	MedicalReport:          {"patient_name", "date", "hospital", "diagnosis"},
	BankStatement:          {"account_holder", "account_number", "statement_period", "closing_balance"},
	LegalContract:          {"parties", "date", "title"},
	EmploymentRecord:       {"name", "employer", "designation", "date"},
	Certification:          {"name", "certification_name", "issuer", "issue_date"},
	Invoice:                {"vendor", "invoice_number", "date", "total"},
}

// Questions drives the question-answering extractor on the local path. Order
// matters: answers are written into the field mapping in this order.
var Questions = map[DocumentType][]string{
	Passport: {
		"What is the full name?",
		"What is the passport number?",
		"What is the date of birth?",
		"What is the nationality?",
		"When was the passport issued?",
		"When does the passport expire?",
	},
	DrivingLicense: {
		"What is the full name?",
		"What is the license number?",
		"What is the date of birth?",
		"When was the license issued?",
		"When does the license expire?",
		"What is the address?",
	},
	NationalID: {
		"What is the full name?",
		"What is the identification number?",
		"What is the date of birth?",
		"What is the address?",
	},
	Resume: {
		"What is the person's name?",
		"What is the email address?",
		"What is the phone number?",
		"What skills are mentioned?",
		"What is the work experience?",
		"What is the educational background?",
		"What is the current job title?",
		"How many years of experience are mentioned?",
		"What is the location?",
	},
	EducationalCertificate: {
		"What is the student's name?",
		"What institution issued this document?",
		"What degree or qualification was awarded?",
		"What is the graduation year?",
		"What is the GPA or grade?",
		"What is the roll number or student ID?",
		"When was the document issued?",
		"What is the field of study?",
	},
	MedicalReport: {
		"What is the patient's name?",
		"What is the date of the report?",
		"What hospital or clinic issued this?",
		"What is the diagnosis?",
		"Who is the attending doctor?",
	},
	BankStatement: {
		"Who is the account holder?",
		"What is the account number?",
		"What period does the statement cover?",
		"What is the closing balance?",
	},
	LegalContract: {
		"Who are the parties to this agreement?",
		"What is the date of the agreement?",
		"What kind of agreement is this?",
	},
	EmploymentRecord: {
		"What is the employee's name?",
		"Who is the employer?",
		"What is the designation or job title?",
		"What is the date of the document?",
	},
	Certification: {
		"What is the holder's name?",
		"What certification was awarded?",
		"Who issued the certification?",
		"When was it issued?",
	},
	Invoice: {
		"Who is the vendor?",
		"What is the invoice number?",
		"What is the invoice date?",
		"What is the total amount?",
	},
}

// GenericQuestions is the pattern-agnostic fallback for unknown types.
var GenericQuestions = []string{
	"What is the name mentioned in the document?",
	"What dates are mentioned?",
	"What identification numbers are mentioned?",
	"What is this document about?",
}

// QuestionField maps each question to the field name its answer is stored
// under. Questions missing from this table fall back to a slug of the
// question text.
var QuestionField = map[string]string{
	"What is the full name?":                       "name",
	"What is the passport number?":                 "passport_number",
	"What is the date of birth?":                   "date_of_birth",
	"What is the nationality?":                     "nationality",
	"When was the passport issued?":                "issue_date",
	"When does the passport expire?":               "expiry_date",
	"What is the license number?":                  "license_number",
	"When was the license issued?":                 "issue_date",
	"When does the license expire?":                "expiry_date",
	"What is the address?":                         "address",
	"What is the identification number?":           "id_number",
	"What is the person's name?":                   "name",
	"What is the email address?":                   "email",
	"What is the phone number?":                    "phone",
	"What skills are mentioned?":                   "skills",
	"What is the work experience?":                 "experience",
	"What is the educational background?":          "education",
	"What is the current job title?":               "job_title",
	"How many years of experience are mentioned?":  "years_of_experience",
	"What is the location?":                        "location",
	"What is the student's name?":                  "name",
	"What institution issued this document?":       "institution",
	"What degree or qualification was awarded?":    "degree",
	"What is the graduation year?":                 "graduation_year",
	"What is the GPA or grade?":                    "gpa",
	"What is the roll number or student ID?":       "roll_number",
	"When was the document issued?":                "issue_date",
	"What is the field of study?":                  "field_of_study",
	"What is the patient's name?":                  "patient_name",
	"What is the date of the report?":              "date",
	"What hospital or clinic issued this?":         "hospital",
	"What is the diagnosis?":                       "diagnosis",
	"Who is the attending doctor?":                 "doctor",
	"Who is the account holder?":                   "account_holder",
	"What is the account number?":                  "account_number",
	"What period does the statement cover?":        "statement_period",
	"What is the closing balance?":                 "closing_balance",
	"Who are the parties to this agreement?":       "parties",
	"What is the date of the agreement?":           "date",
	"What kind of agreement is this?":              "title",
	"What is the employee's name?":                 "name",
	"Who is the employer?":                         "employer",
	"What is the designation or job title?":        "designation",
	"What is the date of the document?":            "date",
	"What is the holder's name?":                   "name",
	"What certification was awarded?":              "certification_name",
	"Who issued the certification?":                "issuer",
	"When was it issued?":                          "issue_date",
	"Who is the vendor?":                           "vendor",
	"What is the invoice number?":                  "invoice_number",
	"What is the invoice date?":                    "date",
	"What is the total amount?":                    "total",
	"What is the name mentioned in the document?":  "name",
	"What dates are mentioned?":                    "dates",
	"What identification numbers are mentioned?":   "numbers",
	"What is this document about?":                 "summary",
}
