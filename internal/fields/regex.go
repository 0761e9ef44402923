package fields

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

// datePatterns builds the three date shapes a label can introduce: numeric
// (12/03/2021), month-first (March 12, 2021) and day-first (12 March 2021).
func datePatterns(label string) []*regexp.Regexp {
	forms := []string{
		`(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`,
		`([A-Za-z]+[ \t]+\d{1,2},?[ \t]+\d{4})`,
		`(\d{1,2}[ \t]+[A-Za-z]+,?[ \t]+\d{4})`,
	}
	out := make([]*regexp.Regexp, 0, len(forms))
	for _, form := range forms {
		out = append(out, regexp.MustCompile(`(?i)\b(?:`+label+`)\s*:?\s*`+form))
	}
	return out
}

// patternTable maps a field name to its candidate patterns, most specific
// first. The first pattern that yields a non-empty cleaned value wins.
//
// Two conventions hold throughout. Labeled patterns carry (?i), which
// case-folds character classes too, so free-standing value patterns stay
// case sensitive to limit stray hits. And inside a captured value only
// [ \t] joins words; \s between label and value may cross a line break
// (labels often sit above their value) but a value never does.
var patternTable = map[string][]*regexp.Regexp{
	"name": {
		regexp.MustCompile(`(?i)name\s*:?\s*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`),
		regexp.MustCompile(`(?i)\b(?:student|employee|holder)\b\s*:?\s*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`),
		regexp.MustCompile(`(?m)^([A-Z]{2,}(?:[ \t]+[A-Z]{2,})+)[ \t]*$`),
	},
	"patient_name": {
		regexp.MustCompile(`(?i)patient(?:'s)?\s+name\s*:?\s*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z.]+)+)`),
		regexp.MustCompile(`(?i)\bpatient\b\s*:?\s*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`),
	},
	"account_holder": {
		regexp.MustCompile(`(?i)account\s+holder\s*:?\s*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`),
		regexp.MustCompile(`(?i)customer\s+name\s*:?\s*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`),
	},
	"email": {
		regexp.MustCompile(`(?i)e-?mail\s*:?\s*([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`),
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	},
	"phone": {
		regexp.MustCompile(`(?i)(?:phone|mobile|tel(?:ephone)?|contact)\s*(?:no|number)?\s*\.?\s*:?\s*(\(?\+?\d[\d \t().-]{7,}\d)`),
		regexp.MustCompile(`\+?1?[-. ]?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}`),
	},
	"date_of_birth": datePatterns(`date\s+of\s+birth|birth\s+date|dob|d\.o\.b\.?|born(?:\s+on)?`),
	"passport_number": {
		regexp.MustCompile(`(?i)passport\s*(?:no|number|#)?\s*\.?\s*:?\s*([A-Z]\d{7,8})\b`),
		regexp.MustCompile(`\b([A-Z]\d{7,8})\b`),
	},
	"nationality": {
		regexp.MustCompile(`(?i)nationality\s*:?\s*([A-Za-z]+(?:[ \t]+[A-Za-z]+)?)`),
		regexp.MustCompile(`(?i)citizen(?:ship)?\b\s*:?\s*(?:of\s+)?([A-Za-z]+(?:[ \t]+[A-Za-z]+)?)`),
	},
	"license_number": {
		regexp.MustCompile(`(?i)license\s*(?:no\b|number\b|#)\s*\.?\s*:?\s*([A-Z0-9-]{4,})`),
		regexp.MustCompile(`(?i)license\s*:\s*([A-Z0-9-]{4,})`),
		regexp.MustCompile(`(?i)\blic\.?\s*no\.?\s*:?\s*([A-Z0-9-]{4,})`),
		regexp.MustCompile(`(?i)\bdl\s*#?\s*:?\s*([A-Z0-9-]{4,})`),
	},
	"id_number": {
		regexp.MustCompile(`\b(\d{4} \d{4} \d{4})\b`),
		regexp.MustCompile(`\b([A-Z]{5}\d{4}[A-Z])\b`),
		regexp.MustCompile(`(?i)\bid\s*(?:no|number|#)\s*\.?\s*:?\s*([A-Z0-9-]{4,})`),
	},
	"address": {
		regexp.MustCompile(`(?i)address\s*:?\s*([^\n]{10,})`),
		regexp.MustCompile(`(?i)(?:resid(?:ent|ing)\s+(?:at|of)|located\s+at)\s*:?\s*([^\n]{10,})`),
		regexp.MustCompile(`\b(\d{1,5} [A-Z][A-Za-z ]+ (?:Street|St|Road|Rd|Avenue|Ave|Lane|Ln|Drive|Dr|Boulevard|Blvd)\.?)\b`),
	},
	"issue_date":  datePatterns(`date\s+of\s+issue|issue\s+date|issued\s+on|issued`),
	"expiry_date": datePatterns(`date\s+of\s+expiry|expiry\s+date|expiration\s+date|expires?(?:\s+on)?|expiry|valid\s+(?:till|until|thru|through)`),
	"gpa": {
		regexp.MustCompile(`(?i)\bgpa\s*:?\s*(\d\.\d{1,2})`),
		regexp.MustCompile(`(?i)grade\s+point\s+average\s*:?\s*(\d\.\d{1,2})`),
		regexp.MustCompile(`(?i)\bcgpa\s*:?\s*(\d{1,2}(?:\.\d{1,2})?)`),
	},
	"graduation_year": {
		regexp.MustCompile(`(?i)\b(?:graduat(?:ion|ed)\s*(?:date|year)?|year\s+of\s+(?:passing|graduation))\s*:?\s*(?:[A-Za-z]+[ \t]+\d{1,2},?[ \t]+)?(\d{4})`),
		regexp.MustCompile(`(?i)\b(?:class|batch)\s+of\s+(\d{4})`),
	},
	"institution": {
		regexp.MustCompile(`\b((?:[A-Z][A-Za-z&.']+[ \t]+){1,4}(?:University|College|Institute|Academy))\b`),
		regexp.MustCompile(`\b((?:University|College|Institute)[ \t]+of[ \t]+[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*)`),
		regexp.MustCompile(`(?i)institution\s*:?\s*([^\n]{3,})`),
	},
	"degree": {
		regexp.MustCompile(`(?i)\b((?:bachelor|master|doctor)(?:'s)?[ \t]+(?:of|in)[ \t]+[A-Za-z]+(?:[ \t]+[A-Za-z]+){0,2})`),
		regexp.MustCompile(`(?i)\b(ph\.?d\.?|b\.?tech|m\.?tech|b\.?sc|m\.?sc|b\.?com|m\.?com|mba|bba)\b`),
		regexp.MustCompile(`(?i)degree\s*:?\s*([^\n]{2,})`),
	},
	"roll_number": {
		regexp.MustCompile(`(?i)roll\s*(?:no|number)\b\s*\.?\s*:?\s*([A-Z0-9/-]+)`),
		regexp.MustCompile(`(?i)student\s+id\b\s*:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)(?:seat|enrol?lment)\s*(?:no|number)\b\s*\.?\s*:?\s*([A-Z0-9/-]+)`),
	},
	"employee_id": {
		regexp.MustCompile(`(?i)employee\s+id\b\s*:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)\bemp\.?\s*(?:id|no)\b\.?\s*:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)staff\s+(?:id|number)\b\s*:?\s*([A-Z0-9-]+)`),
	},
	"employer": {
		regexp.MustCompile(`(?i)employer\b\s*:?\s*([^\n]{2,})`),
		regexp.MustCompile(`(?i)company\s+name\b\s*:?\s*([^\n]{2,})`),
		regexp.MustCompile(`(?i)\b(?:employed|working)\s+(?:at|by|with)\s+([A-Z][A-Za-z&., ]{2,})`),
	},
	"designation": {
		regexp.MustCompile(`(?i)designation\b\s*:?\s*([^\n]{2,})`),
		regexp.MustCompile(`(?i)(?:job\s+title|position|role)\b\s*:?\s*([^\n]{2,})`),
	},
	"certification_name": {
		regexp.MustCompile(`(?i)certifications?\b\s*:?\s*([^\n]{3,})`),
		regexp.MustCompile(`(?i)\bcertified\s+([A-Za-z]+(?:[ \t]+[A-Za-z]+){0,3})`),
		regexp.MustCompile(`(?i)certificate\s+(?:of|in)\s+([A-Za-z]+(?:[ \t]+[A-Za-z]+){0,3})`),
		regexp.MustCompile(`(?i)\bhas\s+(?:successfully\s+)?completed\s+(?:the\s+)?([^\n]+?)\s+(?:course|program|training)\b`),
	},
	"issuer": {
		regexp.MustCompile(`(?i)issued\s+by\s*:?\s*([^\n]{3,})`),
		regexp.MustCompile(`(?i)issuing\s+(?:authority|organi[sz]ation)\s*:?\s*([^\n]{3,})`),
	},
	"date": append(datePatterns(`dated?`), []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})\b`),
		regexp.MustCompile(`\b([A-Za-z]+ \d{1,2}, \d{4})\b`),
	}...),
	"hospital": {
		regexp.MustCompile(`\b((?:[A-Z][A-Za-z.']+[ \t]+){1,4}(?:Hospital|Clinic|Medical[ \t]+Cent(?:er|re)))\b`),
		regexp.MustCompile(`(?i)(?:hospital|clinic)\s+name\s*:?\s*([^\n]{3,})`),
	},
	"diagnosis": {
		regexp.MustCompile(`(?i)diagnosis\b\s*:?\s*([^\n]{3,})`),
		regexp.MustCompile(`(?i)diagnosed\s+with\s+([^\n.]{3,})`),
	},
	"doctor": {
		regexp.MustCompile(`(?i)(?:attending\s+)?(?:doctor|physician|consultant)\b\s*:?\s*((?:Dr\.?[ \t]+)?[A-Z][a-z]+(?:[ \t]+[A-Z][a-z.]+)*)`),
		regexp.MustCompile(`\b(Dr\.?[ \t]+[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*)`),
	},
	"account_number": {
		regexp.MustCompile(`(?i)(?:account|a/c)\s*(?:no\b|number\b|#)\s*\.?\s*:?\s*([0-9Xx*-]{4,})`),
		regexp.MustCompile(`(?i)account\s*:?\s*([0-9Xx*-]{6,})`),
	},
	"statement_period": {
		regexp.MustCompile(`(?i)statement\s+period\s*:?\s*([^\n]{5,})`),
		regexp.MustCompile(`(?i)(?:period|statement)\s+(?:from|for)\s*:?\s*([^\n]{5,})`),
		regexp.MustCompile(`(?i)\b(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}[ \t]*(?:-|to|through)[ \t]*\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`),
	},
	"closing_balance": {
		regexp.MustCompile(`(?i)closing\s+balance\s*:?\s*(?:USD|INR|EUR|GBP|Rs\.?|[$€£₹])?\s*([0-9][0-9,]*(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)(?:ending|final)\s+balance\s*:?\s*(?:USD|INR|EUR|GBP|Rs\.?|[$€£₹])?\s*([0-9][0-9,]*(?:\.\d{1,2})?)`),
	},
	"parties": {
		regexp.MustCompile(`(?i)\bbetween\s+([^\n]+?\s+and\s+[^\n]+?)(?:[,.;\n]|$)`),
		regexp.MustCompile(`(?i)\bparties\b\s*:?\s*([^\n]{5,})`),
	},
	"title": {
		regexp.MustCompile(`(?m)^[ \t]*([A-Z][A-Za-z -]*(?:AGREEMENT|CONTRACT|Agreement|Contract))[ \t]*$`),
		regexp.MustCompile(`(?i)\b((?:employment|service|lease|rental|purchase|partnership|non-disclosure|consulting)\s+(?:agreement|contract))\b`),
	},
	"vendor": {
		regexp.MustCompile(`(?i)(?:vendor|seller|billed\s+by|sold\s+by|invoice\s+from)\b\s*:?\s*([^\n]{2,})`),
		regexp.MustCompile(`(?m)^[ \t]*([A-Z][A-Za-z&.,' ]+(?:Inc|LLC|Ltd|Corp(?:oration)?|Company|Co)\.?)[ \t]*$`),
	},
	"invoice_number": {
		regexp.MustCompile(`(?i)invoice\s*(?:no\b|number\b|#)\s*\.?\s*:?\s*([A-Z0-9/-]{2,})`),
		regexp.MustCompile(`(?i)invoice\s*:\s*([A-Z0-9/-]{2,})`),
		regexp.MustCompile(`(?i)\binv\s*[#.]\s*:?\s*([A-Z0-9/-]{3,})`),
	},
	"total": {
		regexp.MustCompile(`(?i)(?:total\s+(?:amount\s+)?due|amount\s+due|grand\s+total|total\s+amount|balance\s+due)\s*:?\s*(?:USD|INR|EUR|GBP|Rs\.?|[$€£₹])?\s*([0-9][0-9,]*(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)\btotal\b\s*:?\s*(?:USD|INR|EUR|GBP|Rs\.?|[$€£₹])?\s*([0-9][0-9,]*(?:\.\d{1,2})?)`),
	},
	"skills": {
		regexp.MustCompile(`(?i)(?:technical\s+)?skills\b\s*:?\s*([^\n]{3,})`),
	},
	"experience": {
		regexp.MustCompile(`(?i)(?:work\s+)?experience\b\s*:?\s*([^\n]{3,})`),
		regexp.MustCompile(`(?i)(\d+\+?[ \t]+years?[ \t]+(?:of[ \t]+)?experience[^\n]*)`),
	},
}

// typeFields selects which fields to attempt for a classified document.
// Unknown types fall back to the whole table.
var typeFields = map[constants.DocumentType][]string{
	constants.Passport:               {"name", "date_of_birth", "passport_number", "nationality", "issue_date", "expiry_date"},
	constants.DrivingLicense:         {"name", "date_of_birth", "license_number", "issue_date", "expiry_date", "address"},
	constants.NationalID:             {"name", "date_of_birth", "id_number", "address"},
	constants.Resume:                 {"name", "email", "phone", "skills", "experience", "address"},
	constants.EducationalCertificate: {"name", "institution", "degree", "graduation_year", "gpa", "roll_number", "issue_date"},
	constants.MedicalReport:          {"patient_name", "date", "hospital", "diagnosis", "doctor"},
	constants.BankStatement:          {"account_holder", "account_number", "statement_period", "closing_balance"},
	constants.LegalContract:          {"parties", "date", "title"},
	constants.EmploymentRecord:       {"name", "employer", "designation", "date", "employee_id"},
	constants.Certification:          {"name", "certification_name", "issuer", "issue_date", "license_number"},
	constants.Invoice:                {"vendor", "invoice_number", "date", "total"},
}

var allFields = func() []string {
	out := make([]string, 0, len(patternTable))
	for name := range patternTable {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}()

const (
	confidenceNameField  = 0.8
	confidenceOtherField = 0.9
)

// RegexExtractor pulls fields out of text with per-type pattern sets. It never
// leaves the process and is the floor the local path can always fall back to.
type RegexExtractor struct {
	Logger *slog.Logger
}

func NewRegexExtractor(logger *slog.Logger) *RegexExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegexExtractor{Logger: logger}
}

var _ Extractor = (*RegexExtractor)(nil)

func (e *RegexExtractor) Extract(ctx context.Context, text string, docType constants.DocumentType) (*entity.Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fieldNames, ok := typeFields[docType]
	if !ok {
		fieldNames = allFields
	}

	out := entity.NewFields()
	for _, name := range fieldNames {
		value, found := firstMatch(patternTable[name], text)
		if !found {
			continue
		}
		out.Set(name, value, patternConfidence(name))
	}

	e.Logger.Debug("fields.regex.done",
		slog.String("doc_type", string(docType)),
		slog.Int("attempted", len(fieldNames)),
		slog.Int("extracted", out.Len()),
	)
	return out, nil
}

// firstMatch runs the patterns in order and returns the first cleaned,
// non-empty value. A pattern with a capture group contributes group one,
// otherwise the whole match.
func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := m[0]
		if len(m) > 1 && m[1] != "" {
			raw = m[1]
		}
		value := CleanValue(raw)
		if value == "" || IsEmptyLike(value) {
			continue
		}
		return value, true
	}
	return "", false
}

// patternConfidence keeps name-ish fields a notch below the rest; OCR garbles
// proper names more than labeled numbers and dates.
func patternConfidence(field string) float64 {
	if strings.Contains(field, "name") {
		return confidenceNameField
	}
	return confidenceOtherField
}
