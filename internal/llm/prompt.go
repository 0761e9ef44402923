package llm

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/docgate/docgate/constants"
)

// maxPromptText caps how much document text goes into a prompt. Anything a
// model needs to judge a single document sits well inside the first few
// thousand characters.
const maxPromptText = 4000

// TruncateForPrompt cuts text to at most max bytes without splitting a rune,
// marking the cut so the model knows the document continues.
func TruncateForPrompt(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "\n…(truncated)"
}

// fieldHints gives the model a nudge about where each field tends to hide.
// Only fields listed in constants.RequiredFields need an entry; anything
// missing falls back to the bare field name.
var fieldHints = map[string]string{
	"name":               "full name exactly as printed",
	"patient_name":       "full name of the patient",
	"account_holder":     "full name on the account",
	"date_of_birth":      "DOB, birth date",
	"passport_number":    "letter followed by digits",
	"nationality":        "nationality or citizenship",
	"license_number":     "DL number, license number",
	"id_number":          "identification or card number",
	"address":            "current address",
	"issue_date":         "date of issue, valid from",
	"expiry_date":        "expiry date, valid until",
	"email":              "email address",
	"phone":              "contact or mobile number",
	"skills":             "listed skills",
	"experience":         "work experience summary",
	"institution":        "school, college, or university",
	"degree":             "degree or qualification awarded",
	"graduation_year":    "year of completion",
	"date":               "primary date on the document",
	"hospital":           "hospital or clinic name",
	"diagnosis":          "diagnosis or findings",
	"account_number":     "bank account number",
	"statement_period":   "statement date range",
	"closing_balance":    "closing or available balance",
	"parties":            "names of the contracting parties",
	"title":              "title of the agreement",
	"employer":           "employer or company name",
	"designation":        "job title or position",
	"certification_name": "name of the certification",
	"issuer":             "issuing organization",
	"vendor":             "vendor or supplier name",
	"invoice_number":     "invoice or reference number",
	"total":              "total amount due",
}

// BuildExtractionPrompt composes the field-extraction prompt for one
// document. The response contract (data/confidence/additional_info) is spelled
// out inline so the model and our schema agree on shape.
func BuildExtractionPrompt(req ExtractRequest) string {
	label := docTypeLabel(req.DocType)

	var b strings.Builder
	b.WriteString("You are a document analysis expert. Extract all relevant information from this ")
	b.WriteString(label)
	b.WriteString(".\n\nDocument Text:\n")
	b.WriteString(TruncateForPrompt(req.Text, maxPromptText))
	b.WriteString("\n\nFor a ")
	b.WriteString(label)
	b.WriteString(", look for and extract these fields:\n")
	b.WriteString(fieldTemplate(req.DocType))
	b.WriteString(`
Important:
1. Extract ALL visible information from the document
2. If a field is not found, omit it
3. For dates, use YYYY-MM-DD format
4. For numbers, extract them exactly as shown
5. For names and addresses, preserve the exact spelling and formatting

Return ONLY JSON with this structure:
{
  "data": {"field_name": "extracted value", ...},
  "confidence": 0.0-1.0,
  "additional_info": "any additional relevant information"
}
`)
	return b.String()
}

// BuildGenuinenessPrompt asks for an authenticity verdict before any
// extraction is attempted. A document the model is unsure about gets
// rejected, not waved through.
func BuildGenuinenessPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert document verification AI. Determine if this document is genuine BEFORE any data extraction.\n\nDocument Text:\n")
	b.WriteString(TruncateForPrompt(req.Text, maxPromptText))
	b.WriteString(`

Perform a thorough genuineness check:
1. Authenticity: official issuing-authority text, structure, logos, and seals
2. Security features: watermarks, holograms, microtext, QR codes, barcodes
3. Red flags: forgery or tampering, sample/template indicators, "not for official use" disclaimers
4. Quality: professional printing, alignment, typography

Return ONLY JSON with this structure:
{
  "is_genuine": true/false,
  "confidence_score": 0.0-1.0,
  "rejection_reason": "detailed explanation if not genuine",
  "verification_checks": [{"check_type": "type of check", "status": "passed/failed", "details": "explanation"}],
  "security_features_found": ["list of found features"],
  "verification_summary": "detailed explanation"
}

Reject any document that shows signs of being a sample, template, photocopy, scan, test, demonstration, or training document. If in doubt, reject the document. Only accept documents that are clearly genuine official documents.
`)
	return b.String()
}

type softenRule struct {
	re   *regexp.Regexp
	repl string
}

// Longer phrases first so "social security" is rewritten as a unit rather
// than word by word.
var softenRules = func() []softenRule {
	keys := make([]string, 0, len(constants.PromptSoftening))
	for k := range constants.PromptSoftening {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	rules := make([]softenRule, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, softenRule{
			re:   regexp.MustCompile(`(?i)` + regexp.QuoteMeta(k)),
			repl: constants.PromptSoftening[k],
		})
	}
	return rules
}()

// SoftenPrompt rewrites charged vocabulary before a retry after a safety
// block.
func SoftenPrompt(prompt string) string {
	out := prompt
	for _, r := range softenRules {
		out = r.re.ReplaceAllString(out, r.repl)
	}
	return out
}

// fieldTemplate renders the per-type field checklist in bullet form.
func fieldTemplate(docType constants.DocumentType) string {
	fields, ok := constants.RequiredFields[docType]
	if !ok || len(fields) == 0 {
		return "- every clearly labeled field you can identify\n"
	}

	var b strings.Builder
	for _, f := range fields {
		b.WriteString("- ")
		b.WriteString(f)
		if hint, ok := fieldHints[f]; ok {
			b.WriteString(" (")
			b.WriteString(hint)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func docTypeLabel(docType constants.DocumentType) string {
	if docType == "" || docType == constants.Unknown {
		return "document"
	}
	return strings.ReplaceAll(string(docType), "_", " ")
}
