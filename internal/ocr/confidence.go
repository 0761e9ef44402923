package ocr

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reDate  = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.](19|20)\d{2}\b|\b(19|20)\d{2}\b`)
	reIDNum = regexp.MustCompile(`\b[A-Z]\d{7}\b|\b\d{4}\s\d{4}\s\d{4}\b|\b[A-Z]{5}\d{4}[A-Z]\b`)
	reEmail = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`)
)

// document indicator terms: their presence suggests the OCR read real
// document structure rather than noise
var indicatorTerms = []string{
	"name", "date", "address", "signature", "photo",
	"passport", "license", "number", "issued", "birth",
}

// OCR artifact patterns: runs of confusable glyphs and spacing damage
var (
	rePipeRuns  = regexp.MustCompile(`[|]{2,}`)
	reL1Runs    = regexp.MustCompile(`[l1]{3,}`)
	reO0Runs    = regexp.MustCompile(`[o0]{3,}`)
	reRNRuns    = regexp.MustCompile(`[rn]{3,}`)
	reWideGaps  = regexp.MustCompile(`[^\S\n]{3,}`)
	reIsolated  = regexp.MustCompile(`\b[A-Z]\s+[A-Z]\s+[A-Z]\b`)
	artifactRes = []*regexp.Regexp{rePipeRuns, reL1Runs, reO0Runs, reRNRuns, reWideGaps, reIsolated}
)

func hasDatePattern(s string) bool  { return reDate.MatchString(s) }
func hasIDPattern(s string) bool    { return reIDNum.MatchString(s) }
func hasEmailPattern(s string) bool { return reEmail.MatchString(s) }

// artifactDensity estimates how garbled the text is: artifact hits per word,
// capped at 1.
func artifactDensity(txt string) float64 {
	words := len(strings.Fields(txt))
	if words == 0 {
		return 1.0
	}
	hits := 0
	for _, re := range artifactRes {
		hits += len(re.FindAllStringIndex(txt, -1))
	}
	density := float64(hits) / float64(words)
	if density > 1.0 {
		density = 1.0
	}
	return density
}

// QualityWarnings surfaces low-quality OCR output to the caller without
// failing the run.
func QualityWarnings(txt string) []string {
	var warns []string
	words := len(strings.Fields(txt))
	if words > 0 {
		if d := artifactDensity(txt); d > 0.25 {
			warns = append(warns, fmt.Sprintf("high OCR artifact density (%.2f)", d))
		}
	}
	if len(strings.TrimSpace(txt)) > 0 && words < 5 {
		warns = append(warns, "very little recognized text")
	}
	return warns
}

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasDatePattern(txt) {
		score += 0.2
	}
	if hasIDPattern(txt) {
		score += 0.15
	}
	if hasEmailPattern(txtL) {
		score += 0.1
	}
	indicators := 0
	for _, term := range indicatorTerms {
		if strings.Contains(txtL, term) {
			indicators++
		}
	}
	if indicators >= 2 {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content

	score -= float32(0.3 * artifactDensity(txt))

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}
