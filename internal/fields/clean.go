package fields

import (
	"regexp"
	"strings"

	"github.com/docgate/docgate/internal/entity"
)

// OCR artifact runs and noise shapes.
var (
	rePipeRun     = regexp.MustCompile(`\|{2,}`)
	reL1Run       = regexp.MustCompile(`[l1]{3,}`)
	reO0Run       = regexp.MustCompile(`[oO0]{3,}`)
	reRNRun       = regexp.MustCompile(`(?:rn){2,}`)
	reIsolatedSeq = regexp.MustCompile(`(?:\b[A-Za-z]\s+){2,}\b[A-Za-z]\b`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// emptyLike values carry no information and are dropped rather than stored.
var emptyLike = map[string]struct{}{
	"unknown":       {},
	"none":          {},
	"null":          {},
	"n/a":           {},
	"na":            {},
	"nil":           {},
	"not available": {},
	"not found":     {},
	"not mentioned": {},
	"-":             {},
	"--":            {},
}

// CleanValue applies the fixed cleanup sequence to one raw value: strip OCR
// artifact runs, drop sequences of isolated single characters, collapse
// whitespace. The result of cleaning a cleaned value is the value itself.
func CleanValue(raw string) string {
	if raw == "" {
		return ""
	}
	v := stripArtifactRuns(raw)
	v = reIsolatedSeq.ReplaceAllString(v, "")
	v = reWhitespace.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}

// stripArtifactRuns deletes artifact runs until none remain. Removing one
// run can join its neighbors into a new run ("o0rnrn0o"), so a single pass
// is not enough. Every rule only deletes, so this terminates.
func stripArtifactRuns(v string) string {
	for {
		next := rePipeRun.ReplaceAllString(v, "")
		next = reL1Run.ReplaceAllString(next, "")
		next = reO0Run.ReplaceAllString(next, "")
		next = reRNRun.ReplaceAllString(next, "")
		if next == v {
			return v
		}
		v = next
	}
}

// IsEmptyLike reports whether a cleaned value carries no information:
// whitespace-only, or a placeholder word like "unknown" or "n/a".
func IsEmptyLike(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	_, hit := emptyLike[v]
	return hit
}

// CleanFields runs every value through CleanValue and drops the ones that
// end up empty-like, preserving extraction order of the survivors.
func CleanFields(in *entity.Fields) *entity.Fields {
	out := entity.NewFields()
	if in == nil {
		return out
	}
	for _, fv := range in.Values() {
		cleaned := CleanValue(fv.Value)
		if IsEmptyLike(cleaned) {
			continue
		}
		out.Set(fv.Name, cleaned, fv.Confidence)
	}
	return out
}
