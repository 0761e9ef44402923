package privacy

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
)

// Detector decides whether content must stay on the local processing path.
// The policy is high recall: false positives are acceptable, false negatives
// are not, and any internal failure flags the document rather than letting
// it through.
type Detector struct {
	machine    *goahocorasick.Machine
	categories []patternCategory
	logger     *slog.Logger
}

type patternCategory struct {
	name     string
	patterns []*regexp.Regexp
}

// NewDetector builds the keyword automaton and compiles the structural
// pattern categories. Patterns that fail to compile are dropped with a log
// line so one bad entry cannot disable the scan.
func NewDetector(keywords []string, patternCategories map[string][]string, logger *slog.Logger) (*Detector, error) {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Detector{logger: logger}

	if len(keywords) > 0 {
		patterns := make([][]rune, len(keywords))
		for i, kw := range keywords {
			patterns[i] = []rune(strings.ToLower(kw))
		}
		m := new(goahocorasick.Machine)
		if err := m.Build(patterns); err != nil {
			return nil, common.NewAppError(common.CodeConfigError, "build keyword automaton", err)
		}
		d.machine = m
	}

	names := make([]string, 0, len(patternCategories))
	for name := range patternCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cat := patternCategory{name: name}
		for _, p := range patternCategories[name] {
			re, err := regexp.Compile(p)
			if err != nil {
				logger.Warn("privacy.pattern.invalid", "category", name, "pattern", p, "error", err)
				continue
			}
			cat.patterns = append(cat.patterns, re)
		}
		if len(cat.patterns) > 0 {
			d.categories = append(d.categories, cat)
		}
	}

	return d, nil
}

// NewDefaultDetector wires the detector with the built-in keyword and
// pattern tables.
func NewDefaultDetector(logger *slog.Logger) (*Detector, error) {
	return NewDetector(constants.ConfidentialKeywords, constants.PatternCategories, logger)
}

// Detect runs the short-circuit chain: sensitive type, keyword scan, then
// structural patterns (two independent categories required). It never
// returns an error; anything that goes wrong internally fails closed.
func (d *Detector) Detect(text string, known *entity.TypeCandidate) (verdict entity.ConfidentialVerdict) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("privacy.detect.panic", "panic", r)
			verdict = entity.ConfidentialVerdict{Confidential: true, InternalError: true}
		}
	}()

	if known != nil && known.Type != constants.Unknown && constants.IsSensitive(known.Type) {
		d.logger.Info("privacy.detect.sensitive_type", "type", string(known.Type))
		return entity.ConfidentialVerdict{Confidential: true, SensitiveType: true}
	}

	lower := strings.ToLower(text)

	if matched := d.matchKeywords(lower); len(matched) > 0 {
		d.logger.Info("privacy.detect.keywords",
			"matches", len(matched),
			"first", matched[0])
		return entity.ConfidentialVerdict{Confidential: true, MatchedKeywords: matched}
	}

	categories := d.matchCategories(text)
	if len(categories) >= 2 {
		d.logger.Info("privacy.detect.patterns", "categories", categories)
		return entity.ConfidentialVerdict{Confidential: true, MatchedPatterns: categories}
	}

	// Not confidential; a single fired category is still recorded so the
	// near-miss is observable.
	return entity.ConfidentialVerdict{Confidential: false, MatchedPatterns: categories}
}

// matchKeywords returns every distinct keyword found in the lowercased text,
// in first-hit order. Matching is substring-level, so "ssn" inside a longer
// token still counts.
func (d *Detector) matchKeywords(lower string) []string {
	if d.machine == nil || lower == "" {
		return nil
	}

	spans := d.machine.MultiPatternSearch([]rune(lower), false)
	if len(spans) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(spans))
	var matched []string
	for _, span := range spans {
		word := string(span.Word)
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		matched = append(matched, word)
	}
	return matched
}

// matchCategories returns the names of pattern categories with at least one
// hit, in sorted category order.
func (d *Detector) matchCategories(text string) []string {
	var fired []string
	for _, cat := range d.categories {
		for _, re := range cat.patterns {
			if re.MatchString(text) {
				fired = append(fired, cat.name)
				break
			}
		}
	}
	return fired
}
