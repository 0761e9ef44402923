package classify

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

// Signature match weights. Markers are layout evidence and weigh more than
// loose keyword hits.
const (
	keywordWeight = 0.4
	markerWeight  = 0.6
)

type compiledSignature struct {
	docType  constants.DocumentType
	keywords []string
	markers  []*regexp.Regexp
}

// TextScorer classifies by textual fingerprint alone. It is the only
// strategy available for inputs that never had a raster form.
type TextScorer struct {
	signatures []compiledSignature
	minScore   float64
	logger     *slog.Logger
}

// NewTextScorer compiles every type signature once, in sorted type order so
// equal scores resolve the same way on every run.
func NewTextScorer(minScore float64, logger *slog.Logger) *TextScorer {
	if minScore <= 0 {
		minScore = 0.2
	}
	if logger == nil {
		logger = slog.Default()
	}

	types := make([]constants.DocumentType, 0, len(constants.TypeSignatures))
	for dt := range constants.TypeSignatures {
		types = append(types, dt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	s := &TextScorer{minScore: minScore, logger: logger}
	for _, dt := range types {
		sig := constants.TypeSignatures[dt]
		cs := compiledSignature{docType: dt}
		for _, kw := range sig.Keywords {
			cs.keywords = append(cs.keywords, strings.ToLower(kw))
		}
		for _, m := range sig.Markers {
			re, err := regexp.Compile(m)
			if err != nil {
				logger.Warn("classify.textual.bad_marker", "type", string(dt), "marker", m, "error", err)
				continue
			}
			cs.markers = append(cs.markers, re)
		}
		s.signatures = append(s.signatures, cs)
	}
	return s
}

// Score evaluates every signature against the text and returns the best
// candidate. Below the minimum score the candidate degrades to unknown.
func (s *TextScorer) Score(text string) entity.TypeCandidate {
	lower := strings.ToLower(text)

	best := entity.TypeCandidate{Type: constants.Unknown, Source: entity.ClassifySourceNone}
	for _, sig := range s.signatures {
		score := sig.score(lower, text)
		if score > best.Confidence {
			best = entity.TypeCandidate{
				Type:       sig.docType,
				Confidence: score,
				Source:     entity.ClassifySourceTextual,
			}
		} else if score > 0 && score == best.Confidence {
			// First in sorted order already won; make the tie visible.
			s.logger.Debug("classify.textual.tie",
				"kept", string(best.Type),
				"tied", string(sig.docType),
				"score", score)
		}
	}

	if best.Confidence < s.minScore {
		return entity.TypeCandidate{Type: constants.Unknown, Source: entity.ClassifySourceNone}
	}
	return best
}

// score is the weighted fraction of signature keywords and markers present in
// the text. Keywords match against the lowercased text, markers as written.
func (cs compiledSignature) score(lower, original string) float64 {
	var keywordScore, markerScore float64

	if len(cs.keywords) > 0 {
		hits := 0
		for _, kw := range cs.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		keywordScore = float64(hits) / float64(len(cs.keywords))
	}

	if len(cs.markers) > 0 {
		hits := 0
		for _, re := range cs.markers {
			if re.MatchString(original) {
				hits++
			}
		}
		markerScore = float64(hits) / float64(len(cs.markers))
	}

	return keywordWeight*keywordScore + markerWeight*markerScore
}
