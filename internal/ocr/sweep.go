package ocr

import (
	"context"
	"fmt"
	"strings"
)

// SweepConfig is one (segmentation mode, language hint) trial. The sweep is
// declarative so the trial list and the scoring policy can change without
// touching the control flow.
type SweepConfig struct {
	PSM  int
	Lang string
}

// ScoreFunc ranks one trial's output. Higher is better. OCR engines expose no
// usable confidence at this level, so output length stands in for quality.
type ScoreFunc func(text string) float64

// LengthScore is the default scorer: trimmed output length.
func LengthScore(text string) float64 {
	return float64(len(strings.TrimSpace(text)))
}

// QualityWeightedScore discounts length by artifact density. It is an opt-in
// alternative for callers that would rather keep a shorter clean trial than a
// longer garbled one; the acquisition paths stay on LengthScore so the chosen
// text is never shorter than the best attempted trial.
func QualityWeightedScore(text string) float64 {
	return LengthScore(text) * (1.0 - 0.5*artifactDensity(text))
}

// Segmentation modes tried in order: uniform block, full auto, single
// column, auto with orientation detection.
var defaultPSMs = []int{6, 3, 4, 1}

// DefaultLanguageSets are the language hint sets tried per mode, monolingual
// first.
var DefaultLanguageSets = []string{"eng", "eng+fra", "eng+deu"}

// BuildSweep expands modes × language sets into the trial list. langs == nil
// uses DefaultLanguageSets.
func BuildSweep(langs []string) []SweepConfig {
	if len(langs) == 0 {
		langs = DefaultLanguageSets
	}
	configs := make([]SweepConfig, 0, len(defaultPSMs)*len(langs))
	for _, psm := range defaultPSMs {
		for _, lang := range langs {
			configs = append(configs, SweepConfig{PSM: psm, Lang: lang})
		}
	}
	return configs
}

// SweepOutcome is the best trial of a sweep plus bookkeeping about the rest.
type SweepOutcome struct {
	Text       string
	Config     SweepConfig
	Score      float64
	Attempts   int
	Failures   int
	Warnings   []string
	Confidence float32
}

// Sweep OCRs one raster once per config and keeps the best-scoring output.
// When two trials score the same, the one with fewer recognition artifacts
// wins; a full tie keeps the earlier trial, so the result is deterministic
// for a fixed config list. Individual trial failures are recorded as
// warnings; the sweep only fails when every trial does.
func (e *Engine) Sweep(ctx context.Context, path string, configs []SweepConfig, score ScoreFunc) (SweepOutcome, error) {
	if len(configs) == 0 {
		configs = BuildSweep(nil)
	}
	if score == nil {
		score = LengthScore
	}

	outcome := SweepOutcome{Score: -1}
	for _, cfg := range configs {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		outcome.Attempts++

		txt, warns, err := e.OCRImage(ctx, path, cfg.PSM, cfg.Lang)
		outcome.Warnings = append(outcome.Warnings, warns...)
		if err != nil {
			outcome.Failures++
			outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("psm=%d lang=%s: %v", cfg.PSM, cfg.Lang, err))
			continue
		}

		txt = Normalize(txt)
		s := score(txt)
		if s > outcome.Score || (s == outcome.Score && artifactDensity(txt) < artifactDensity(outcome.Text)) {
			outcome.Text = txt
			outcome.Config = cfg
			outcome.Score = s
		}
	}

	if outcome.Failures == outcome.Attempts {
		return outcome, fmt.Errorf("all %d ocr trials failed", outcome.Attempts)
	}

	outcome.Confidence = e.confidenceFor(ctx, path, outcome)
	e.logger.Debug("ocr.sweep.done",
		"path", path,
		"attempts", outcome.Attempts,
		"failures", outcome.Failures,
		"psm", outcome.Config.PSM,
		"lang", outcome.Config.Lang,
		"score", outcome.Score,
		"confidence", outcome.Confidence,
	)
	return outcome, nil
}

// confidenceFor blends TSV word confidence (when enabled) with the text
// heuristic, weighting the engine-reported number higher.
func (e *Engine) confidenceFor(ctx context.Context, path string, outcome SweepOutcome) float32 {
	heur := heuristicConfidence(outcome.Text)

	if !e.cfg.EnableTSVConfidence || outcome.Text == "" {
		return heur
	}
	tsv, _, err := e.TSVConfidence(ctx, path, outcome.Config.PSM, outcome.Config.Lang)
	if err != nil || tsv <= 0 {
		return heur
	}
	conf := 0.7*tsv + 0.3*heur
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
