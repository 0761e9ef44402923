package ocr

import (
	"github.com/abadojack/whatlanggo"
)

// PrioritizeLanguages reorders the language hint sets so the sweep tries the
// detected language family first. Detection runs on whatever text an earlier
// pass produced; empty or inconclusive text keeps the default order.
func PrioritizeLanguages(sample string) []string {
	if len(sample) < 20 {
		return DefaultLanguageSets
	}

	info := whatlanggo.Detect(sample)
	if !info.IsReliable() {
		return DefaultLanguageSets
	}

	var preferred string
	switch info.Lang {
	case whatlanggo.Fra:
		preferred = "eng+fra"
	case whatlanggo.Deu:
		preferred = "eng+deu"
	default:
		return DefaultLanguageSets
	}

	ordered := []string{preferred}
	for _, lang := range DefaultLanguageSets {
		if lang != preferred {
			ordered = append(ordered, lang)
		}
	}
	return ordered
}

// LanguageName reports the detected language of acquired text for result
// provenance. Returns "" when detection is unreliable.
func LanguageName(text string) string {
	if len(text) < 20 {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}
