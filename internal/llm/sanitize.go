package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

// StripCodeFences removes the markdown fences models like to wrap JSON in.
func StripCodeFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return []byte(strings.TrimSpace(s))
}

// NormalizeExtractionJSON
// - Wraps inlined top-level fields into "data" when the model skipped the envelope
// - Coerces data values to trimmed strings, dropping null/empty placeholders
// - Clamps confidence into [0,1], parsing it from a string if needed
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeExtractionJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	// 1) some responses inline the fields at the top level instead of
	// nesting them under "data"; fold those in before coercing
	if _, ok := m["data"].(map[string]any); !ok {
		data := make(map[string]any)
		for k, v := range maps.Clone(m) {
			if k == "data" || k == "confidence" || k == "additional_info" {
				continue
			}
			data[k] = v
			delete(m, k)
		}
		if prev, ok := m["data"]; ok && prev != nil {
			dropped = append(dropped, "data(type)")
		}
		if len(data) > 0 {
			dropped = append(dropped, "data(wrapped)")
		}
		m["data"] = data
	}

	// 2) coerce every data value to a non-placeholder string
	if d, ok := m["data"].(map[string]any); ok {
		for k, v := range maps.Clone(d) {
			if v == nil {
				delete(d, k)
				dropped = append(dropped, "data."+k+"(null)")
				continue
			}
			s, ok := coerceString(v)
			if !ok {
				delete(d, k)
				dropped = append(dropped, "data."+k+"(type)")
				continue
			}
			if isPlaceholder(s) {
				delete(d, k)
				dropped = append(dropped, "data."+k+"(empty)")
				continue
			}
			d[k] = s
		}
	}

	// 3) confidence must land as a number in [0,1]
	switch t := m["confidence"].(type) {
	case float64:
		if t < 0 || t > 1 {
			m["confidence"] = clamp01(t)
			dropped = append(dropped, "confidence(clamped)")
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			delete(m, "confidence")
			dropped = append(dropped, "confidence(type)")
		} else {
			m["confidence"] = clamp01(f)
			dropped = append(dropped, "confidence(coerced)")
		}
	case nil:
		delete(m, "confidence")
	}

	// 4) additional_info is a trimmed string or gone
	if v, ok := m["additional_info"]; ok {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			m["additional_info"] = strings.TrimSpace(s)
		} else {
			delete(m, "additional_info")
			dropped = append(dropped, "additional_info(empty)")
		}
	}

	// 5) remove unknown keys
	allowed := map[string]struct{}{
		"data": {}, "confidence": {}, "additional_info": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// NormalizeGenuinenessJSON coerces the authenticity verdict into the schema's
// shape. Unknown top-level keys are left alone; the verdict schema tolerates
// them.
func NormalizeGenuinenessJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	// is_genuine may arrive as a string verdict
	if v, ok := m["is_genuine"]; ok {
		switch t := v.(type) {
		case bool:
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true", "yes", "genuine":
				m["is_genuine"] = true
			case "false", "no", "not genuine":
				m["is_genuine"] = false
			default:
				delete(m, "is_genuine")
				dropped = append(dropped, "is_genuine(type)")
			}
			if _, still := m["is_genuine"]; still {
				dropped = append(dropped, "is_genuine(coerced)")
			}
		default:
			delete(m, "is_genuine")
			dropped = append(dropped, "is_genuine(type)")
		}
	}

	switch t := m["confidence_score"].(type) {
	case float64:
		if t < 0 || t > 1 {
			m["confidence_score"] = clamp01(t)
			dropped = append(dropped, "confidence_score(clamped)")
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			delete(m, "confidence_score")
			dropped = append(dropped, "confidence_score(type)")
		} else {
			m["confidence_score"] = clamp01(f)
			dropped = append(dropped, "confidence_score(coerced)")
		}
	case nil:
		delete(m, "confidence_score")
	}

	// checks must each carry a string check_type and a passed/failed status
	if arr, ok := m["verification_checks"].([]any); ok {
		kept := make([]any, 0, len(arr))
		for i, item := range arr {
			check, ok := item.(map[string]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("verification_checks[%d](shape)", i))
				continue
			}
			ct, _ := check["check_type"].(string)
			status, _ := check["status"].(string)
			status = normalizeCheckStatus(status)
			if strings.TrimSpace(ct) == "" || status == "" {
				dropped = append(dropped, fmt.Sprintf("verification_checks[%d](shape)", i))
				continue
			}
			check["status"] = status
			kept = append(kept, check)
		}
		m["verification_checks"] = kept
	}

	if arr, ok := m["security_features_found"].([]any); ok {
		kept := make([]any, 0, len(arr))
		for i, item := range arr {
			s, ok := item.(string)
			if !ok || strings.TrimSpace(s) == "" {
				dropped = append(dropped, fmt.Sprintf("security_features_found[%d](type)", i))
				continue
			}
			kept = append(kept, strings.TrimSpace(s))
		}
		m["security_features_found"] = kept
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.verify.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// isPlaceholder catches the "nothing here" strings models emit instead of
// omitting a field.
func isPlaceholder(s string) bool {
	switch strings.ToLower(s) {
	case "", "none", "null", "n/a", "na", "unknown", "not found", "not available":
		return true
	}
	return false
}

func normalizeCheckStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passed", "pass", "ok", "success":
		return "passed"
	case "failed", "fail", "error":
		return "failed"
	}
	return ""
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
