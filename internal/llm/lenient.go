package llm

import (
	"encoding/json"
	"maps"
)

// RepairExtractionEnvelope is the second chance after strict validation
// fails. It only fills or removes envelope-level pieces; field values have
// already been through NormalizeExtractionJSON.
func RepairExtractionEnvelope(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var repaired []string

	data, ok := m["data"].(map[string]any)
	if !ok {
		data = map[string]any{}
		m["data"] = data
		repaired = append(repaired, "data")
	}

	if _, ok := m["confidence"].(float64); !ok {
		// a missing self-assessment gets a middling default, unless the
		// model produced nothing at all
		if len(data) > 0 {
			m["confidence"] = 0.5
		} else {
			m["confidence"] = 0.0
		}
		repaired = append(repaired, "confidence")
	}

	if v, ok := m["additional_info"]; ok {
		if _, isStr := v.(string); !isStr {
			delete(m, "additional_info")
			repaired = append(repaired, "additional_info")
		}
	}

	allowed := map[string]struct{}{"data": {}, "confidence": {}, "additional_info": {}}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			repaired = append(repaired, k)
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, repaired, nil
}

// RepairGenuinenessEnvelope fills a missing verdict the fail-safe way: no
// explicit verdict reads as a rejection.
func RepairGenuinenessEnvelope(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var repaired []string

	if _, ok := m["is_genuine"].(bool); !ok {
		m["is_genuine"] = false
		if _, has := m["rejection_reason"]; !has {
			m["rejection_reason"] = "verification response did not include a verdict"
		}
		repaired = append(repaired, "is_genuine")
	}
	if _, ok := m["confidence_score"].(float64); !ok {
		m["confidence_score"] = 0.0
		repaired = append(repaired, "confidence_score")
	}
	if v, ok := m["verification_checks"]; ok {
		if _, isArr := v.([]any); !isArr {
			delete(m, "verification_checks")
			repaired = append(repaired, "verification_checks")
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, repaired, nil
}
