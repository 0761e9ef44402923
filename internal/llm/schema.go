package llm

// BuildExtractionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We use it locally to validate what the model sent back before
// trusting any of it.
func BuildExtractionJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"data": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"confidence":      confidenceProp(),
			"additional_info": map[string]any{"type": "string"},
		},
		"required": []string{"data", "confidence"},
	}
}

// BuildGenuinenessJSONSchema validates the authenticity verdict. Extra keys
// are tolerated; models tend to volunteer commentary fields here.
func BuildGenuinenessJSONSchema() map[string]any {
	check := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"check_type": map[string]any{"type": "string", "minLength": 1},
			"status":     map[string]any{"type": "string", "enum": []string{"passed", "failed"}},
			"details":    map[string]any{"type": "string"},
		},
		"required": []string{"check_type", "status"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"is_genuine":       map[string]any{"type": "boolean"},
			"confidence_score": confidenceProp(),
			"rejection_reason": map[string]any{"type": "string"},
			"verification_checks": map[string]any{
				"type":  "array",
				"items": check,
			},
			"security_features_found": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"verification_summary": map[string]any{"type": "string"},
		},
		"required": []string{"is_genuine", "confidence_score"},
	}
}

func confidenceProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
