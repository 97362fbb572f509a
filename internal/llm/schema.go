package llm

// BuildAnalysisJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We send it to the oracle as an output constraint and use the
// same document locally as the persistence gate.
func BuildAnalysisJSONSchema() map[string]any {
	props := map[string]any{
		"overallScore":          scoreProp(0, 100),
		"atsCompatibilityScore": scoreProp(0, 100),
		"personalizedAdvice":    map[string]any{"type": "string"},
		"sections": map[string]any{
			"type":  "array",
			"items": sectionSchema(),
		},
		"strengths":       stringArrayProp(),
		"improvements":    stringArrayProp(),
		"keywordMatches":  map[string]any{"type": "array", "items": keywordMatchSchema()},
		"recommendations": map[string]any{"type": "array", "items": recommendationSchema()},
	}
	required := []string{
		"overallScore", "atsCompatibilityScore", "sections",
		"strengths", "improvements", "keywordMatches", "recommendations",
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// BuildJobMatchJSONSchema returns the schema for match mode. matchPercentage
// and hireabilityScore carry no cross-field constraint.
func BuildJobMatchJSONSchema() map[string]any {
	props := map[string]any{
		"matchPercentage":  scoreProp(0, 100),
		"hireabilityScore": scoreProp(0, 100),
		"matchAnalysis":    map[string]any{"type": "string"},
		"keywordMatches":   map[string]any{"type": "array", "items": keywordMatchSchema()},
		"missingKeywords":  stringArrayProp(),
		"strengths":        stringArrayProp(),
		"improvements":     stringArrayProp(),
		"recommendations":  map[string]any{"type": "array", "items": recommendationSchema()},
	}
	required := []string{
		"matchPercentage", "hireabilityScore", "matchAnalysis",
		"keywordMatches", "missingKeywords", "strengths", "improvements",
		"recommendations",
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func sectionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "minLength": 1},
			"score":    scoreProp(0, 100),
			"feedback": map[string]any{"type": "string"},
			"icon":     map[string]any{"type": "string", "enum": SectionIcons},
			"metrics":  map[string]any{"type": "array", "items": metricSchema()},
		},
		"required": []string{"name", "score", "feedback", "icon", "metrics"},
	}
}

func metricSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label":      map[string]any{"type": "string"},
			"score":      scoreProp(0, 10),
			"max":        map[string]any{"const": 10},
			"suggestion": map[string]any{"type": "string"},
		},
		"required": []string{"label", "score", "max", "suggestion"},
	}
}

func keywordMatchSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keyword":   map[string]any{"type": "string"},
			"frequency": map[string]any{"type": "integer", "minimum": 0},
			"relevance": map[string]any{"type": "string", "enum": RelevanceLevels},
		},
		"required": []string{"keyword", "frequency", "relevance"},
	}
}

func recommendationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"priority":    map[string]any{"type": "string", "enum": PriorityLevels},
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
		"required": []string{"priority", "title", "description"},
	}
}

func scoreProp(min, max int) map[string]any {
	return map[string]any{"type": "integer", "minimum": min, "maximum": max}
}

func stringArrayProp() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}
