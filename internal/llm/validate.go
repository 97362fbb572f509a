package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"resumai/internal/common"
)

// DecodeAnalysis runs the two-stage decode for analysis mode: parse the raw
// oracle output as generic JSON, validate it against the analysis schema,
// then bind it to the typed result. The two failure kinds stay distinct:
// unparseable input is ErrOracleMalformed, schema-noncompliant input is a
// ContractViolationError naming the field and constraint.
func DecodeAnalysis(raw []byte) (AnalysisResult, error) {
	var out AnalysisResult
	if err := decodeAgainstSchema(BuildAnalysisJSONSchema(), raw, &out); err != nil {
		return AnalysisResult{}, err
	}
	return out, nil
}

// DecodeJobMatch is the match-mode counterpart of DecodeAnalysis.
func DecodeJobMatch(raw []byte) (JobMatchResult, error) {
	var out JobMatchResult
	if err := decodeAgainstSchema(BuildJobMatchJSONSchema(), raw, &out); err != nil {
		return JobMatchResult{}, err
	}
	return out, nil
}

func decodeAgainstSchema(schemaMap map[string]any, raw []byte, out any) error {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("%w: %v", common.ErrOracleMalformed, err)
	}
	if err := validateAgainstSchema(schemaMap, generic); err != nil {
		return err
	}
	// The document is schema-clean; binding cannot reintroduce violations.
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrOracleMalformed, err)
	}
	return nil
}

// validateAgainstSchema validates a decoded generic value against schemaMap.
// Schema violations come back as *common.ContractViolationError.
func validateAgainstSchema(schemaMap map[string]any, v any) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return violationFrom(ve)
		}
		return fmt.Errorf("%w: %v", common.ErrContractViolation, err)
	}
	return nil
}

// violationFrom reduces a validation error tree to its most specific cause
// and reports it as field + constraint.
func violationFrom(ve *jsonschema.ValidationError) *common.ContractViolationError {
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.ReplaceAll(strings.TrimPrefix(leaf.InstanceLocation, "/"), "/", ".")
	if field == "" {
		field = "(document)"
	}
	return &common.ContractViolationError{Field: field, Constraint: leaf.Message}
}
