// Package parser turns a Judge's raw text response into typed partial
// results, tolerating best-effort JSON repair per §4.10/§9: other components
// assume typed input and never see malformed JSON directly.
package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// GateRuleResult is one rule's verdict from a binary-gate Judge call.
type GateRuleResult struct {
	Triggered bool   `json:"triggered"`
	Reasoning string `json:"reasoning"`
}

// ChecklistItemResult is one item's verdict from a checklist Judge call.
// Level is the raw string the LLM returned ("na" or a numeric level key).
type ChecklistItemResult struct {
	Level     string
	Reasoning string
}

// OrdinalResult is the single anchor selection from an ordinal Judge call.
type OrdinalResult struct {
	Value      int
	Reasoning  string
	Confidence float64
}

// ParseGateResponse parses a `{ rule_id: { triggered, reasoning } }` object.
func ParseGateResponse(raw string) (map[string]GateRuleResult, error) {
	repaired, err := repair(raw)
	if err != nil {
		return nil, err
	}

	var out map[string]GateRuleResult
	if err := json.Unmarshal(repaired, &out); err != nil {
		return nil, fmt.Errorf("parser: gate response: %w", err)
	}

	return out, nil
}

// ParseChecklistResponse parses a `{ item_id: { level, reasoning } }` object.
// level may arrive as a JSON number or the string "na"; both are normalized
// to their string form so the aggregator can branch on "na" uniformly.
func ParseChecklistResponse(raw string) (map[string]ChecklistItemResult, error) {
	repaired, err := repair(raw)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(repaired)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("parser: checklist response: not a JSON object")
	}

	out := make(map[string]ChecklistItemResult)
	var parseErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		level := value.Get("level")
		result := ChecklistItemResult{
			Reasoning: value.Get("reasoning").String(),
		}
		if level.Type == gjson.String {
			result.Level = level.String()
		} else if level.Exists() {
			result.Level = level.Raw
		} else {
			parseErr = fmt.Errorf("parser: checklist item %q missing level", key.String())
			return false
		}
		out[key.String()] = result
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	return out, nil
}

// ParseOrdinalResponse parses `{ value, reasoning, confidence }`.
func ParseOrdinalResponse(raw string) (OrdinalResult, error) {
	repaired, err := repair(raw)
	if err != nil {
		return OrdinalResult{}, err
	}

	var out OrdinalResult
	if err := json.Unmarshal(repaired, &out); err != nil {
		return OrdinalResult{}, fmt.Errorf("parser: ordinal response: %w", err)
	}

	return out, nil
}

// repair returns raw as-is if it already parses as JSON; otherwise it
// attempts a best-effort recovery by isolating the first top-level JSON
// object in the text, stripping any surrounding prose the model emitted.
func repair(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}

	start := strings.IndexByte(trimmed, '{')
	if start < 0 {
		return nil, fmt.Errorf("parser: no JSON object found in response")
	}

	depth := 0
	for i := start; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := trimmed[start : i+1]
				if json.Valid([]byte(candidate)) {
					return []byte(candidate), nil
				}
				return nil, fmt.Errorf("parser: could not repair malformed JSON response")
			}
		}
	}

	return nil, fmt.Errorf("parser: unterminated JSON object in response")
}
