package engine

import (
	"fmt"
	"strconv"
	"strings"

	"evalengine/pkg/schema"
)

// scaleInfo populates the `scale_info` field per §4.9.
func scaleInfo(s *schema.Schema) map[string]any {
	switch s.Kind {
	case schema.KindOrdinal:
		return map[string]any{
			"type":    "ordinal_rubric",
			"range":   rangeString(s.OutputRange),
			"anchors": len(s.Ordinal.Anchors),
		}
	case schema.KindChecklist:
		min, max := "0", fmt.Sprintf("%g", s.Checklist.Aggregator.ScaleFactor)
		return map[string]any{
			"type":            "checklist_additive",
			"raw_range":       "0.0-1.0",
			"normalized_range": min + "-" + max,
		}
	case schema.KindBinaryGate:
		return map[string]any{
			"type":  "binary_gate",
			"rules": len(s.BinaryGate.Rules),
		}
	case schema.KindDerived:
		return map[string]any{
			"type":         "derived",
			"dependencies": len(s.Dependencies),
		}
	default:
		return map[string]any{"type": string(s.Kind)}
	}
}

// derivedScaleInfo is scaleInfo's derived case, enriched with the matched
// rule's method and weights per §4.9 ("derived: {type, method, dependencies,
// weights?}"). Used once a rule has actually matched; the no-match default
// path has no single rule to report a method for, so it falls back to the
// generic scaleInfo above.
func derivedScaleInfo(s *schema.Schema, rule schema.DerivedRule) map[string]any {
	info := map[string]any{
		"type":         "derived",
		"dependencies": len(s.Dependencies),
	}
	if method, ok := rule.Value.(string); ok {
		info["method"] = method
	} else {
		info["method"] = "literal"
	}
	if len(rule.Weights) > 0 {
		info["weights"] = rule.Weights
	}
	return info
}

func rangeString(r schema.OutputRange) string {
	if r.Min == nil || r.Max == nil {
		return ""
	}
	return fmt.Sprintf("%g-%g", *r.Min, *r.Max)
}

// resolveLabel chooses a label per §4.9/§9: exact key match on the value's
// string form, then a containing numeric range key like "3.5-4.4", then the
// fallback label supplied by the matched anchor/rule, else "".
func resolveLabel(labels map[string]string, value any, fallback string) string {
	if labels == nil {
		return fallback
	}

	exactKey := fmt.Sprintf("%v", value)
	if label, ok := labels[exactKey]; ok {
		return label
	}

	if f, ok := toFloat(value); ok {
		for key, label := range labels {
			lo, hi, ok := parseRangeKey(key)
			if ok && f >= lo && f <= hi {
				return label
			}
		}
	}

	if fallback != "" {
		return fallback
	}

	return ""
}

func parseRangeKey(key string) (lo, hi float64, ok bool) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}

	return lo, hi, true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
