package engine

import (
	"fmt"

	"evalengine/pkg/schema"
)

// validateValue enforces §4.1's result guarantee / §8 invariant 1: every
// result's value lies within its schema's output_range. Boolean gate/derived
// results have nothing to bound; a kind whose output_range declares no
// min/max skips the check rather than reject a schema that never stated one.
func validateValue(s *schema.Schema, value any) error {
	if _, ok := value.(bool); ok {
		return nil
	}

	f, ok := toFloat(value)
	if !ok {
		return nil
	}

	r := s.OutputRange
	if r.Min != nil && f < *r.Min {
		return fmt.Errorf("engine: %s: value %v below output_range min %v", s.ID, value, *r.Min)
	}
	if r.Max != nil && f > *r.Max {
		return fmt.Errorf("engine: %s: value %v above output_range max %v", s.ID, value, *r.Max)
	}

	return nil
}

// validateOrdinalValue checks that an ordinal schema's parsed value actually
// names one of its declared anchors: an ordinal's legal value set is its
// (possibly non-contiguous) anchor ladder, which a plain numeric range check
// can't fully express.
func validateOrdinalValue(s *schema.Schema, value int) error {
	for _, a := range s.Ordinal.Anchors {
		if a.Value == value {
			return nil
		}
	}
	return fmt.Errorf("engine: %s: value %d does not match any anchor", s.ID, value)
}
