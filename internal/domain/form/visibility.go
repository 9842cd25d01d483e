package form

// IsVisible reports whether f should be rendered and validated for state.
// The condition holds only when the referenced value equals the expected one
// with the same type: "true" never matches true, and a non-empty value is not
// enough on its own. Strings compare after NFC normalization.
func IsVisible(f Field, state State) bool {
	if f.VisibleIf == nil {
		return true
	}
	return scalarEqual(state[f.VisibleIf.Field], f.VisibleIf.Value)
}

// VisibleFields returns the visible field names of every step, keyed by step title
func VisibleFields(schema *Schema, state State) map[string][]string {
	out := make(map[string][]string, len(schema.Steps))
	for _, step := range schema.Steps {
		names := make([]string, 0, len(step.Fields))
		for _, f := range step.Fields {
			if IsVisible(f, state) {
				names = append(names, f.Name)
			}
		}
		out[step.Title] = names
	}
	return out
}

func scalarEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && SameText(av, bv)
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}
