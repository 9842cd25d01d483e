package form

import (
	"time"
)

// State maps field names to their current scalar value: a string, a bool,
// or the empty string when unset.
type State map[string]any

// Clone returns a shallow copy; values are scalars so this is a full copy
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String returns the value of name when it holds a string
func (s State) String(name string) string {
	if v, ok := s[name].(string); ok {
		return v
	}
	return ""
}

// Bool returns the value of name when it holds a bool
func (s State) Bool(name string) bool {
	if v, ok := s[name].(bool); ok {
		return v
	}
	return false
}

// NewState initializes a state from the schema defaults, in schema order.
// A date field defaulting to "today" takes now's date in YYYY-MM-DD form.
func NewState(schema *Schema, now time.Time) State {
	state := make(State)
	for _, f := range schema.Fields() {
		state[f.Name] = InitialValue(f, now)
	}
	return state
}

// InitialValue resolves the value a field holds before any edit
func InitialValue(f Field, now time.Time) any {
	if f.Default == nil {
		if f.Type == TypeCheckbox {
			return false
		}
		return ""
	}
	if s, ok := f.Default.(string); ok && s == DefaultToday && f.Type == TypeDate {
		return now.Format("2006-01-02")
	}
	return f.Default
}
