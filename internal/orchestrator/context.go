package orchestrator

import (
	"reflect"
	"sort"
)

// WorkflowContext is the shared, string-keyed store that accumulates the
// output of every completed stage. It is owned by a single Orchestrator
// invocation: stages read it and return contributions, the driver performs
// all mutation. It is not safe for concurrent use and must not be retained
// after Execute returns.
type WorkflowContext struct {
	values map[string]any
}

// NewWorkflowContext creates a context seeded from the initial input map.
func NewWorkflowContext(initial map[string]any) *WorkflowContext {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &WorkflowContext{values: values}
}

// Set unconditionally stores value under key. This is the authoritative
// update channel: later stages use it to revise earlier contributions.
func (wc *WorkflowContext) Set(key string, value any) {
	wc.values[key] = value
}

// SetIfAbsent stores value under key only when the context has no truthy
// value there yet. This is the gap-filling channel: it never clobbers an
// earlier stage's contribution.
func (wc *WorkflowContext) SetIfAbsent(key string, value any) {
	if existing, ok := wc.values[key]; ok && !isFalsy(existing) {
		return
	}
	wc.values[key] = value
}

// Merge applies a successful stage result to the context: ContextUpdates
// overwrite, Output fills gaps. Update order matters; an authoritative
// revision in the same result wins over its own gap-filling output.
func (wc *WorkflowContext) Merge(result *StageResult) {
	for k, v := range result.ContextUpdates {
		wc.Set(k, v)
	}
	for k, v := range result.Output {
		wc.SetIfAbsent(k, v)
	}
}

// Has reports whether key holds a truthy value.
func (wc *WorkflowContext) Has(key string) bool {
	v, ok := wc.values[key]
	return ok && !isFalsy(v)
}

// Value returns the raw value stored under key.
func (wc *WorkflowContext) Value(key string) (any, bool) {
	v, ok := wc.values[key]
	return v, ok
}

// String returns the value under key as a string, or "" when absent or of
// another type.
func (wc *WorkflowContext) String(key string) string {
	s, _ := wc.values[key].(string)
	return s
}

// Float returns the value under key as a float64, accepting any numeric type.
func (wc *WorkflowContext) Float(key string) float64 {
	switch v := wc.values[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// StringSlice returns the value under key as a []string. A []any holding
// strings is converted; anything else yields nil.
func (wc *WorkflowContext) StringSlice(key string) []string {
	switch v := wc.values[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// StringMap returns the value under key as a map[string]string. A
// map[string]any holding strings is converted; anything else yields nil.
func (wc *WorkflowContext) StringMap(key string) map[string]string {
	switch v := wc.values[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, item := range v {
			if s, ok := item.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

// FloatMap returns the value under key as a map[string]float64, accepting
// any numeric value type.
func (wc *WorkflowContext) FloatMap(key string) map[string]float64 {
	switch v := wc.values[key].(type) {
	case map[string]float64:
		return v
	case map[string]any:
		out := make(map[string]float64, len(v))
		for k, item := range v {
			switch n := item.(type) {
			case float64:
				out[k] = n
			case float32:
				out[k] = float64(n)
			case int:
				out[k] = float64(n)
			case int64:
				out[k] = float64(n)
			}
		}
		return out
	}
	return nil
}

// Map returns the value under key as a map[string]any, or nil.
func (wc *WorkflowContext) Map(key string) map[string]any {
	m, _ := wc.values[key].(map[string]any)
	return m
}

// Keys returns every stored key in sorted order.
func (wc *WorkflowContext) Keys() []string {
	keys := make([]string, 0, len(wc.values))
	for k := range wc.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the stored values.
func (wc *WorkflowContext) Snapshot() map[string]any {
	out := make(map[string]any, len(wc.values))
	for k, v := range wc.values {
		out[k] = v
	}
	return out
}

// isFalsy reports whether a value counts as "empty" for gap-filling
// purposes: nil, empty string, false, numeric zero, or an empty
// slice/map/array.
func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case float32:
		return t == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
