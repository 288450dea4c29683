package compose

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Field extractors pull a typed value out of an untyped node-data or YAML value.
// The boolean result is the absent marker: false means "omit this field". Empty
// strings, empty sequences and empty mappings are absent. Extractors never panic;
// a value of the wrong shape is absent too.

// RestartPolicy is the service restart strategy.
type RestartPolicy string

const (
	RestartNo            RestartPolicy = "no"
	RestartAlways        RestartPolicy = "always"
	RestartOnFailure     RestartPolicy = "on-failure"
	RestartUnlessStopped RestartPolicy = "unless-stopped"
)

// AsString returns v when it is a string that is not blank.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// AsStringArray filters a sequence to its non-empty strings. Numbers are kept in
// their decimal form so that `ports: [80]` survives a YAML round trip.
func AsStringArray(v any) ([]string, bool) {
	var out []string
	switch list := v.(type) {
	case []string:
		for _, s := range list {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range list {
			if s, ok := scalarString(item, false); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// AsStringMap returns the string-valued entries of a mapping, dropping empty keys.
// Numeric and boolean values are converted to their text form.
func AsStringMap(v any) (map[string]string, bool) {
	out := make(map[string]string)
	switch m := v.(type) {
	case map[string]string:
		for k, val := range m {
			if strings.TrimSpace(k) != "" {
				out[k] = val
			}
		}
	case map[string]any:
		for k, val := range m {
			if strings.TrimSpace(k) == "" {
				continue
			}
			if val == nil {
				out[k] = ""
				continue
			}
			if s, ok := scalarString(val, true); ok {
				out[k] = s
			}
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// AsRestartPolicy accepts only the known restart policies. "on-failure:N"
// (a retry limit) is accepted as a form of on-failure.
func AsRestartPolicy(v any) (RestartPolicy, bool) {
	s, ok := AsString(v)
	if !ok {
		return "", false
	}
	switch RestartPolicy(s) {
	case RestartNo, RestartAlways, RestartOnFailure, RestartUnlessStopped:
		return RestartPolicy(s), true
	}
	if n, found := strings.CutPrefix(s, string(RestartOnFailure)+":"); found {
		if _, err := strconv.Atoi(n); err == nil {
			return RestartPolicy(s), true
		}
	}
	return "", false
}

// Environment holds either the list form ("KEY=VAL") or the mapping form of a
// service environment. Exactly one of List and Map is set.
type Environment struct {
	List []string
	Map  map[string]string
}

// AsEnvironment accepts a "KEY=VAL" sequence or a string mapping and keeps
// whichever form was given. A mapping with a null value (`KEY:`, taken from the
// shell) is read into the list form, where that entry is the bare `KEY`; the
// mapping form has no way to write it without emitting a null.
func AsEnvironment(v any) (Environment, bool) {
	if list, ok := AsStringArray(v); ok {
		return Environment{List: list}, true
	}
	raw, _ := v.(map[string]any)
	inherited := false
	for k, val := range raw {
		if val == nil && strings.TrimSpace(k) != "" {
			inherited = true
			break
		}
	}
	if !inherited {
		if m, ok := AsStringMap(v); ok {
			return Environment{Map: m}, true
		}
		return Environment{}, false
	}
	var list []string
	for _, k := range sortedKeys(raw) {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if raw[k] == nil {
			list = append(list, k)
			continue
		}
		if s, ok := scalarString(raw[k], true); ok {
			list = append(list, k+"="+s)
		}
	}
	return Environment{List: list}, true
}

// Data renders the environment in its original form.
func (e Environment) Data() any {
	if e.List != nil {
		return stringsToAny(e.List)
	}
	return stringMapToAny(e.Map)
}

// AsBool returns v when it is a boolean.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsInt returns v when it is an integral number.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
	}
	return 0, false
}

// AsMap returns a non-empty string-keyed mapping.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	return m, true
}

// StringOrList is a value that compose accepts either as a single string or as a
// sequence (command, entrypoint, healthcheck test). The given form is kept.
type StringOrList struct {
	Value string
	List  []string
}

// AsStringOrList accepts a non-blank string or a non-empty string sequence.
func AsStringOrList(v any) (StringOrList, bool) {
	if s, ok := AsString(v); ok {
		return StringOrList{Value: s}, true
	}
	if list, ok := AsStringArray(v); ok {
		return StringOrList{List: list}, true
	}
	return StringOrList{}, false
}

// Data renders the value in its original form.
func (s StringOrList) Data() any {
	if s.List != nil {
		return stringsToAny(s.List)
	}
	return s.Value
}

func scalarString(v any, allowBool bool) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		if allowBool {
			return strconv.FormatBool(x), true
		}
	}
	return "", false
}

func stringsToAny(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

func stringMapToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
