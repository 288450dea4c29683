package compose

import "strings"

// Ref is a named reference from a service to another entity, with the optional
// attributes of the long or mapping syntax (network aliases, depends_on condition,
// secret target, ...).
type Ref struct {
	Name  string
	Attrs map[string]any
}

// Refs is the value of a service's networks, depends_on, secrets or configs key.
// Mapping selects the `name: {attrs}` syntax; otherwise refs are a sequence whose
// items are bare names, or `source:`-keyed mappings when they carry attributes.
type Refs struct {
	Items   []Ref
	Mapping bool
}

// RefsFromNames builds a short-form reference list.
func RefsFromNames(names ...string) Refs {
	if len(names) == 0 {
		return Refs{}
	}
	r := Refs{Items: make([]Ref, 0, len(names))}
	for _, n := range names {
		r.Items = append(r.Items, Ref{Name: n})
	}
	return r
}

// Names returns the referenced names in order.
func (r Refs) Names() []string {
	out := make([]string, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Name
	}
	return out
}

// Len returns the number of references.
func (r Refs) Len() int { return len(r.Items) }

// AsRefs accepts a sequence of names, a sequence of `source:` mappings, or a
// mapping keyed by name. Duplicate names keep their first occurrence. Mapping keys
// are taken in sorted order since neither JSON objects nor decoded YAML mappings
// keep theirs.
func AsRefs(v any) (Refs, bool) {
	var out Refs
	seen := make(map[string]bool)
	add := func(name string, attrs map[string]any) {
		if strings.TrimSpace(name) == "" || seen[name] {
			return
		}
		seen[name] = true
		out.Items = append(out.Items, Ref{Name: name, Attrs: attrs})
	}
	switch x := v.(type) {
	case []string:
		for _, name := range x {
			add(name, nil)
		}
	case []any:
		for _, item := range x {
			switch it := item.(type) {
			case string:
				add(it, nil)
			case map[string]any:
				src, ok := AsString(it["source"])
				if !ok {
					continue
				}
				add(src, withoutKey(it, "source"))
			}
		}
	case map[string]any:
		out.Mapping = true
		for _, name := range sortedKeys(x) {
			attrs, _ := AsMap(x[name])
			add(name, attrs)
		}
	}
	if len(out.Items) == 0 {
		return Refs{}, false
	}
	return out, true
}

// Data renders the references in node-data form.
func (r Refs) Data() any {
	if r.Mapping {
		m := make(map[string]any, len(r.Items))
		for _, it := range r.Items {
			attrs := make(map[string]any, len(it.Attrs))
			for k, v := range it.Attrs {
				attrs[k] = v
			}
			m[it.Name] = attrs
		}
		return m
	}
	out := make([]any, len(r.Items))
	for i, it := range r.Items {
		if len(it.Attrs) == 0 {
			out[i] = it.Name
			continue
		}
		m := map[string]any{"source": it.Name}
		for k, v := range it.Attrs {
			m[k] = v
		}
		out[i] = m
	}
	return out
}

func withoutKey(m map[string]any, key string) map[string]any {
	if len(m) <= 1 {
		return nil
	}
	out := make(map[string]any, len(m)-1)
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}
