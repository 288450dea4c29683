package compose

import "reflect"

// Section is an insertion-ordered name -> config map. Assembly order and document
// order are preserved so that serialization is deterministic and round trips do
// not shuffle entities.
type Section[T any] struct {
	names []string
	items map[string]T
}

// Set stores v under name. Re-setting an existing name replaces the value and
// keeps its position.
func (s *Section[T]) Set(name string, v T) {
	if s.items == nil {
		s.items = make(map[string]T)
	}
	if _, ok := s.items[name]; !ok {
		s.names = append(s.names, name)
	}
	s.items[name] = v
}

// Get returns the value stored under name.
func (s *Section[T]) Get(name string) (T, bool) {
	v, ok := s.items[name]
	return v, ok
}

// Has reports whether name is present.
func (s *Section[T]) Has(name string) bool {
	_, ok := s.items[name]
	return ok
}

// Names returns the entity names in order.
func (s *Section[T]) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of entities.
func (s *Section[T]) Len() int { return len(s.names) }

// Each calls fn for every entity in order.
func (s *Section[T]) Each(fn func(name string, v T)) {
	for _, name := range s.names {
		fn(name, s.items[name])
	}
}

// Equal reports whether both sections hold the same entities in the same order.
func (s Section[T]) Equal(o Section[T]) bool {
	if len(s.names) != len(o.names) {
		return false
	}
	for i, name := range s.names {
		if o.names[i] != name || !reflect.DeepEqual(s.items[name], o.items[name]) {
			return false
		}
	}
	return true
}
