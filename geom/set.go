package geom

import "gonum.org/v1/gonum/spatial/r2"

// NamedSet is a keyed collection that remembers insertion order. Keyed
// distance results and radius filtering are defined to be reproducible,
// which requires deterministic iteration; a plain map cannot provide
// that, so the set tracks key order separately.
type NamedSet[V any] struct {
	keys   []string
	values map[string]V
}

// PointSet is an insertion-ordered collection of named points.
type PointSet = NamedSet[r2.Vec]

// PolygonSet is an insertion-ordered collection of named polygons.
type PolygonSet = NamedSet[Polygon]

// NewPointSet returns an empty PointSet.
func NewPointSet() *PointSet { return NewNamedSet[r2.Vec]() }

// NewPolygonSet returns an empty PolygonSet.
func NewPolygonSet() *PolygonSet { return NewNamedSet[Polygon]() }

// NewNamedSet returns an empty ordered set.
func NewNamedSet[V any]() *NamedSet[V] {
	return &NamedSet[V]{values: make(map[string]V)}
}

// Add inserts or replaces the value for key. Re-adding an existing key
// overwrites the value but keeps the key's original position.
func (s *NamedSet[V]) Add(key string, v V) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// Get returns the value for key and whether it is present.
func (s *NamedSet[V]) Get(key string) (V, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of entries.
func (s *NamedSet[V]) Len() int { return len(s.keys) }

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not mutate it.
func (s *NamedSet[V]) Keys() []string { return s.keys }

// Each calls fn for every entry in insertion order.
func (s *NamedSet[V]) Each(fn func(key string, v V)) {
	for _, k := range s.keys {
		fn(k, s.values[k])
	}
}
