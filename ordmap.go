package mot2coco

// ordmap is an insertion ordered mapping of positive integer ids to records.
// Writing an existing key replaces the value in place and keeps the original
// insertion position, matching the replay semantics of the unified dataset
// loader; duplicate arrivals are surfaced by the duplicate audit, not by the
// container.
type ordmap[V any] struct {
	keys  []int
	items map[int]V
}

func newOrdmap[V any]() ordmap[V] {
	return ordmap[V]{
		items: make(map[int]V),
	}
}

// set inserts or replaces the value for key
func (m *ordmap[V]) set(key int, v V) {

	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.items[key] = v
}

// get returns the value for key
func (m *ordmap[V]) get(key int) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

// ids returns the keys in insertion order
func (m *ordmap[V]) ids() []int {
	out := make([]int, len(m.keys))
	copy(out, m.keys)
	return out
}

// values returns the values in insertion order
func (m *ordmap[V]) values() []V {

	out := make([]V, 0, len(m.keys))

	for _, key := range m.keys {
		out = append(out, m.items[key])
	}

	return out
}

// size returns the number of entries
func (m *ordmap[V]) size() int {
	return len(m.keys)
}
