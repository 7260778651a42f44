package cache

// Memo is a bounded memoization table keyed by a comparable structural key.
//
// A layer only ever needs the accessor for its current configuration (plus
// the previous one while a pass compares identities), so the table holds a
// handful of entries and evicts the oldest on a miss when full. A Memo
// belongs to exactly one owner and is not safe for concurrent use.
type Memo[K comparable, V any] struct {
	capacity int
	order    []K
	entries  map[K]V

	hits, misses int
}

// NewMemo returns a Memo holding at most capacity entries (minimum 1).
func NewMemo[K comparable, V any](capacity int) *Memo[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Memo[K, V]{
		capacity: capacity,
		order:    make([]K, 0, capacity),
		entries:  make(map[K]V, capacity),
	}
}

// Get returns the value stored under key, calling build and storing its
// result on a miss.
func (m *Memo[K, V]) Get(key K, build func() V) V {
	if v, ok := m.entries[key]; ok {
		m.hits++
		return v
	}
	m.misses++
	if len(m.order) == m.capacity {
		oldest := m.order[0]
		delete(m.entries, oldest)
		m.order = append(m.order[:0], m.order[1:]...)
	}
	v := build()
	m.entries[key] = v
	m.order = append(m.order, key)
	return v
}

// Len returns the number of stored entries.
func (m *Memo[K, V]) Len() int { return len(m.order) }

// Stats returns hit and miss counters.
func (m *Memo[K, V]) Stats() (hits, misses int) { return m.hits, m.misses }

// Reset drops every entry.
func (m *Memo[K, V]) Reset() {
	m.order = m.order[:0]
	clear(m.entries)
}
