package storage

import (
	"slices"
	"sync"
)

func init() {
	Register("memory", func(string) (Store, error) {
		return NewMemory(), nil
	})
}

// Memory is an in-memory Store for tests and throwaway sessions. The open
// path is ignored; every open produces a fresh, empty store.
type Memory struct {
	mu    sync.Mutex
	pairs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{pairs: make(map[string][]byte)}
}

func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.pairs[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(value), nil
}

func (m *Memory) Put(key, value []byte, sync bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[string(key)] = slices.Clone(value)
	return nil
}

// Iter snapshots the pairs in ascending key order; writes after Iter
// returns do not affect the iteration.
func (m *Memory) Iter() Iterator {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.pairs))
	for key := range m.pairs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	pairs := make([]memoryPair, len(keys))
	for i, key := range keys {
		pairs[i] = memoryPair{key: []byte(key), value: slices.Clone(m.pairs[key])}
	}
	return &memoryIterator{pairs: pairs}
}

func (m *Memory) Close() error { return nil }

type memoryPair struct {
	key   []byte
	value []byte
}

type memoryIterator struct {
	pairs []memoryPair
	pos   int
}

func (it *memoryIterator) Next() bool {
	if it.pos >= len(it.pairs) {
		return false
	}
	it.pos++
	return true
}

// Key is nil until the first Next, like the other drivers.
func (it *memoryIterator) Key() []byte {
	if it.pos == 0 {
		return nil
	}
	return it.pairs[it.pos-1].key
}

func (it *memoryIterator) Value() []byte {
	if it.pos == 0 {
		return nil
	}
	return it.pairs[it.pos-1].value
}

func (it *memoryIterator) Err() error { return nil }
func (it *memoryIterator) Release()  {}
