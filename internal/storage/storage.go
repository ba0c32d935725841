// Package storage provides the key-value stores the repl operates on,
// behind a driver registry. Drivers register themselves at init; callers
// open a store via a target string of the form "driver:path" or a bare
// path, which selects the default driver.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Store.Get when the key does not exist.
// Drivers normalize their engine-specific not-found errors to this value.
var ErrNotFound = errors.New("not found")

// Store is a single open key-value store.
//
// Implementations are safe for use from one goroutine at a time; the repl
// serializes access. Close is idempotent.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Put sets key to value. When sync is true the write is flushed to
	// stable storage before returning, where the engine supports it.
	Put(key, value []byte, sync bool) error

	// Iter returns an iterator over all pairs in the store's defined
	// order. The caller must call Release when done.
	Iter() Iterator

	// Close releases the store. Calling Close more than once is a no-op.
	Close() error
}

// Iterator walks key-value pairs in order. Key and Value are only valid
// until the next call to Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Release()
}

// Factory creates a store at the given path, creating the underlying
// database if it does not exist.
type Factory func(path string) (Store, error)

// DefaultDriver is used when the open target carries no driver prefix.
const DefaultDriver = "leveldb"

var drivers = make(map[string]Factory)

// Register makes a driver available under name. It panics if name is
// already taken; drivers register from init functions.
func Register(name string, factory Factory) {
	if _, dup := drivers[name]; dup {
		panic(fmt.Sprintf("storage: driver %q registered twice", name))
	}
	drivers[name] = factory
}

// Open opens a store for target. A target of the form "driver:path"
// selects a registered driver; anything else is a path for DefaultDriver.
// A prefix that is not a registered driver name is treated as part of the
// path, so Windows-style paths and relative paths with colons still work.
func Open(target string) (Store, error) {
	if prefix, rest, ok := strings.Cut(target, ":"); ok {
		if factory, known := drivers[prefix]; known {
			return factory(rest)
		}
	}
	factory, ok := drivers[DefaultDriver]
	if !ok {
		return nil, fmt.Errorf("storage: default driver %q not registered", DefaultDriver)
	}
	return factory(target)
}
