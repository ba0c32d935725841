package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ldbrepl/internal/storage"
)

// spyStore counts Close calls on top of an in-memory store.
type spyStore struct {
	*storage.Memory
	closes int
}

func newSpyStore() *spyStore {
	return &spyStore{Memory: storage.NewMemory()}
}

func (s *spyStore) Close() error {
	s.closes++
	return s.Memory.Close()
}

func TestSession_ZeroValueIsClosed(t *testing.T) {
	t.Parallel()
	var sess Session
	assert.Nil(t, sess.Store())
}

func TestSession_BindExposesStore(t *testing.T) {
	t.Parallel()
	var sess Session
	store := newSpyStore()
	sess.Bind(store)
	assert.Same(t, storage.Store(store), sess.Store())
	assert.Zero(t, store.closes)
}

func TestSession_BindReleasesPrevious(t *testing.T) {
	t.Parallel()
	var sess Session
	first := newSpyStore()
	second := newSpyStore()

	sess.Bind(first)
	sess.Bind(second)

	assert.Equal(t, 1, first.closes)
	assert.Zero(t, second.closes)
	assert.Same(t, storage.Store(second), sess.Store())
}

func TestSession_ReleaseClosesOnce(t *testing.T) {
	t.Parallel()
	var sess Session
	store := newSpyStore()
	sess.Bind(store)

	sess.Release()
	sess.Release()

	assert.Equal(t, 1, store.closes)
	assert.Nil(t, sess.Store())
}

func TestSession_ReleaseWhenClosedIsNoOp(t *testing.T) {
	t.Parallel()
	var sess Session
	sess.Release()
	assert.Nil(t, sess.Store())
}
