package storage

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

func init() {
	Register("leveldb", openLevelDB)
}

// levelStore adapts goleveldb to Store. goleveldb returns an error on a
// second Close, so it is wrapped in a sync.Once.
type levelStore struct {
	db        *leveldb.DB
	closeOnce sync.Once
	closeErr  error
}

func openLevelDB(path string) (Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &levelStore{db: db}, nil
}

func (s *levelStore) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (s *levelStore) Put(key, value []byte, sync bool) error {
	return s.db.Put(key, value, &opt.WriteOptions{Sync: sync})
}

func (s *levelStore) Iter() Iterator {
	return levelIterator{it: s.db.NewIterator(nil, nil)}
}

func (s *levelStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

type levelIterator struct {
	it iterator.Iterator
}

func (l levelIterator) Next() bool    { return l.it.Next() }
func (l levelIterator) Key() []byte   { return l.it.Key() }
func (l levelIterator) Value() []byte { return l.it.Value() }
func (l levelIterator) Err() error    { return l.it.Error() }
func (l levelIterator) Release()      { l.it.Release() }
