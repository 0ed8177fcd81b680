// Package bolt persists guard state in a bbolt database.
//
// State lives under two keys in a single bucket: "whitelist" holds the
// JSON-encoded trusted domain list, "history" the JSON-encoded entry
// sequence. The store offers plain get/set with no cross-call atomicity;
// the repos above it own serialization.
package bolt

import (
	"time"

	bbolt "go.etcd.io/bbolt"
)

var bucketState = []byte("state")

// Store implements the persistence port over a single bbolt bucket.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) a bolt database at path and ensures the state
// bucket exists.
func New(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the value stored under key, with found=false when the key has
// never been written.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketState)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = make([]byte, len(v))
			copy(value, v)
			found = true
		}
		return nil
	})
	return value, found, err
}

// Set writes value under key, replacing any previous value.
func (s *Store) Set(key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketState)
		return b.Put([]byte(key), value)
	})
}
