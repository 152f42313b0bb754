package component

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("components")

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("component: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Entry is the cached result of compiling one component
type Entry struct {
	ClassName string `cbor:"1,keyasint"`
	Output    string `cbor:"2,keyasint"`
	SourceMap []byte `cbor:"3,keyasint,omitempty"`
	Manifest  []byte `cbor:"4,keyasint,omitempty"`
	// Children maps component tags to the paths of the imports
	Children map[string]string `cbor:"5,keyasint,omitempty"`
	Styles   []string          `cbor:"6,keyasint,omitempty"`
}

// MarshalEntry serializes an Entry to canonical CBOR bytes.
func MarshalEntry(e *Entry) ([]byte, error) {
	return cborEncMode.Marshal(e)
}

// UnmarshalEntry deserializes an Entry from CBOR bytes.
func UnmarshalEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("component: unmarshal entry: %w", err)
	}
	return &e, nil
}

// Store is the persistent compile cache, a bbolt file keyed by source hash.
type Store struct {
	filename string
	db       *bolt.DB
}

// OpenStore opens or creates the cache file.
func OpenStore(filename string) (*Store, error) {
	db, err := bolt.Open(filename, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", filename, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache %s: %w", filename, err)
	}
	return &Store{filename: filename, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func storeKey(hash uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, hash)
	return key
}

// Get returns the entry stored under hash.
func (s *Store) Get(hash uint64) (*Entry, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get(storeKey(hash)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read cache %s: %w", s.filename, err)
	}
	if data == nil {
		return nil, false, nil
	}
	e, err := UnmarshalEntry(data)
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// Put stores e under hash, replacing any previous entry.
func (s *Store) Put(hash uint64, e *Entry) error {
	data, err := MarshalEntry(e)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", e.ClassName, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(storeKey(hash), data)
	})
}

// Len returns the number of cached entries.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n, err
}
