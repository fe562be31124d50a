package ledger

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

// DefaultOpenTimeout bounds how long OpenBoltStore waits for another
// process to release the database lock.
const DefaultOpenTimeout = 2 * time.Second

var (
	bucketAccess     = []byte("access")
	bucketSettings   = []byte("settings")
	bucketReferences = []byte("references")

	settingsKey = []byte("settings")
)

// BoltStore persists the ledger in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath, waiting at
// most DefaultOpenTimeout for the file lock.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	return OpenBoltStoreTimeout(dbPath, DefaultOpenTimeout)
}

// OpenBoltStoreTimeout is OpenBoltStore with an explicit lock timeout.
// ErrInUse is returned when another process holds the database.
func OpenBoltStoreTimeout(dbPath string, timeout time.Duration) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: timeout})
	if errors.Is(err, bolterrors.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrInUse, dbPath)
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAccess, bucketSettings, bucketReferences} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Path returns the database file path.
func (s *BoltStore) Path() string { return s.db.Path() }

// View implements Store.
func (s *BoltStore) View(fn func(Tx) error) error {
	if fn == nil {
		return fmt.Errorf("%w: fn", ErrNilParam)
	}
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// Update implements Store.
func (s *BoltStore) Update(fn func(Tx) error) error {
	if fn == nil {
		return fmt.Errorf("%w: fn", ErrNilParam)
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// Close implements Store.
func (s *BoltStore) Close() error { return s.db.Close() }

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// boltTx adapts a bbolt transaction to Tx.
type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) writable() error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	return nil
}

func (t *boltTx) Settings() (Settings, error) {
	var st Settings
	data := t.tx.Bucket(bucketSettings).Get(settingsKey)
	if data == nil {
		return st, nil
	}
	if err := decodeGob(data, &st); err != nil {
		return Settings{}, fmt.Errorf("ledger: decode settings: %w", err)
	}
	return st, nil
}

func (t *boltTx) PutSettings(st Settings) error {
	if err := t.writable(); err != nil {
		return err
	}
	data, err := encodeGob(st)
	if err != nil {
		return fmt.Errorf("ledger: encode settings: %w", err)
	}
	return t.tx.Bucket(bucketSettings).Put(settingsKey, data)
}

func (t *boltTx) Record(key AccessKey) (AccessRecord, error) {
	data := t.tx.Bucket(bucketAccess).Get(key.Encode())
	if data == nil {
		return AccessRecord{}, ErrRecordNotFound
	}
	var rec AccessRecord
	if err := decodeGob(data, &rec); err != nil {
		return AccessRecord{}, fmt.Errorf("ledger: decode record: %w", err)
	}
	return rec, nil
}

func (t *boltTx) PutRecord(key AccessKey, rec AccessRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	b := t.tx.Bucket(bucketAccess)
	k := key.Encode()
	if b.Get(k) != nil {
		return fmt.Errorf("%w: %s", ErrRecordExists, key)
	}
	data, err := encodeGob(rec)
	if err != nil {
		return fmt.Errorf("ledger: encode record: %w", err)
	}
	if err := b.Put(k, data); err != nil {
		return fmt.Errorf("ledger: put record: %w", err)
	}
	return nil
}

func (t *boltTx) ForEachRecord(fn func(AccessKey, AccessRecord) error) error {
	return t.tx.Bucket(bucketAccess).ForEach(func(k, v []byte) error {
		key, err := DecodeKey(k)
		if err != nil {
			return err
		}
		var rec AccessRecord
		if err := decodeGob(v, &rec); err != nil {
			return fmt.Errorf("ledger: decode record: %w", err)
		}
		return fn(key, rec)
	})
}

func (t *boltTx) ReferenceOwner(ref string) (AccessKey, bool, error) {
	data := t.tx.Bucket(bucketReferences).Get([]byte(ref))
	if data == nil {
		return AccessKey{}, false, nil
	}
	var key AccessKey
	if err := decodeGob(data, &key); err != nil {
		return AccessKey{}, false, fmt.Errorf("ledger: decode reference: %w", err)
	}
	return key, true, nil
}

func (t *boltTx) UseReference(ref string, key AccessKey) error {
	if err := t.writable(); err != nil {
		return err
	}
	if ref == "" {
		return fmt.Errorf("%w: empty reference", ErrInvalidKey)
	}
	b := t.tx.Bucket(bucketReferences)
	if b.Get([]byte(ref)) != nil {
		return fmt.Errorf("%w: %s", ErrReferenceUsed, ref)
	}
	data, err := encodeGob(key)
	if err != nil {
		return fmt.Errorf("ledger: encode reference: %w", err)
	}
	return b.Put([]byte(ref), data)
}
