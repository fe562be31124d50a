package ledger

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store. Update stages writes on top of the
// committed state and applies them only when fn succeeds.
type MemStore struct {
	mu       sync.RWMutex
	settings *Settings
	records  map[string]AccessRecord
	refs     map[string]AccessKey
	closed   bool
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory ledger.
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]AccessRecord),
		refs:    make(map[string]AccessKey),
	}
}

// View implements Store.
func (s *MemStore) View(fn func(Tx) error) error {
	if fn == nil {
		return fmt.Errorf("%w: fn", ErrNilParam)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(&memTx{store: s, readOnly: true})
}

// Update implements Store.
func (s *MemStore) Update(fn func(Tx) error) error {
	if fn == nil {
		return fmt.Errorf("%w: fn", ErrNilParam)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx := &memTx{
		store:   s,
		records: make(map[string]AccessRecord),
		refs:    make(map[string]AccessKey),
	}
	if err := fn(tx); err != nil {
		return err
	}

	if tx.settings != nil {
		st := *tx.settings
		s.settings = &st
	}
	for k, r := range tx.records {
		s.records[k] = r
	}
	for ref, k := range tx.refs {
		s.refs[ref] = k
	}
	return nil
}

// Close implements Store.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// memTx reads through its staged writes to the committed maps.
type memTx struct {
	store    *MemStore
	readOnly bool

	settings *Settings
	records  map[string]AccessRecord
	refs     map[string]AccessKey
}

func (tx *memTx) Settings() (Settings, error) {
	if tx.settings != nil {
		return *tx.settings, nil
	}
	if tx.store.settings != nil {
		return *tx.store.settings, nil
	}
	return Settings{}, nil
}

func (tx *memTx) PutSettings(st Settings) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	tx.settings = &st
	return nil
}

func (tx *memTx) Record(key AccessKey) (AccessRecord, error) {
	k := string(key.Encode())
	if r, ok := tx.records[k]; ok {
		return r, nil
	}
	if r, ok := tx.store.records[k]; ok {
		return r, nil
	}
	return AccessRecord{}, ErrRecordNotFound
}

func (tx *memTx) PutRecord(key AccessKey, rec AccessRecord) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	if _, err := tx.Record(key); err == nil {
		return fmt.Errorf("%w: %s", ErrRecordExists, key)
	}
	tx.records[string(key.Encode())] = rec
	return nil
}

func (tx *memTx) ForEachRecord(fn func(AccessKey, AccessRecord) error) error {
	merged := make(map[string]AccessRecord, len(tx.store.records)+len(tx.records))
	for k, r := range tx.store.records {
		merged[k] = r
	}
	for k, r := range tx.records {
		merged[k] = r
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare([]byte(keys[i]), []byte(keys[j])) < 0
	})
	for _, k := range keys {
		key, err := DecodeKey([]byte(k))
		if err != nil {
			return err
		}
		if err := fn(key, merged[k]); err != nil {
			return err
		}
	}
	return nil
}

func (tx *memTx) ReferenceOwner(ref string) (AccessKey, bool, error) {
	if k, ok := tx.refs[ref]; ok {
		return k, true, nil
	}
	k, ok := tx.store.refs[ref]
	return k, ok, nil
}

func (tx *memTx) UseReference(ref string, key AccessKey) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	if ref == "" {
		return fmt.Errorf("%w: empty reference", ErrInvalidKey)
	}
	if _, used, _ := tx.ReferenceOwner(ref); used {
		return fmt.Errorf("%w: %s", ErrReferenceUsed, ref)
	}
	tx.refs[ref] = key
	return nil
}
