package registry

import (
	"context"
	"sync"
	"time"

	"github.com/bitfsorg/vanitypay-go/identity"
)

// Memory is an in-process registry. Unset entries read as zero values, the
// way an on-chain registry mapping does, so an alias that was never set is
// never valid.
type Memory struct {
	mu             sync.RWMutex
	prices         map[aliasKey]uint64
	owners         map[string]identity.ID
	ownerUpdatedAt map[string]time.Time
	aliasUpdatedAt map[aliasKey]time.Time
}

type aliasKey struct {
	name  string
	alias string
}

var _ Client = (*Memory)(nil)

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{
		prices:         make(map[aliasKey]uint64),
		owners:         make(map[string]identity.ID),
		ownerUpdatedAt: make(map[string]time.Time),
		aliasUpdatedAt: make(map[aliasKey]time.Time),
	}
}

// SetPrice sets the access price of name/alias.
func (m *Memory) SetPrice(name, alias string, price uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[aliasKey{name, alias}] = price
}

// SetOwner records a change of ownership of name at the given time.
func (m *Memory) SetOwner(name string, owner identity.ID, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[name] = owner
	m.ownerUpdatedAt[name] = at
}

// SetNameOwnerUpdatedAt overrides the ownership timestamp of name.
func (m *Memory) SetNameOwnerUpdatedAt(name string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ownerUpdatedAt[name] = at
}

// SetAliasUpdatedAt sets the last-update timestamp of name/alias.
func (m *Memory) SetAliasUpdatedAt(name, alias string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliasUpdatedAt[aliasKey{name, alias}] = at
}

// PriceOf implements Client.
func (m *Memory) PriceOf(_ context.Context, name, alias string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prices[aliasKey{name, alias}], nil
}

// OwnerOf implements Client.
func (m *Memory) OwnerOf(_ context.Context, name string) (identity.ID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owners[name], nil
}

// NameOwnerUpdatedAt implements Client.
func (m *Memory) NameOwnerUpdatedAt(_ context.Context, name string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ownerUpdatedAt[name], nil
}

// AliasUpdatedAt implements Client.
func (m *Memory) AliasUpdatedAt(_ context.Context, name, alias string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.aliasUpdatedAt[aliasKey{name, alias}], nil
}
