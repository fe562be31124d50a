package registry

import (
	"context"
	"time"

	"github.com/bitfsorg/vanitypay-go/identity"
)

// MockClient is a test double for Client.
// All function fields must be set before the corresponding method is called.
type MockClient struct {
	PriceOfFn            func(ctx context.Context, name, alias string) (uint64, error)
	OwnerOfFn            func(ctx context.Context, name string) (identity.ID, error)
	NameOwnerUpdatedAtFn func(ctx context.Context, name string) (time.Time, error)
	AliasUpdatedAtFn     func(ctx context.Context, name, alias string) (time.Time, error)
}

func (m *MockClient) PriceOf(ctx context.Context, name, alias string) (uint64, error) {
	return m.PriceOfFn(ctx, name, alias)
}
func (m *MockClient) OwnerOf(ctx context.Context, name string) (identity.ID, error) {
	return m.OwnerOfFn(ctx, name)
}
func (m *MockClient) NameOwnerUpdatedAt(ctx context.Context, name string) (time.Time, error) {
	return m.NameOwnerUpdatedAtFn(ctx, name)
}
func (m *MockClient) AliasUpdatedAt(ctx context.Context, name, alias string) (time.Time, error) {
	return m.AliasUpdatedAtFn(ctx, name, alias)
}
