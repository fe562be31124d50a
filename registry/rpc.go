package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/network"
)

// JSON-RPC error codes used by registry servers for missing records.
const (
	CodeNameNotFound  = -32004
	CodeAliasNotFound = -32005
)

// RPC method names.
const (
	MethodPriceOf            = "priceof"
	MethodOwnerOf            = "ownerof"
	MethodNameOwnerUpdatedAt = "nameownerupdatedat"
	MethodAliasUpdatedAt     = "aliasupdatedat"
)

// RPCClient queries a registry over JSON-RPC. Timestamps travel as unix
// seconds and owners as hex identities or P2PKH addresses.
type RPCClient struct {
	rpc network.Caller
}

var _ Client = (*RPCClient)(nil)

// NewRPCClient wraps a JSON-RPC caller.
func NewRPCClient(rpc network.Caller) *RPCClient {
	return &RPCClient{rpc: rpc}
}

// PriceOf implements Client.
func (c *RPCClient) PriceOf(ctx context.Context, name, alias string) (uint64, error) {
	var price uint64
	if err := c.call(ctx, MethodPriceOf, []interface{}{name, alias}, &price); err != nil {
		return 0, err
	}
	return price, nil
}

// OwnerOf implements Client.
func (c *RPCClient) OwnerOf(ctx context.Context, name string) (identity.ID, error) {
	var owner string
	if err := c.call(ctx, MethodOwnerOf, []interface{}{name}, &owner); err != nil {
		return identity.Zero, err
	}
	id, err := identity.Parse(owner)
	if err != nil {
		return identity.Zero, fmt.Errorf("%w: owner of %q: %w", ErrInvalidResponse, name, err)
	}
	return id, nil
}

// NameOwnerUpdatedAt implements Client.
func (c *RPCClient) NameOwnerUpdatedAt(ctx context.Context, name string) (time.Time, error) {
	return c.timestamp(ctx, MethodNameOwnerUpdatedAt, []interface{}{name})
}

// AliasUpdatedAt implements Client.
func (c *RPCClient) AliasUpdatedAt(ctx context.Context, name, alias string) (time.Time, error) {
	return c.timestamp(ctx, MethodAliasUpdatedAt, []interface{}{name, alias})
}

func (c *RPCClient) timestamp(ctx context.Context, method string, params []interface{}) (time.Time, error) {
	var secs int64
	if err := c.call(ctx, method, params, &secs); err != nil {
		return time.Time{}, err
	}
	if secs < 0 {
		return time.Time{}, fmt.Errorf("%w: negative timestamp from %s", ErrInvalidResponse, method)
	}
	return time.Unix(secs, 0).UTC(), nil
}

func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	err := c.rpc.Call(ctx, method, params, result)
	if err == nil {
		return nil
	}
	var rpcErr *network.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case CodeNameNotFound:
			return fmt.Errorf("%w: %s", ErrNameNotFound, rpcErr.Message)
		case CodeAliasNotFound:
			return fmt.Errorf("%w: %s", ErrAliasNotFound, rpcErr.Message)
		}
	}
	if errors.Is(err, network.ErrInvalidResponse) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, method, err)
	}
	return fmt.Errorf("registry: %s: %w", method, err)
}

// RPCDialer treats registry references as JSON-RPC endpoint URLs and
// reuses one client per URL.
type RPCDialer struct {
	User     string
	Password string
	Timeout  time.Duration

	mu      sync.Mutex
	clients map[string]*RPCClient
}

var _ Dialer = (*RPCDialer)(nil)

// Dial implements Dialer.
func (d *RPCDialer) Dial(ref string) (Client, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrUnknownRegistry)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.clients[ref]; ok {
		return c, nil
	}
	if d.clients == nil {
		d.clients = make(map[string]*RPCClient)
	}
	c := NewRPCClient(network.NewRPCClient(network.RPCConfig{
		URL:      ref,
		User:     d.User,
		Password: d.Password,
		Timeout:  d.Timeout,
	}))
	d.clients[ref] = c
	return c, nil
}
