package funds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/network"
)

// RPC error codes returned by a node wallet.
const (
	rpcWalletInsufficientFunds = -6
	rpcInvalidAddressOrKey     = -5
)

// NodeTransferer pays recipients from a node wallet with sendtoaddress.
type NodeTransferer struct {
	rpc     network.Caller
	mainnet bool
}

var _ Transferer = (*NodeTransferer)(nil)

// NewNodeTransferer creates a transferer for the given wallet RPC. Recipient
// addresses are rendered for mainnet when mainnet is true, testnet otherwise.
func NewNodeTransferer(rpc network.Caller, mainnet bool) *NodeTransferer {
	return &NodeTransferer{rpc: rpc, mainnet: mainnet}
}

// Transfer implements Transferer. The returned reference is the wallet txid.
func (n *NodeTransferer) Transfer(ctx context.Context, to identity.ID, amount uint64) (string, error) {
	if err := checkTransfer(to, amount); err != nil {
		return "", err
	}
	addr, err := to.Address(n.mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRecipient, err)
	}

	var txid string
	params := []interface{}{addr, json.Number(FormatBSV(amount))}
	if err := n.rpc.Call(ctx, "sendtoaddress", params, &txid); err != nil {
		var rpcErr *network.RPCError
		if errors.As(err, &rpcErr) {
			switch rpcErr.Code {
			case rpcWalletInsufficientFunds:
				return "", fmt.Errorf("%w: %s", ErrInsufficientFunds, rpcErr.Message)
			case rpcInvalidAddressOrKey:
				return "", fmt.Errorf("%w: %s", ErrRecipientRejected, rpcErr.Message)
			}
		}
		return "", fmt.Errorf("%w: sendtoaddress: %w", ErrTransferFailed, err)
	}
	if txid == "" {
		return "", fmt.Errorf("%w: empty txid", ErrTransferFailed)
	}
	return txid, nil
}
