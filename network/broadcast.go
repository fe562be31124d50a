package network

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
)

// BroadcastTx submits rawTx to the node with `sendrawtransaction "hex"` and
// returns the txid the node reports. A node-side refusal is wrapped with
// ErrBroadcastRejected; transport failures keep their own error kind.
func BroadcastTx(ctx context.Context, c Caller, rawTx []byte) (string, error) {
	if len(rawTx) == 0 {
		return "", fmt.Errorf("%w: empty transaction", ErrBroadcastRejected)
	}
	var txid string
	err := c.Call(ctx, "sendrawtransaction", []interface{}{hex.EncodeToString(rawTx)}, &txid)
	switch {
	case errors.Is(err, ErrRPC):
		return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
	case err != nil:
		return "", err
	case txid == "":
		return "", fmt.Errorf("%w: empty txid in response", ErrInvalidResponse)
	}
	return txid, nil
}
