package funds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testID(b byte) identity.ID {
	var id identity.ID
	for i := range id {
		id[i] = b
	}
	return id
}

func TestFormatBSV(t *testing.T) {
	assert.Equal(t, "1.00000000", FormatBSV(SatoshisPerBSV))
	assert.Equal(t, "0.00000001", FormatBSV(1))
	assert.Equal(t, "21.50000000", FormatBSV(2_150_000_000))
	assert.Equal(t, "0.00000000", FormatBSV(0))
}

// ---------------------------------------------------------------------------
// MemBank
// ---------------------------------------------------------------------------

func TestMemBank_Transfer(t *testing.T) {
	bank := NewMemBank()
	ctx := context.Background()
	to := testID(1)

	ref, err := bank.Transfer(ctx, to, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	_, err = bank.Transfer(ctx, to, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), bank.Balance(to))
}

func TestMemBank_Rejecting(t *testing.T) {
	bank := NewMemBank()
	to := testID(2)
	bank.Reject(to, true)

	_, err := bank.Transfer(context.Background(), to, 1)
	assert.ErrorIs(t, err, ErrRecipientRejected)
	assert.Zero(t, bank.Balance(to))

	bank.Reject(to, false)
	_, err = bank.Transfer(context.Background(), to, 1)
	assert.NoError(t, err)
}

func TestMemBank_InvalidArgs(t *testing.T) {
	bank := NewMemBank()
	_, err := bank.Transfer(context.Background(), identity.Zero, 1)
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, err = bank.Transfer(context.Background(), testID(1), 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = bank.Transfer(ctx, testID(1), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// NodeTransferer
// ---------------------------------------------------------------------------

func walletServer(t *testing.T, handle func(method string, params []interface{}) (interface{}, *network.RPCError)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64         `json:"id"`
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, rpcErr := handle(req.Method, req.Params)
		resp := map[string]interface{}{"id": req.ID, "result": result}
		if rpcErr != nil {
			w.WriteHeader(http.StatusInternalServerError)
			resp["error"] = rpcErr
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNodeTransferer_SendToAddress(t *testing.T) {
	to := testID(3)
	wantAddr, err := to.Address(false)
	require.NoError(t, err)

	server := walletServer(t, func(method string, params []interface{}) (interface{}, *network.RPCError) {
		assert.Equal(t, "sendtoaddress", method)
		require.Len(t, params, 2)
		assert.Equal(t, wantAddr, params[0])
		assert.Equal(t, 1.5, params[1])
		return "ab" + "cd", nil
	})

	n := NewNodeTransferer(network.NewRPCClient(network.RPCConfig{URL: server.URL}), false)
	txid, err := n.Transfer(context.Background(), to, 150_000_000)
	require.NoError(t, err)
	assert.Equal(t, "abcd", txid)
}

func TestNodeTransferer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rpcErr  *network.RPCError
		wantErr error
	}{
		{"insufficient funds", &network.RPCError{Code: -6, Message: "Insufficient funds"}, ErrInsufficientFunds},
		{"bad address", &network.RPCError{Code: -5, Message: "Invalid address"}, ErrRecipientRejected},
		{"other", &network.RPCError{Code: -1, Message: "boom"}, ErrTransferFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := walletServer(t, func(string, []interface{}) (interface{}, *network.RPCError) {
				return nil, tt.rpcErr
			})
			n := NewNodeTransferer(network.NewRPCClient(network.RPCConfig{URL: server.URL}), true)
			_, err := n.Transfer(context.Background(), testID(4), 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNodeTransferer_EmptyTxID(t *testing.T) {
	server := walletServer(t, func(string, []interface{}) (interface{}, *network.RPCError) {
		return "", nil
	})
	n := NewNodeTransferer(network.NewRPCClient(network.RPCConfig{URL: server.URL}), false)
	_, err := n.Transfer(context.Background(), testID(5), 1)
	assert.ErrorIs(t, err, ErrTransferFailed)
}

func TestNodeTransferer_InvalidArgs(t *testing.T) {
	n := NewNodeTransferer(nil, false)
	_, err := n.Transfer(context.Background(), identity.Zero, 1)
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestTransfererFunc(t *testing.T) {
	var got uint64
	f := TransfererFunc(func(_ context.Context, _ identity.ID, amount uint64) (string, error) {
		got = amount
		return "ref", nil
	})
	ref, err := f.Transfer(context.Background(), testID(1), 9)
	require.NoError(t, err)
	assert.Equal(t, "ref", ref)
	assert.Equal(t, uint64(9), got)
}
