package network

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed indicates the client could not reach the RPC endpoint.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrInvalidResponse indicates the endpoint returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrBroadcastRejected indicates the node refused a transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrRPC indicates the endpoint answered with a JSON-RPC error object.
	ErrRPC = errors.New("network: rpc error")
)

// RPCError is the error object returned by a JSON-RPC server.
// It matches ErrRPC with errors.Is.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("network: rpc error %d: %s", e.Code, e.Message)
}

// Is reports whether target is ErrRPC.
func (e *RPCError) Is(target error) bool { return target == ErrRPC }
