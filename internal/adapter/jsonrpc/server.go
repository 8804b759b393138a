package jsonrpc

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/usecase"
)

const (
	NamespaceEth   = "eth"
	NamespaceStark = "stark"
)

// NewServer builds a JSON-RPC 2.0 server with the eth and stark namespaces
// registered. The returned server is an http.Handler.
func NewServer(d *usecase.Dispatcher) (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(NamespaceEth, NewEthAPI(d)); err != nil {
		return nil, fmt.Errorf("jsonrpc: register %s: %w", NamespaceEth, err)
	}
	if err := srv.RegisterName(NamespaceStark, NewStarkAPI(d)); err != nil {
		srv.Stop()
		return nil, fmt.Errorf("jsonrpc: register %s: %w", NamespaceStark, err)
	}
	return srv, nil
}
