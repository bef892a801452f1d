// Package chain wraps the go-ethereum client surface the deployer needs.
package chain

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rotisserie/eris"

	"rpsgame-deployer/pkg/logging"
)

// DefaultPollInterval is how often receipts are polled for.
const DefaultPollInterval = time.Second

// Backend is satisfied by *ethclient.Client and the simulated backend client.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ethereum.ChainIDReader
	ethereum.ChainStateReader
	ethereum.BlockNumberReader
}

// RPC issues raw JSON-RPC calls, used for node-managed accounts.
type RPC interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// Client bundles the typed backend with the raw RPC connection it came from.
// RPC may be nil when the backend has no JSON-RPC transport.
type Client struct {
	Backend
	RPC RPC

	closer func()
}

// Close releases the connection.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	raw, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "dial %s", url)
	}
	return &Client{
		Backend: ethclient.NewClient(raw),
		RPC:     raw,
		closer:  raw.Close,
	}, nil
}

// NewClient wraps an existing backend, e.g. a simulated chain in tests.
func NewClient(b Backend, r RPC) *Client {
	return &Client{Backend: b, RPC: r}
}

// WaitReceipt polls for the receipt of hash until it is mined or ctx ends.
func WaitReceipt(ctx context.Context, b bind.DeployBackend, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	logger := logging.WithComponent("chain")
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := b.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, eris.Wrapf(err, "fetch receipt %s", hash.Hex())
		}
		logger.Trace().Str("tx", hash.Hex()).Msg("transaction not yet mined")

		select {
		case <-ctx.Done():
			return nil, eris.Wrapf(ctx.Err(), "waiting for %s", hash.Hex())
		case <-ticker.C:
		}
	}
}

// WaitConfirmations blocks until the head is at least confirmations-1 blocks
// past block. 0 and 1 return immediately.
func WaitConfirmations(ctx context.Context, b ethereum.BlockNumberReader, block uint64, confirmations uint64, interval time.Duration) error {
	if confirmations <= 1 {
		return nil
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	target := block + confirmations - 1
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		head, err := b.BlockNumber(ctx)
		if err != nil {
			return eris.Wrap(err, "fetch block number")
		}
		if head >= target {
			return nil
		}
		select {
		case <-ctx.Done():
			return eris.Wrapf(ctx.Err(), "waiting for block %d", target)
		case <-ticker.C:
		}
	}
}
