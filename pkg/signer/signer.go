// Package signer provides the identities that authorize deployment
// transactions: local private keys, or accounts unlocked on the node.
package signer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rotisserie/eris"

	"rpsgame-deployer/pkg/artifacts"
	"rpsgame-deployer/pkg/chain"
	"rpsgame-deployer/pkg/config"
	"rpsgame-deployer/pkg/logging"
)

var (
	ErrNoSigners       = errors.New("no signer available")
	ErrChainIDMismatch = errors.New("chain id mismatch")
	ErrNoRPC           = errors.New("node accounts need a JSON-RPC connection")
)

// Signer can submit a contract creation transaction.
type Signer interface {
	Address() common.Address
	SendDeployment(ctx context.Context, f *artifacts.Factory, args ...any) (common.Hash, error)
}

// Local signs transactions with a private key held in memory.
type Local struct {
	key      *ecdsa.PrivateKey
	address  common.Address
	chainID  *big.Int
	backend  chain.Backend
	gas      uint64
	gasPrice *big.Int
}

// NewLocal parses a hex private key (with or without 0x).
func NewLocal(hexKey string, chainID *big.Int, backend chain.Backend, network config.Network) (*Local, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		// the key itself must not end up in the error
		return nil, eris.New("invalid private key")
	}
	l := &Local{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		backend: backend,
		gas:     network.Gas,
	}
	if network.GasPrice > 0 {
		l.gasPrice = new(big.Int).SetUint64(network.GasPrice)
	}
	return l, nil
}

func (l *Local) Address() common.Address { return l.address }

// SendDeployment signs and broadcasts the creation transaction. Nonce, gas
// and fees are filled in by bind unless the network pins them.
func (l *Local) SendDeployment(ctx context.Context, f *artifacts.Factory, args ...any) (common.Hash, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(l.key, l.chainID)
	if err != nil {
		return common.Hash{}, eris.Wrap(err, "create transactor")
	}
	opts.Context = ctx
	opts.GasLimit = l.gas
	opts.GasPrice = l.gasPrice

	_, tx, _, err := bind.DeployContract(opts, f.ABI, f.Bytecode, l.backend, args...)
	if err != nil {
		return common.Hash{}, eris.Wrapf(err, "send %s deployment from %s", f.Name, l.address.Hex())
	}
	return tx.Hash(), nil
}

// Remote uses an account the node holds and signs itself, like the
// prefunded accounts of a local development node.
type Remote struct {
	address  common.Address
	rpc      chain.RPC
	gas      uint64
	gasPrice uint64
}

// NewRemote wraps a node-managed account.
func NewRemote(address common.Address, rpc chain.RPC, network config.Network) *Remote {
	return &Remote{address: address, rpc: rpc, gas: network.Gas, gasPrice: network.GasPrice}
}

func (r *Remote) Address() common.Address { return r.address }

type sendTxArgs struct {
	From     common.Address  `json:"from"`
	Data     hexutil.Bytes   `json:"data"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
}

// SendDeployment asks the node to sign and send the creation transaction.
func (r *Remote) SendDeployment(ctx context.Context, f *artifacts.Factory, args ...any) (common.Hash, error) {
	data, err := f.DeployData(args...)
	if err != nil {
		return common.Hash{}, err
	}
	tx := sendTxArgs{From: r.address, Data: data}
	if r.gas > 0 {
		g := hexutil.Uint64(r.gas)
		tx.Gas = &g
	}
	if r.gasPrice > 0 {
		tx.GasPrice = (*hexutil.Big)(new(big.Int).SetUint64(r.gasPrice))
	}

	var hash common.Hash
	if err := r.rpc.CallContext(ctx, &hash, "eth_sendTransaction", tx); err != nil {
		return common.Hash{}, eris.Wrapf(err, "send %s deployment from %s", f.Name, r.address.Hex())
	}
	return hash, nil
}

// Load returns the signers for network. Configured keys win; otherwise the
// node's unlocked accounts are used.
func Load(ctx context.Context, network config.Network, client *chain.Client) ([]Signer, error) {
	logger := logging.WithComponent("signer")

	if len(network.Accounts) > 0 {
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch chain id from %s", network.Name)
		}
		if network.ChainID != 0 && chainID.Uint64() != network.ChainID {
			return nil, eris.Wrapf(ErrChainIDMismatch, "network %s is configured for chain %d but the node reports %d", network.Name, network.ChainID, chainID.Uint64())
		}

		signers := make([]Signer, 0, len(network.Accounts))
		for i, key := range network.Accounts {
			l, err := NewLocal(key, chainID, client.Backend, network)
			if err != nil {
				return nil, eris.Wrapf(err, "networks.%s.accounts[%d]", network.Name, i)
			}
			signers = append(signers, l)
		}
		logger.Debug().Str("network", network.Name).Int("count", len(signers)).Msg("loaded local signers")
		return signers, nil
	}

	if client.RPC == nil {
		return nil, ErrNoRPC
	}
	var addrs []common.Address
	if err := client.RPC.CallContext(ctx, &addrs, "eth_accounts"); err != nil {
		return nil, eris.Wrapf(err, "list accounts on %s", network.Name)
	}
	if len(addrs) == 0 {
		return nil, eris.Wrapf(ErrNoSigners, "network %s has no configured keys and the node exposes no accounts", network.Name)
	}

	signers := make([]Signer, 0, len(addrs))
	for _, addr := range addrs {
		signers = append(signers, NewRemote(addr, client.RPC, network))
	}
	logger.Debug().Str("network", network.Name).Int("count", len(signers)).Msg("loaded node accounts")
	return signers, nil
}
