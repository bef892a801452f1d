// Package deploy submits contract creation transactions and waits for them
// to land on chain.
package deploy

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"rpsgame-deployer/pkg/artifacts"
	"rpsgame-deployer/pkg/chain"
	"rpsgame-deployer/pkg/logging"
	"rpsgame-deployer/pkg/signer"
)

// DefaultContract is deployed when no contract name is given.
const DefaultContract = "RpsGame"

var (
	ErrDeploymentReverted = errors.New("deployment transaction reverted")
	ErrNoCode             = errors.New("no code at deployed address")
)

// Result describes a confirmed deployment.
type Result struct {
	Contract    string         `json:"contractName"`
	Address     common.Address `json:"contractAddress"`
	TxHash      common.Hash    `json:"hash"`
	BlockNumber uint64         `json:"blockNumber"`
	GasUsed     uint64         `json:"gasUsed"`
	Deployer    common.Address `json:"from"`
	ChainID     uint64         `json:"chainId"`
	Arguments   []string       `json:"arguments,omitempty"`
}

// Options tune a Deployer.
type Options struct {
	// Solidity is the configured compiler version; artifacts built with a
	// different one are deployed with a warning.
	Solidity      string
	PollInterval  time.Duration
	Confirmations uint64
}

// Deployer resolves factories and deploys them through a signer.
type Deployer struct {
	backend  chain.Backend
	registry *artifacts.Registry
	opts     Options
	logger   zerolog.Logger
}

// New creates a Deployer.
func New(backend chain.Backend, registry *artifacts.Registry, opts Options) *Deployer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = chain.DefaultPollInterval
	}
	return &Deployer{
		backend:  backend,
		registry: registry,
		opts:     opts,
		logger:   logging.WithComponent("deploy"),
	}
}

// Factory resolves a contract by name and checks its compiler version.
func (d *Deployer) Factory(name string) (*artifacts.Factory, error) {
	f, err := d.registry.Factory(name)
	if err != nil {
		return nil, err
	}
	if built := f.Artifact.CompilerVersion(); built != "" && d.opts.Solidity != "" && built != d.opts.Solidity {
		d.logger.Warn().
			Str("contract", f.Name).
			Str("built_with", built).
			Str("configured", d.opts.Solidity).
			Msg("artifact was compiled with a different solc version")
	}
	return f, nil
}

// Deploy deploys contract name from s, passing the raw constructor arguments.
func (d *Deployer) Deploy(ctx context.Context, s signer.Signer, name string, rawArgs ...string) (*Result, error) {
	if name == "" {
		name = DefaultContract
	}
	f, err := d.Factory(name)
	if err != nil {
		return nil, err
	}
	args, err := f.ParseArgs(rawArgs)
	if err != nil {
		return nil, err
	}

	chainID, err := d.backend.ChainID(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "fetch chain id")
	}

	d.logger.Info().
		Str("contract", f.Name).
		Str("from", s.Address().Hex()).
		Uint64("chain_id", chainID.Uint64()).
		Msg("sending deployment")

	hash, err := s.SendDeployment(ctx, f, args...)
	if err != nil {
		return nil, err
	}
	d.logger.Debug().Str("tx", hash.Hex()).Msg("deployment sent")

	receipt, err := chain.WaitReceipt(ctx, d.backend, hash, d.opts.PollInterval)
	if err != nil {
		return nil, err
	}
	if err := d.check(ctx, f.Name, receipt); err != nil {
		return nil, err
	}
	if err := chain.WaitConfirmations(ctx, d.backend, receipt.BlockNumber.Uint64(), d.opts.Confirmations, d.opts.PollInterval); err != nil {
		return nil, err
	}

	res := &Result{
		Contract:    f.Name,
		Address:     receipt.ContractAddress,
		TxHash:      hash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Deployer:    s.Address(),
		ChainID:     chainID.Uint64(),
		Arguments:   rawArgs,
	}
	d.logger.Info().
		Str("contract", res.Contract).
		Str("address", res.Address.Hex()).
		Uint64("block", res.BlockNumber).
		Uint64("gas_used", res.GasUsed).
		Msg("contract deployed")
	return res, nil
}

func (d *Deployer) check(ctx context.Context, name string, receipt *types.Receipt) error {
	if receipt.Status != types.ReceiptStatusSuccessful {
		return eris.Wrapf(ErrDeploymentReverted, "%s in tx %s", name, receipt.TxHash.Hex())
	}
	if receipt.ContractAddress == (common.Address{}) {
		return eris.Wrapf(ErrNoCode, "%s: receipt %s has no contract address", name, receipt.TxHash.Hex())
	}
	code, err := d.backend.CodeAt(ctx, receipt.ContractAddress, receipt.BlockNumber)
	if err != nil {
		return eris.Wrapf(err, "fetch code at %s", receipt.ContractAddress.Hex())
	}
	if len(code) == 0 {
		return eris.Wrapf(ErrNoCode, "%s at %s", name, receipt.ContractAddress.Hex())
	}
	return nil
}

// Balance returns the wei balance of addr at the latest block.
func (d *Deployer) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := d.backend.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch balance of %s", addr.Hex())
	}
	return bal, nil
}
