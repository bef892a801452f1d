// Package config loads the project configuration: the compiler version the
// artifacts were built with, the network table, and the directories the
// deployer reads from and writes to.
package config

import (
	"sort"
	"time"
)

const (
	// DefaultPath is the config file picked up when --config is not given.
	DefaultPath = "rpsgame.yaml"

	DefaultSolidity = "0.8.4"
	DefaultNetwork  = "localhost"
	DefaultURL      = "http://127.0.0.1:8545/"
)

// Config is the project configuration.
type Config struct {
	Solidity       string             `yaml:"solidity"`
	DefaultNetwork string             `yaml:"defaultNetwork"`
	Networks       map[string]Network `yaml:"networks"`
	Paths          Paths              `yaml:"paths"`
	Verification   Verification       `yaml:"verification"`

	// keyOverride replaces the accounts of whichever network is resolved.
	keyOverride []string
}

// Network describes one JSON-RPC endpoint.
type Network struct {
	// Name is filled in from the networks map key.
	Name string `yaml:"-"`
	URL  string `yaml:"url"`
	// ChainID, when set, must match what the node reports.
	ChainID uint64 `yaml:"chainId,omitempty"`
	// Accounts holds hex private keys. Empty means the node's own accounts.
	Accounts []string `yaml:"accounts,omitempty"`
	// Gas is a fixed gas limit; 0 estimates.
	Gas uint64 `yaml:"gas,omitempty"`
	// GasPrice in wei; 0 lets the node suggest fees.
	GasPrice      uint64        `yaml:"gasPrice,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	Confirmations uint64        `yaml:"confirmations,omitempty"`
}

// Paths are resolved relative to the working directory.
type Paths struct {
	Artifacts   string `yaml:"artifacts"`
	Out         string `yaml:"out"`
	Deployments string `yaml:"deployments"`
}

// Verification configures the source verification upload.
type Verification struct {
	APIURL string `yaml:"apiUrl"`
}

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		Solidity:       DefaultSolidity,
		DefaultNetwork: DefaultNetwork,
		Networks: map[string]Network{
			DefaultNetwork: {Name: DefaultNetwork, URL: DefaultURL},
		},
		Paths: Paths{
			Artifacts:   "artifacts",
			Out:         "out",
			Deployments: "deployments",
		},
	}
}

// NetworkNames returns the configured network names in sorted order.
func (c Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named network, or the default network for "".
func (c Config) Resolve(name string) (Network, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	n, ok := c.Networks[name]
	if !ok {
		return Network{}, &UnknownNetworkError{Name: name, Known: c.NetworkNames()}
	}
	n.Name = name
	if len(c.keyOverride) > 0 {
		n.Accounts = append([]string(nil), c.keyOverride...)
	}
	return n, nil
}

// ArtifactRoots lists the directories searched for compiled contracts.
func (c Config) ArtifactRoots() []string {
	var roots []string
	for _, p := range []string{c.Paths.Artifacts, c.Paths.Out} {
		if p != "" {
			roots = append(roots, p)
		}
	}
	return roots
}
