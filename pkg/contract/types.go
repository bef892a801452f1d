package contract

// ContractInfo represents the contract information
type ContractInfo struct {
	ContractAddress string         `json:"contractAddress"`
	ContractName    string         `json:"contractName"`
	Artifact        map[string]any `json:"artifact"`
}

// GroupedContract is one contract with its addresses keyed by network/chain.
type GroupedContract struct {
	Artifact          map[string]any    `json:"artifact"`
	ContractAddresses map[string]string `json:"contractAddresses"`
}
