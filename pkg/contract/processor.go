package contract

import (
	"os"
	"path/filepath"

	"rpsgame-deployer/pkg/artifacts"
	"rpsgame-deployer/pkg/deploy"
	"rpsgame-deployer/pkg/logging"
	"rpsgame-deployer/pkg/utils"
)

var outputSelection = map[string]map[string][]string{
	"*": {
		"*": []string{
			"abi",
			"devdoc",
			"userdoc",
			"storageLayout",
			"evm.bytecode.object",
			"evm.bytecode.sourceMap",
			"evm.bytecode.linkReferences",
			"evm.deployedBytecode.object",
			"evm.deployedBytecode.sourceMap",
			"evm.deployedBytecode.linkReferences",
			"evm.deployedBytecode.immutableReferences",
			"metadata",
		},
	},
}

// BuildArtifact assembles the verification payload for a compiled contract.
// Foundry artifacts carry the solc metadata; Hardhat ones point at a build
// info holding the compiler input.
func BuildArtifact(a *artifacts.Artifact) (map[string]any, error) {
	var (
		language string
		settings map[string]any
		sources  map[string]any
	)
	switch {
	case a.Metadata != nil:
		language = a.Metadata.Language
		settings = a.Metadata.Settings
		sources = a.Metadata.Sources
	default:
		bi, err := a.BuildInfo()
		if err != nil {
			return nil, utils.LogErrorf("no metadata or build info for %s: %v", a.ContractName, err)
		}
		language = bi.Input.Language
		settings = bi.Input.Settings
		sources = bi.Input.Sources
	}

	// Prepare the settings map
	out := map[string]any{
		"outputSelection": outputSelection,
		"remappings":      ProcessRemappings(settings["remappings"]),
	}
	for _, key := range []string{"evmVersion", "metadata", "libraries", "optimizer"} {
		out[key] = settings[key]
	}

	return map[string]any{
		"deployedBytecode": a.RawBytecode,
		"abi":              a.RawABI,
		"language":         language,
		"settings":         out,
		"sources":          ProcessSources(sources),
	}, nil
}

// ProcessDirectory processes the run-latest.json of a single network/chain directory
func ProcessDirectory(runDir, key string, registry *artifacts.Registry, allContracts map[string][]ContractInfo) (map[string][]ContractInfo, error) {
	logger := logging.WithComponent("contract")

	// Initialize this directory in allContracts if it doesn't exist
	if _, ok := allContracts[key]; !ok {
		allContracts[key] = []ContractInfo{}
	}

	run, err := deploy.ReadRun(filepath.Join(runDir, deploy.LatestRunFile))
	if err != nil {
		logger.Warn().Err(err).Str("dir", key).Msg("failed to read run-latest.json")
		return allContracts, err
	}

	for _, tx := range run.Transactions {
		if tx.ContractName == "" || tx.ContractAddress == "" {
			continue
		}

		a, err := registry.Artifact(tx.ContractName)
		if err != nil {
			logger.Warn().Err(err).Str("contract", tx.ContractName).Msg("artifact not found")
			continue
		}

		artifact, err := BuildArtifact(a)
		if err != nil {
			continue
		}

		// Add contract to the directory's array
		allContracts[key] = append(allContracts[key], ContractInfo{
			ContractAddress: tx.ContractAddress,
			ContractName:    tx.ContractName,
			Artifact:        artifact,
		})
	}

	return allContracts, nil
}

// ProcessAllDirectories processes every <network>/<chainId> directory in the
// deployments folder and writes the combined result to outputPath.
func ProcessAllDirectories(deploymentsDir string, registry *artifacts.Registry, outputPath string) (map[string][]ContractInfo, error) {
	logger := logging.WithComponent("contract")

	// Get all directories in the deployments folder
	networkDirs, err := os.ReadDir(deploymentsDir)
	if err != nil {
		return nil, utils.LogErrorf("error reading deployments directory: %v", err)
	}

	allContracts := make(map[string][]ContractInfo)

	for _, networkDir := range networkDirs {
		if !networkDir.IsDir() {
			continue
		}

		networkDirPath := filepath.Join(deploymentsDir, networkDir.Name())
		chainDirs, err := os.ReadDir(networkDirPath)
		if err != nil {
			logger.Warn().Err(err).Str("dir", networkDir.Name()).Msg("error reading directory")
			continue
		}

		// Check each subdirectory for run-latest.json
		for _, chainDir := range chainDirs {
			if !chainDir.IsDir() {
				continue
			}

			runDir := filepath.Join(networkDirPath, chainDir.Name())
			if _, err := os.Stat(filepath.Join(runDir, deploy.LatestRunFile)); err != nil {
				continue
			}

			key := networkDir.Name() + "/" + chainDir.Name()
			logger.Info().Str("dir", key).Msg("found run-latest.json")
			allContracts, err = ProcessDirectory(runDir, key, registry, allContracts)
			if err != nil {
				logger.Warn().Err(err).Str("dir", key).Msg("error processing directory")
			}
		}
	}

	if err := utils.WriteJSONToFile(outputPath, allContracts); err != nil {
		return nil, utils.LogErrorf("error writing to %s: %v", outputPath, err)
	}

	return allContracts, nil
}

// GroupByContractName groups contracts by their name
func GroupByContractName(data map[string][]ContractInfo) map[string]*GroupedContract {
	grouped := make(map[string]*GroupedContract)

	for key, contracts := range data {
		for _, c := range contracts {
			g, ok := grouped[c.ContractName]
			if !ok {
				g = &GroupedContract{
					Artifact:          c.Artifact,
					ContractAddresses: map[string]string{},
				}
				grouped[c.ContractName] = g
			}
			g.ContractAddresses[key] = c.ContractAddress
		}
	}

	return grouped
}
