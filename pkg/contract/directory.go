package contract

import (
	"os"
	"path/filepath"
	"strings"

	"rpsgame-deployer/pkg/logging"
)

// placeholderFor is recorded for sources that could not be read.
func placeholderFor(filePath string) string {
	return "// Content for " + filePath + " not available"
}

// ProcessSources turns solc source entries into {path: {content}} form,
// reading from disk when the entry only carries a hash.
func ProcessSources(sources map[string]any) map[string]map[string]string {
	logger := logging.WithComponent("contract")
	transformed := make(map[string]map[string]string)
	if sources == nil {
		logger.Debug().Msg("no sources provided")
		return transformed
	}

	for filePath, sourceInfo := range sources {
		sourceMap, ok := sourceInfo.(map[string]any)
		if !ok {
			continue
		}

		// Check if content is already in the metadata
		if content, ok := sourceMap["content"].(string); ok {
			transformed[filePath] = map[string]string{"content": content}
			continue
		}

		content, err := readSource(filePath)
		if err != nil {
			logger.Warn().Err(err).Str("source", filePath).Msg("source not readable, using placeholder")
			transformed[filePath] = map[string]string{"content": placeholderFor(filePath)}
			continue
		}
		transformed[filePath] = map[string]string{"content": string(content)}
	}

	return transformed
}

// readSource reads a source path relative to the working directory. Library
// paths under lib/ are retried under node_modules/.
func readSource(filePath string) ([]byte, error) {
	absolutePath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(absolutePath)
	if err == nil {
		return content, nil
	}
	if rest, ok := strings.CutPrefix(filePath, "lib/"); ok {
		return os.ReadFile(filepath.Join("node_modules", rest))
	}
	return nil, err
}

// ProcessRemappings normalises the remappings setting to a list.
func ProcessRemappings(remappings any) []any {
	remappingsSlice, ok := remappings.([]any)
	if !ok || remappingsSlice == nil {
		return []any{}
	}
	return remappingsSlice
}
