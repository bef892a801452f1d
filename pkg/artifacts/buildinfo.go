package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// BuildInfo is the solc input Hardhat records for a compilation job.
type BuildInfo struct {
	SolcVersion string `json:"solcVersion"`
	Input       struct {
		Language string         `json:"language"`
		Sources  map[string]any `json:"sources"`
		Settings map[string]any `json:"settings"`
	} `json:"input"`
}

type debugFile struct {
	BuildInfo string `json:"buildInfo"`
}

// BuildInfo follows the Hardhat <Name>.dbg.json sidecar to the build-info
// file that produced the artifact.
func (a *Artifact) BuildInfo() (*BuildInfo, error) {
	dbgPath := strings.TrimSuffix(a.Path, ".json") + ".dbg.json"
	data, err := os.ReadFile(dbgPath)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", dbgPath)
	}
	var dbg debugFile
	if err := json.Unmarshal(data, &dbg); err != nil {
		return nil, eris.Wrapf(err, "parse %s", dbgPath)
	}
	if dbg.BuildInfo == "" {
		return nil, eris.Errorf("%s does not reference a build info", dbgPath)
	}

	biPath := filepath.Join(filepath.Dir(dbgPath), filepath.FromSlash(dbg.BuildInfo))
	data, err = os.ReadFile(biPath)
	if err != nil {
		return nil, eris.Wrapf(err, "read build info %s", biPath)
	}
	var bi BuildInfo
	if err := json.Unmarshal(data, &bi); err != nil {
		return nil, eris.Wrapf(err, "parse build info %s", biPath)
	}
	return &bi, nil
}
