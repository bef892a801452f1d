// Package artifacts resolves compiled contracts by name from Hardhat
// (artifacts/) and Foundry (out/) build directories and turns them into
// deployable factories.
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/rotisserie/eris"
)

var (
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrAmbiguousArtifact = errors.New("ambiguous contract name")
	ErrNotDeployable     = errors.New("contract has no creation bytecode")
	ErrUnlinkedLibraries = errors.New("bytecode references unlinked libraries")
)

// LinkReference is one placeholder position inside bytecode.
type LinkReference struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// LinkReferences maps source file -> library name -> placeholder positions.
type LinkReferences map[string]map[string][]LinkReference

// Metadata is the solc metadata embedded in Foundry artifacts.
type Metadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string         `json:"language"`
	Settings map[string]any `json:"settings"`
	Sources  map[string]any `json:"sources"`
}

// Artifact is a parsed compiled-contract file.
type Artifact struct {
	Path           string
	ContractName   string
	SourceName     string
	ABI            abi.ABI
	RawABI         json.RawMessage
	Bytecode       string
	RawBytecode    json.RawMessage
	LinkReferences LinkReferences
	Metadata       *Metadata
}

type rawArtifact struct {
	ContractName   string          `json:"contractName"`
	SourceName     string          `json:"sourceName"`
	ABI            json.RawMessage `json:"abi"`
	Bytecode       json.RawMessage `json:"bytecode"`
	LinkReferences LinkReferences  `json:"linkReferences"`
	Metadata       json.RawMessage `json:"metadata"`
}

type foundryBytecode struct {
	Object         string         `json:"object"`
	LinkReferences LinkReferences `json:"linkReferences"`
}

// LoadArtifact parses a Hardhat or Foundry artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read artifact %s", path)
	}
	return ParseArtifact(path, data)
}

// ParseArtifact parses artifact JSON. Hardhat stores bytecode as a hex
// string with top-level linkReferences; Foundry nests both under
// bytecode.object and bytecode.linkReferences.
func ParseArtifact(path string, data []byte) (*Artifact, error) {
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "parse artifact %s", path)
	}

	a := &Artifact{
		Path:           path,
		ContractName:   raw.ContractName,
		SourceName:     raw.SourceName,
		RawABI:         raw.ABI,
		RawBytecode:    raw.Bytecode,
		LinkReferences: raw.LinkReferences,
	}
	if a.ContractName == "" {
		a.ContractName = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	if len(raw.ABI) == 0 {
		a.RawABI = json.RawMessage("[]")
	}
	parsed, err := abi.JSON(bytes.NewReader(a.RawABI))
	if err != nil {
		return nil, eris.Wrapf(err, "parse abi of %s", path)
	}
	a.ABI = parsed

	trimmed := bytes.TrimSpace(raw.Bytecode)
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '"':
		if err := json.Unmarshal(trimmed, &a.Bytecode); err != nil {
			return nil, eris.Wrapf(err, "parse bytecode of %s", path)
		}
	default:
		var fb foundryBytecode
		if err := json.Unmarshal(trimmed, &fb); err != nil {
			return nil, eris.Wrapf(err, "parse bytecode of %s", path)
		}
		a.Bytecode = fb.Object
		if len(fb.LinkReferences) > 0 {
			a.LinkReferences = fb.LinkReferences
		}
	}

	meta, err := parseMetadata(raw.Metadata)
	if err != nil {
		return nil, eris.Wrapf(err, "parse metadata of %s", path)
	}
	a.Metadata = meta

	return a, nil
}

// parseMetadata accepts both the object form and the older string-encoded form.
func parseMetadata(raw json.RawMessage) (*Metadata, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = []byte(s)
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// HasUnlinkedLibraries reports whether the creation code still carries
// library placeholders.
func (a *Artifact) HasUnlinkedLibraries() bool {
	for _, libs := range a.LinkReferences {
		if len(libs) > 0 {
			return true
		}
	}
	return strings.Contains(a.Bytecode, "__$")
}

// CompilerVersion returns the solc version ("0.8.4") recorded in the
// artifact metadata or its Hardhat build info, or "" when neither is present.
func (a *Artifact) CompilerVersion() string {
	var long string
	if a.Metadata != nil {
		long = a.Metadata.Compiler.Version
	} else if bi, err := a.BuildInfo(); err == nil {
		long = bi.SolcVersion
	}
	if long == "" {
		return ""
	}
	v, err := semver.NewVersion(long)
	if err != nil {
		return long
	}
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}
