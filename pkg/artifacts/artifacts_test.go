package artifacts

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// returns 42 from every call
const creationCode = "0x600a600c600039600a6000f3602a60005260206000f3"

const constructorABI = `[{"type":"constructor","inputs":[
	{"name":"stake","type":"uint256"},
	{"name":"opponent","type":"address"},
	{"name":"rounds","type":"uint8"},
	{"name":"open","type":"bool"},
	{"name":"label","type":"string"},
	{"name":"salt","type":"bytes32"},
	{"name":"delta","type":"int16"},
	{"name":"odd","type":"uint24"}
]}]`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func hardhatArtifact(name, source, bytecode string) string {
	return `{
  "_format": "hh-sol-artifact-1",
  "contractName": "` + name + `",
  "sourceName": "` + source + `",
  "abi": [],
  "bytecode": "` + bytecode + `",
  "deployedBytecode": "0x602a60005260206000f3",
  "linkReferences": {},
  "deployedLinkReferences": {}
}`
}

func foundryArtifact(bytecode string) string {
	return `{
  "abi": [],
  "bytecode": {"object": "` + bytecode + `", "linkReferences": {}},
  "deployedBytecode": {"object": "0x602a60005260206000f3"},
  "metadata": {
    "compiler": {"version": "0.8.4+commit.c7e474f2"},
    "language": "Solidity",
    "settings": {"evmVersion": "istanbul", "optimizer": {"enabled": false, "runs": 200}, "remappings": []},
    "sources": {"src/RpsGame.sol": {"keccak256": "0x00"}}
  }
}`
}

func TestRegistryResolvesHardhatArtifact(t *testing.T) {
	root := t.TempDir()
	artifacts := filepath.Join(root, "artifacts")
	writeFile(t, filepath.Join(artifacts, "contracts/RpsGame.sol/RpsGame.json"), hardhatArtifact("RpsGame", "contracts/RpsGame.sol", creationCode))
	writeFile(t, filepath.Join(artifacts, "contracts/RpsGame.sol/RpsGame.dbg.json"), `{"_format":"hh-sol-dbg-1","buildInfo":"../../build-info/abc.json"}`)
	writeFile(t, filepath.Join(artifacts, "build-info/abc.json"), `{"solcVersion":"0.8.4","input":{"language":"Solidity","sources":{"contracts/RpsGame.sol":{"content":"contract RpsGame {}"}},"settings":{"optimizer":{"enabled":false}}}}`)

	reg := NewRegistry(artifacts, filepath.Join(root, "out"))
	f, err := reg.Factory("RpsGame")
	require.NoError(t, err)
	assert.Equal(t, "RpsGame", f.Name)
	assert.Equal(t, hexutil.MustDecode(creationCode), f.Bytecode)
	assert.Equal(t, "0.8.4", f.Artifact.CompilerVersion())

	bi, err := f.Artifact.BuildInfo()
	require.NoError(t, err)
	assert.Equal(t, "Solidity", bi.Input.Language)
	assert.Contains(t, bi.Input.Sources, "contracts/RpsGame.sol")
}

func TestRegistryResolvesFoundryArtifact(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(out, "RpsGame.sol/RpsGame.json"), foundryArtifact(creationCode))
	writeFile(t, filepath.Join(out, "build-info/RpsGame.json"), `{}`)

	reg := NewRegistry("does-not-exist", out)
	a, err := reg.Artifact("src/RpsGame.sol:RpsGame")
	require.NoError(t, err)
	assert.Equal(t, "RpsGame", a.ContractName)
	require.NotNil(t, a.Metadata)
	assert.Equal(t, "Solidity", a.Metadata.Language)
	assert.Equal(t, "0.8.4", a.CompilerVersion())

	_, err = NewFactory(a)
	require.NoError(t, err)
}

func TestRegistryStringMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RpsGame.json")
	writeFile(t, path, `{"abi":[],"bytecode":{"object":"`+creationCode+`"},"metadata":"{\"compiler\":{\"version\":\"0.8.19+commit.7dd6d404\"}}"}`)

	a, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "0.8.19", a.CompilerVersion())
}

func TestRegistryNotFound(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	_, err := reg.FindArtifactPath("RpsGame")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestRegistryAmbiguous(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "contracts/RpsGame.sol/RpsGame.json"), hardhatArtifact("RpsGame", "contracts/RpsGame.sol", creationCode))
	writeFile(t, filepath.Join(root, "contracts/legacy/RpsGame.sol/RpsGame.json"), hardhatArtifact("RpsGame", "contracts/legacy/RpsGame.sol", creationCode))

	reg := NewRegistry(root)
	_, err := reg.FindArtifactPath("RpsGame")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousArtifact)
	assert.Contains(t, err.Error(), "contracts/legacy/RpsGame.sol:RpsGame")

	p, err := reg.FindArtifactPath("contracts/legacy/RpsGame.sol:RpsGame")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "contracts/legacy/RpsGame.sol/RpsGame.json"), p)
}

func TestRegistryFirstRootWins(t *testing.T) {
	root := t.TempDir()
	hh := filepath.Join(root, "artifacts")
	fd := filepath.Join(root, "out")
	writeFile(t, filepath.Join(hh, "contracts/RpsGame.sol/RpsGame.json"), hardhatArtifact("RpsGame", "contracts/RpsGame.sol", creationCode))
	writeFile(t, filepath.Join(fd, "RpsGame.sol/RpsGame.json"), foundryArtifact(creationCode))

	p, err := NewRegistry(hh, fd).FindArtifactPath("RpsGame")
	require.NoError(t, err)
	assert.Contains(t, p, "artifacts")
}

func TestFactoryRejectsInterface(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "contracts/IGame.sol/IGame.json"), hardhatArtifact("IGame", "contracts/IGame.sol", "0x"))

	_, err := NewRegistry(root).Factory("IGame")
	assert.ErrorIs(t, err, ErrNotDeployable)
}

func TestFactoryRejectsUnlinkedLibraries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RpsGame.json")
	writeFile(t, path, `{"abi":[],"bytecode":"0x6080__$1234567890abcdef1234567890abcdef12$__","linkReferences":{"contracts/Moves.sol":{"Moves":[{"start":2,"length":20}]}}}`)

	a, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.True(t, a.HasUnlinkedLibraries())
	_, err = NewFactory(a)
	assert.ErrorIs(t, err, ErrUnlinkedLibraries)
}

func TestDeployDataAppendsConstructorArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RpsGame.json")
	writeFile(t, path, `{"abi":`+constructorABI+`,"bytecode":"`+creationCode+`"}`)

	a, err := LoadArtifact(path)
	require.NoError(t, err)
	f, err := NewFactory(a)
	require.NoError(t, err)

	args, err := f.ParseArgs([]string{
		"1000000000000000000",
		"0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		"3",
		"true",
		"best of three",
		"0x11" + strings.Repeat("00", 31),
		"-5",
		"0x10",
	})
	require.NoError(t, err)

	wei, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, wei, args[0])
	assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), args[1])
	assert.Equal(t, uint8(3), args[2])
	assert.Equal(t, true, args[3])
	assert.Equal(t, "best of three", args[4])
	salt, ok := args[5].([32]byte)
	require.True(t, ok)
	assert.Equal(t, byte(0x11), salt[0])
	assert.Equal(t, int16(-5), args[6])
	assert.Equal(t, big.NewInt(16), args[7])

	data, err := f.DeployData(args...)
	require.NoError(t, err)
	assert.Equal(t, f.Bytecode, data[:len(f.Bytecode)])
	assert.Len(t, data, len(f.Bytecode)+32*10, "eight head words plus string length and data")
}

func TestParseArgsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RpsGame.json")
	writeFile(t, path, `{"abi":`+constructorABI+`,"bytecode":"`+creationCode+`"}`)
	a, err := LoadArtifact(path)
	require.NoError(t, err)
	f, err := NewFactory(a)
	require.NoError(t, err)

	_, err = f.ParseArgs([]string{"1"})
	assert.ErrorContains(t, err, "takes 8 arguments")

	valid := []string{"1", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", "3", "true", "x", "0x" + strings.Repeat("00", 31) + "ff", "0", "0"}
	cases := map[int]string{
		0: "-1",
		1: "not-an-address",
		2: "256",
		3: "maybe",
		5: "0x01",
		6: "40000",
	}
	for idx, bad := range cases {
		in := append([]string(nil), valid...)
		in[idx] = bad
		_, err := f.ParseArgs(in)
		assert.Error(t, err, "argument %d = %q", idx, bad)
	}
}

func TestDeployDataWithoutConstructor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RpsGame.json")
	writeFile(t, path, hardhatArtifact("RpsGame", "contracts/RpsGame.sol", creationCode))
	a, err := LoadArtifact(path)
	require.NoError(t, err)
	f, err := NewFactory(a)
	require.NoError(t, err)

	data, err := f.DeployData()
	require.NoError(t, err)
	assert.Equal(t, f.Bytecode, data)

	args, err := f.ParseArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, args)
}
