package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anvilKey0 = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rpsgame.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultHasSingleLocalhostNetwork(t *testing.T) {
	cfg := Default()

	require.Len(t, cfg.Networks, 1)
	n, err := cfg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "localhost", n.Name)
	assert.Equal(t, "http://127.0.0.1:8545/", n.URL)
	assert.Equal(t, "0.8.4", cfg.Solidity)
	assert.NoError(t, Validate(cfg))
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, cfg.NetworkNames())
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("KOVAN_KEY", anvilKey0)
	path := writeConfig(t, `
solidity: "0.8.4"
defaultNetwork: kovan
networks:
  localhost:
    url: http://127.0.0.1:8545/
  kovan:
    url: https://kovan.example.org/rpc
    chainId: 42
    accounts: ["${KOVAN_KEY}"]
    gas: 5000000
    gasPrice: 25000000000
    timeout: 90s
paths:
  artifacts: build/artifacts
verification:
  apiUrl: https://verify.example.org/api
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	n, err := cfg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "kovan", n.Name)
	assert.Equal(t, uint64(42), n.ChainID)
	assert.Equal(t, []string{anvilKey0}, n.Accounts)
	assert.Equal(t, uint64(5000000), n.Gas)
	assert.Equal(t, uint64(25000000000), n.GasPrice)
	assert.Equal(t, 90*time.Second, n.Timeout)

	assert.Equal(t, "build/artifacts", cfg.Paths.Artifacts)
	assert.Equal(t, "out", cfg.Paths.Out, "unset paths keep their defaults")
	assert.Equal(t, []string{"build/artifacts", "out"}, cfg.ArtifactRoots())
	assert.Equal(t, "https://verify.example.org/api", cfg.Verification.APIURL)
}

func TestLoadSingleNetworkBecomesDefault(t *testing.T) {
	path := writeConfig(t, `
networks:
  anvil:
    url: http://127.0.0.1:8546
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anvil", cfg.DefaultNetwork)
	assert.NoError(t, Validate(cfg))
}

func TestLoadUnknownField(t *testing.T) {
	path := writeConfig(t, `
solidity: "0.8.4"
compilers: ["0.8.4"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField))
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Networks, cfg.Networks)
}

func TestEnvOverlay(t *testing.T) {
	path := writeConfig(t, `
networks:
  localhost:
    url: http://127.0.0.1:8545/
  sepolia:
    url: https://sepolia.example.org
`)
	t.Setenv("RPS_NETWORK", "sepolia")
	t.Setenv("RPS_SEPOLIA_URL", "https://other.example.org")
	t.Setenv("RPS_PRIVATE_KEY", anvilKey0+", ")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	n, err := cfg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)
	assert.Equal(t, "https://other.example.org", n.URL)
	assert.Equal(t, []string{anvilKey0}, n.Accounts)

	local, err := cfg.Resolve("localhost")
	require.NoError(t, err)
	assert.Equal(t, []string{anvilKey0}, local.Accounts, "key override follows the resolved network")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "RPS_LOCALHOST_URL", EnvKey("localhost"))
	assert.Equal(t, "RPS_ARB_SEPOLIA_URL", EnvKey("arb-sepolia"))
}

func TestResolveUnknownNetwork(t *testing.T) {
	_, err := Default().Resolve("mainnet")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownNetwork)
	assert.Contains(t, err.Error(), "localhost")
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Config{
		Solidity:       "latest",
		DefaultNetwork: "mainnet",
		Networks: map[string]Network{
			"a": {URL: ""},
			"b": {URL: "ftp://example.org"},
			"c": {URL: "http://127.0.0.1:8545", Accounts: []string{"0x1234"}},
			"d": {URL: "127.0.0.1:8545", Timeout: -time.Second},
		},
		Verification: Verification{APIURL: "not a url"},
	}

	err := Validate(cfg)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	joined := verr.Error()
	assert.Contains(t, joined, "solidity")
	assert.Contains(t, joined, "networks.a.url: required")
	assert.Contains(t, joined, `unsupported scheme "ftp"`)
	assert.Contains(t, joined, "networks.c.accounts[0]")
	assert.NotContains(t, joined, "0x1234")
	assert.Contains(t, joined, "networks.d.timeout")
	assert.Contains(t, joined, `defaultNetwork: "mainnet"`)
	assert.Contains(t, joined, "verification.apiUrl")
}

func TestValidPrivateKey(t *testing.T) {
	assert.True(t, ValidPrivateKey(anvilKey0))
	assert.True(t, ValidPrivateKey(anvilKey0[2:]))
	assert.False(t, ValidPrivateKey("0xzz"+anvilKey0[4:]))
	assert.False(t, ValidPrivateKey(""))
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
