package config

import (
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Validate checks business rules and reports every problem at once.
func Validate(cfg Config) error {
	verr := &ValidationError{}

	if cfg.Solidity == "" {
		verr.add("solidity: compiler version is required")
	} else if _, err := semver.StrictNewVersion(cfg.Solidity); err != nil {
		verr.add("solidity: %q is not a version: %v", cfg.Solidity, err)
	}

	if len(cfg.Networks) == 0 {
		verr.add("networks: at least one network is required")
	}
	for _, name := range cfg.NetworkNames() {
		validateNetwork(verr, name, cfg.Networks[name])
	}
	if len(cfg.Networks) > 0 {
		if _, ok := cfg.Networks[cfg.DefaultNetwork]; !ok {
			verr.add("defaultNetwork: %q is not configured", cfg.DefaultNetwork)
		}
	}
	for i, key := range cfg.keyOverride {
		if !ValidPrivateKey(key) {
			verr.add("RPS_PRIVATE_KEY[%d]: not a 32-byte hex private key", i)
		}
	}

	if cfg.Verification.APIURL != "" {
		if u, err := url.Parse(cfg.Verification.APIURL); err != nil || u.Host == "" {
			verr.add("verification.apiUrl: %q is not an absolute URL", cfg.Verification.APIURL)
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func validateNetwork(verr *ValidationError, name string, n Network) {
	if n.URL == "" {
		verr.add("networks.%s.url: required", name)
	} else {
		u, err := url.Parse(n.URL)
		switch {
		case err != nil:
			verr.add("networks.%s.url: %v", name, err)
		case u.Host == "":
			verr.add("networks.%s.url: %q has no host", name, n.URL)
		default:
			switch u.Scheme {
			case "http", "https", "ws", "wss":
			default:
				verr.add("networks.%s.url: unsupported scheme %q", name, u.Scheme)
			}
		}
	}
	for i, key := range n.Accounts {
		if !ValidPrivateKey(key) {
			// never echo the key itself
			verr.add("networks.%s.accounts[%d]: not a 32-byte hex private key", name, i)
		}
	}
	if n.Timeout < 0 {
		verr.add("networks.%s.timeout: must not be negative", name)
	}
}

// ValidPrivateKey reports whether key is 32 bytes of hex, with or without 0x.
func ValidPrivateKey(key string) bool {
	key = strings.TrimPrefix(strings.TrimPrefix(key, "0x"), "0X")
	if len(key) != 64 {
		return false
	}
	_, err := hex.DecodeString(key)
	return err == nil
}
