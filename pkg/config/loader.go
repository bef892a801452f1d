package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"rpsgame-deployer/pkg/logging"
)

// Load reads the config file at path and applies the environment overlay.
// Precedence: ENV > file > defaults.
//
// A missing file is only tolerated for DefaultPath; an explicitly named file
// must exist.
func Load(path string) (Config, error) {
	logger := logging.WithComponent("config")
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parse(data, &cfg); err != nil {
			return Config{}, eris.Wrapf(err, "config %s", path)
		}
		logger.Debug().Str("path", path).Msg("loaded config file")
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		logger.Debug().Str("path", path).Msg("no config file, using defaults")
	default:
		return Config{}, eris.Wrapf(err, "read config %s", path)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// parse decodes strictly on top of the defaults. A networks table in the file
// replaces the default one instead of merging into it.
func parse(data []byte, cfg *Config) error {
	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return eris.Wrap(ErrUnknownConfigField, err.Error())
		}
		return eris.Wrap(err, "parse yaml")
	}

	if file.Solidity != "" {
		cfg.Solidity = expand(file.Solidity)
	}
	if file.DefaultNetwork != "" {
		cfg.DefaultNetwork = expand(file.DefaultNetwork)
	}
	if len(file.Networks) > 0 {
		cfg.Networks = make(map[string]Network, len(file.Networks))
		for name, n := range file.Networks {
			n.Name = name
			n.URL = expand(n.URL)
			for i, acc := range n.Accounts {
				n.Accounts[i] = expand(acc)
			}
			cfg.Networks[name] = n
		}
		// A file that drops localhost and names no default keeps a usable default.
		if _, ok := cfg.Networks[cfg.DefaultNetwork]; !ok && file.DefaultNetwork == "" && len(cfg.Networks) == 1 {
			for name := range cfg.Networks {
				cfg.DefaultNetwork = name
			}
		}
	}
	if file.Paths.Artifacts != "" {
		cfg.Paths.Artifacts = expand(file.Paths.Artifacts)
	}
	if file.Paths.Out != "" {
		cfg.Paths.Out = expand(file.Paths.Out)
	}
	if file.Paths.Deployments != "" {
		cfg.Paths.Deployments = expand(file.Paths.Deployments)
	}
	if file.Verification.APIURL != "" {
		cfg.Verification.APIURL = expand(file.Verification.APIURL)
	}
	return nil
}

func expand(s string) string {
	return os.ExpandEnv(s)
}

// EnvKey returns the variable name that overrides a network URL,
// e.g. RPS_LOCALHOST_URL.
func EnvKey(network string) string {
	up := strings.ToUpper(network)
	up = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, up)
	return "RPS_" + up + "_URL"
}

func applyEnv(cfg *Config) {
	logger := logging.WithComponent("config")

	if v, ok := os.LookupEnv("RPS_NETWORK"); ok && v != "" {
		cfg.DefaultNetwork = v
	}
	for name, n := range cfg.Networks {
		if v, ok := os.LookupEnv(EnvKey(name)); ok && v != "" {
			n.URL = v
			cfg.Networks[name] = n
			logger.Debug().Str("network", name).Msg("url overridden from environment")
		}
	}
	if v, ok := os.LookupEnv("RPS_PRIVATE_KEY"); ok && v != "" {
		cfg.keyOverride = nil
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.keyOverride = append(cfg.keyOverride, k)
			}
		}
	}
}
