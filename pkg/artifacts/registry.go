package artifacts

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"rpsgame-deployer/pkg/logging"
)

// Registry finds compiled contracts under one or more build roots. Roots are
// searched in order and the first root with a match wins, so a project that
// builds with both Hardhat and Foundry resolves to the first configured tool.
type Registry struct {
	roots  []string
	logger zerolog.Logger
}

// NewRegistry creates a registry over the given build roots.
func NewRegistry(roots ...string) *Registry {
	return &Registry{
		roots:  roots,
		logger: logging.WithComponent("artifacts"),
	}
}

// Roots returns the searched directories.
func (r *Registry) Roots() []string {
	return r.roots
}

type candidate struct {
	path      string
	qualified string
}

// FindArtifactPath finds the artifact file for a bare ("RpsGame") or fully
// qualified ("contracts/RpsGame.sol:RpsGame") contract name.
func (r *Registry) FindArtifactPath(name string) (string, error) {
	source, contract := splitQualified(name)

	for _, root := range r.roots {
		if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
			continue
		}
		found, err := r.scan(root, source, contract)
		if err != nil {
			return "", err
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			r.logger.Debug().Str("contract", name).Str("path", found[0].path).Msg("artifact resolved")
			return found[0].path, nil
		default:
			names := make([]string, 0, len(found))
			for _, c := range found {
				names = append(names, c.qualified)
			}
			sort.Strings(names)
			return "", eris.Wrapf(ErrAmbiguousArtifact, "%s matches %s; use a fully qualified name", name, strings.Join(names, ", "))
		}
	}

	return "", eris.Wrapf(ErrArtifactNotFound, "contract %s in %s", name, strings.Join(r.roots, ", "))
}

func (r *Registry) scan(root, source, contract string) ([]candidate, error) {
	var found []candidate
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" || d.Name() == "cache" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != contract+".json" {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if source != "" && rel != source && !strings.HasSuffix(source, "/"+rel) {
			return nil
		}
		found = append(found, candidate{path: p, qualified: rel + ":" + contract})
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "scan %s", root)
	}
	return found, nil
}

func splitQualified(name string) (source, contract string) {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return path.Clean(filepath.ToSlash(name[:i])), name[i+1:]
	}
	return "", name
}

// Artifact loads the artifact for name.
func (r *Registry) Artifact(name string) (*Artifact, error) {
	p, err := r.FindArtifactPath(name)
	if err != nil {
		return nil, err
	}
	return LoadArtifact(p)
}

// Factory resolves name into a deployable factory.
func (r *Registry) Factory(name string) (*Factory, error) {
	a, err := r.Artifact(name)
	if err != nil {
		return nil, err
	}
	return NewFactory(a)
}
