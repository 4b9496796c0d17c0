// Package manifest loads declared resources from YAML or TOML files.
package manifest

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/provider"
	"github.com/arthur-debert/appbox/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// entry mirrors one declared package as written in a manifest.
type entry struct {
	Name   string `yaml:"name" toml:"name"`
	Source string `yaml:"source" toml:"source"`
	Flavor string `yaml:"flavor" toml:"flavor"`
	Ensure string `yaml:"ensure" toml:"ensure"`
}

type document struct {
	Packages []entry `yaml:"packages" toml:"packages"`
}

// Load reads the manifest at path. The decoder is chosen by extension:
// .yaml/.yml or .toml.
func Load(fs types.FS, path string) ([]provider.Resource, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifest, "failed to read manifest %s", path)
	}
	resources, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifest, "invalid manifest %s", path)
	}
	return resources, nil
}

// Parse decodes manifest data. ext selects the syntax and includes the dot.
func Parse(data []byte, ext string) ([]provider.Resource, error) {
	var doc document
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF; treat it as no packages.
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, errors.ErrManifest, "failed to parse YAML")
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrManifest, "failed to parse TOML")
		}
	default:
		return nil, errors.Newf(errors.ErrManifest, "unsupported manifest type %q (use .yaml, .yml or .toml)", ext)
	}

	seen := make(map[string]bool, len(doc.Packages))
	resources := make([]provider.Resource, 0, len(doc.Packages))
	for i, e := range doc.Packages {
		if e.Name == "" {
			return nil, errors.Newf(errors.ErrManifest, "package %d: must specify a package name", i+1)
		}
		if seen[e.Name] {
			return nil, errors.Newf(errors.ErrManifest, "package %q declared more than once", e.Name)
		}
		seen[e.Name] = true

		ensure, err := provider.ParseEnsure(e.Ensure)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrManifest, "package %q", e.Name)
		}
		resources = append(resources, provider.Resource{
			Name:   e.Name,
			Source: e.Source,
			Flavor: e.Flavor,
			Ensure: ensure,
		})
	}
	return resources, nil
}
