package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/arthur-debert/appbox/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// the section from the key: APPBOX_FETCH__BACKEND=http.
const EnvPrefix = "APPBOX_"

// Options controls where configuration is read from.
type Options struct {
	// File is an explicit config file. It must exist when set. When empty
	// the user config file is read if present.
	File string
	// Overrides are applied last, keyed by dotted path (fetch.backend).
	Overrides map[string]interface{}
}

// defaultFile is swapped in tests.
var defaultFile = paths.ConfigFile

// Load builds the effective configuration and validates it.
func Load(opts Options) (*Config, error) {
	k, err := Koanf(opts)
	if err != nil {
		return nil, err
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Koanf returns the merged, undecoded configuration tree.
func Koanf(opts Options) (*koanf.Koanf, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file
	path, required := opts.File, true
	if path == "" {
		path, required = defaultFile(), false
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	} else if required {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", path).
			WithDetail("path", path)
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Explicit overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	return k, nil
}

// ParseOverrides turns key=value pairs into an Overrides map.
func ParseOverrides(pairs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid override %q (expected key=value)", pair)
		}
		out[key] = value
	}
	return out, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	}
	return toml.Parser()
}
