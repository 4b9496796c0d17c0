// Package config handles configuration management for appbox.
// Values are layered from embedded defaults, an optional user config file
// (TOML or YAML), APPBOX_ environment variables and explicit overrides, in
// that order, with later layers winning.
package config
