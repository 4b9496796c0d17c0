package config

import (
	"time"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/execution"
	"github.com/arthur-debert/appbox/pkg/paths"
)

// Backends
const (
	BackendCurl    = "curl"
	BackendHTTP    = "http"
	BackendCommand = "command"
	BackendNative  = "native"
)

// Config is the effective appbox configuration.
type Config struct {
	Paths     paths.Layout `koanf:"paths" json:"paths"`
	Privilege Privilege    `koanf:"privilege" json:"privilege"`
	Fetch     Fetch        `koanf:"fetch" json:"fetch"`
	Extract   Extract      `koanf:"extract" json:"extract"`
}

// Privilege selects the identity for privileged steps.
type Privilege struct {
	User string `koanf:"user" json:"user"`
}

// Fetch configures downloads.
type Fetch struct {
	Backend string        `koanf:"backend" json:"backend"`
	Curl    string        `koanf:"curl" json:"curl"`
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// Extract configures archive extraction.
type Extract struct {
	Backend string        `koanf:"backend" json:"backend"`
	Unzip   string        `koanf:"unzip" json:"unzip"`
	Tar     string        `koanf:"tar" json:"tar"`
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// ExecutionPrivilege converts the configured user to an execution.Privilege.
func (c *Config) ExecutionPrivilege() execution.Privilege {
	return execution.Privilege{User: c.Privilege.User}
}

// Validate rejects unknown backends, relative paths and negative timeouts.
func (c *Config) Validate() error {
	if err := c.Paths.Validate(); err != nil {
		return err
	}
	switch c.Fetch.Backend {
	case BackendCurl, BackendHTTP:
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown fetch backend %q (expected %s or %s)",
			c.Fetch.Backend, BackendCurl, BackendHTTP)
	}
	switch c.Extract.Backend {
	case BackendCommand, BackendNative:
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown extract backend %q (expected %s or %s)",
			c.Extract.Backend, BackendCommand, BackendNative)
	}
	if c.Fetch.Backend == BackendCurl && c.Fetch.Curl == "" {
		return errors.New(errors.ErrConfigValid, "fetch.curl must be set for the curl backend")
	}
	if c.Extract.Backend == BackendCommand && (c.Extract.Unzip == "" || c.Extract.Tar == "") {
		return errors.New(errors.ErrConfigValid, "extract.unzip and extract.tar must be set for the command backend")
	}
	// The native extractor and its cleaner run in-process as the invoking
	// user, so they cannot honour privilege.user.
	if c.Extract.Backend == BackendNative && c.Privilege.User != "" {
		return errors.Newf(errors.ErrConfigValid,
			"extract.backend %q runs as the invoking user; set privilege.user = \"\" or use the %s backend",
			BackendNative, BackendCommand)
	}
	if c.Fetch.Timeout < 0 || c.Extract.Timeout < 0 {
		return errors.New(errors.ErrConfigValid, "timeouts must not be negative")
	}
	return nil
}
