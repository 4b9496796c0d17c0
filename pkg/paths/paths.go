// Package paths provides centralized path handling for appbox.
//
// Layout holds the four locations the package lifecycle touches: the
// download cache, the install root, and the marker directory with its file
// name prefix. The defaults mirror the boxen layout on macOS hosts. Per-user
// files (configuration, logs) follow the XDG Base Directory specification.
package paths

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/format"
)

// Default locations. These are the values written by the provider this tool
// replaces, so markers left behind by it are recognised.
const (
	DefaultCacheDir     = "/opt/boxen/cache"
	DefaultInstallRoot  = "/Applications"
	DefaultMarkerDir    = "/var/db"
	DefaultMarkerPrefix = ".puppet_compressed_app_installed_"

	// BundleSuffix is appended to a package name to form its bundle directory.
	BundleSuffix = ".app"

	// AppName is the directory name used under the XDG roots.
	AppName = "appbox"
)

// Layout describes where packages are cached, installed and recorded.
type Layout struct {
	CacheDir     string `koanf:"cache_dir" json:"cache_dir"`
	InstallRoot  string `koanf:"install_root" json:"install_root"`
	MarkerDir    string `koanf:"marker_dir" json:"marker_dir"`
	MarkerPrefix string `koanf:"marker_prefix" json:"marker_prefix"`
}

// Default returns the stock layout.
func Default() Layout {
	return Layout{
		CacheDir:     DefaultCacheDir,
		InstallRoot:  DefaultInstallRoot,
		MarkerDir:    DefaultMarkerDir,
		MarkerPrefix: DefaultMarkerPrefix,
	}
}

// Validate checks that every directory is absolute and the prefix is usable.
func (l Layout) Validate() error {
	dirs := map[string]string{
		"cache_dir":    l.CacheDir,
		"install_root": l.InstallRoot,
		"marker_dir":   l.MarkerDir,
	}
	for key, dir := range dirs {
		if dir == "" || !filepath.IsAbs(dir) {
			return errors.Newf(errors.ErrConfigValid, "paths.%s must be an absolute path, got %q", key, dir)
		}
	}
	if l.MarkerPrefix == "" || strings.ContainsRune(l.MarkerPrefix, filepath.Separator) {
		return errors.Newf(errors.ErrConfigValid, "paths.marker_prefix must be a non-empty file name prefix, got %q", l.MarkerPrefix)
	}
	return nil
}

// CacheFile returns <cache>/<name>.app.<ext>.
func (l Layout) CacheFile(name string, f format.Format) string {
	return filepath.Join(l.CacheDir, name+BundleSuffix+"."+f.Extension())
}

// AppPath returns <root>/<name>, the path the uninstaller has always removed.
func (l Layout) AppPath(name string) string {
	return filepath.Join(l.InstallRoot, name)
}

// BundlePath returns the bundle directory cleared before extraction:
// <root>/<name>.app, or <root>/<name> when the name already ends in .app.
func (l Layout) BundlePath(name string) string {
	if strings.HasSuffix(name, BundleSuffix) {
		return l.AppPath(name)
	}
	return filepath.Join(l.InstallRoot, name+BundleSuffix)
}

// MarkerPath returns the marker file recording that name is installed.
func (l Layout) MarkerPath(name string) string {
	return filepath.Join(l.MarkerDir, l.MarkerPrefix+name)
}

// NameFromMarker extracts the package name from a marker file name.
func (l Layout) NameFromMarker(fileName string) (string, bool) {
	if !strings.HasPrefix(fileName, l.MarkerPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(fileName, l.MarkerPrefix)
	if name == "" {
		return "", false
	}
	return name, true
}

// ValidateName rejects names that cannot be used as a single path component.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New(errors.ErrInvalidInput, "must specify a package name")
	case name == "." || name == "..":
		return errors.Newf(errors.ErrInvalidInput, "package name %q is not a valid file name", name)
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, 0):
		return errors.Newf(errors.ErrInvalidInput, "package name %q must not contain '/' or NUL", name)
	}
	return nil
}

// ConfigFile returns the default user configuration file path. The file may
// not exist.
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}
