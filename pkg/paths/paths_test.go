package paths_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/format"
	"github.com/arthur-debert/appbox/pkg/paths"
	"github.com/stretchr/testify/assert"
)

func TestDefaultLayout(t *testing.T) {
	l := paths.Default()

	assert.NoError(t, l.Validate())
	assert.Equal(t, "/opt/boxen/cache/Firefox.app.zip", l.CacheFile("Firefox", format.Zip))
	assert.Equal(t, "/opt/boxen/cache/Firefox.app.tar.bz2", l.CacheFile("Firefox", format.TarBz2))
	assert.Equal(t, "/Applications/Firefox.app", l.BundlePath("Firefox"))
	assert.Equal(t, "/Applications/Firefox.app", l.BundlePath("Firefox.app"))
	assert.Equal(t, "/Applications/Firefox", l.AppPath("Firefox"))
	assert.Equal(t, "/var/db/.puppet_compressed_app_installed_Firefox", l.MarkerPath("Firefox"))
}

func TestNameFromMarker(t *testing.T) {
	l := paths.Default()

	tests := []struct {
		file string
		name string
		ok   bool
	}{
		{".puppet_compressed_app_installed_Firefox", "Firefox", true},
		{".puppet_compressed_app_installed_Google Chrome", "Google Chrome", true},
		{".puppet_compressed_app_installed_", "", false},
		{".puppet_dmg_installed_Firefox", "", false},
		{"Firefox", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			name, ok := l.NameFromMarker(tt.file)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*paths.Layout)
		errMsg string
	}{
		{"relative cache dir", func(l *paths.Layout) { l.CacheDir = "cache" }, "paths.cache_dir"},
		{"empty install root", func(l *paths.Layout) { l.InstallRoot = "" }, "paths.install_root"},
		{"relative marker dir", func(l *paths.Layout) { l.MarkerDir = "db" }, "paths.marker_dir"},
		{"empty prefix", func(l *paths.Layout) { l.MarkerPrefix = "" }, "paths.marker_prefix"},
		{"prefix with separator", func(l *paths.Layout) { l.MarkerPrefix = "a/b" }, "paths.marker_prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := paths.Default()
			tt.modify(&l)
			err := l.Validate()
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, paths.ValidateName("Firefox"))
	assert.NoError(t, paths.ValidateName("foo; rm -rf ."))
	assert.NoError(t, paths.ValidateName("Google Chrome"))

	for _, bad := range []string{"", ".", "..", "a/b", "../etc", "nul\x00byte"} {
		err := paths.ValidateName(bad)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "name %q", bad)
	}
	assert.Contains(t, paths.ValidateName("").Error(), "must specify a package name")
}

func TestConfigFileLocation(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.ConfigFile(), filepath.Join("appbox", "config.toml")))
}
