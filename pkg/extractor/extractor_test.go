package extractor_test

import (
	"context"
	stderrors "errors"
	"os"
	"testing"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/execution"
	"github.com/arthur-debert/appbox/pkg/extractor"
	"github.com/arthur-debert/appbox/pkg/filesystem"
	"github.com/arthur-debert/appbox/pkg/format"
	"github.com/arthur-debert/appbox/pkg/testutil"
	"github.com/arthur-debert/appbox/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCommandLine(t *testing.T) {
	e := extractor.NewCommandExtractor(execution.NewDryRunRunner(), execution.Root, "", "")

	tests := []struct {
		format   format.Format
		archive  string
		expected string
	}{
		{format.Zip, "/opt/boxen/cache/Demo.app.zip", "/usr/bin/unzip -o /opt/boxen/cache/Demo.app.zip -d /Applications"},
		{format.TarGz, "/opt/boxen/cache/Demo.app.tar.gz", "/usr/bin/tar -zxf /opt/boxen/cache/Demo.app.tar.gz -C /Applications"},
		{format.Tgz, "/opt/boxen/cache/Demo.app.tgz", "/usr/bin/tar -zxf /opt/boxen/cache/Demo.app.tgz -C /Applications"},
		{format.TarBz2, "/opt/boxen/cache/Demo.app.tar.bz2", "/usr/bin/tar -jxf /opt/boxen/cache/Demo.app.tar.bz2 -C /Applications"},
		{format.Tbz, "/opt/boxen/cache/Demo.app.tbz", "/usr/bin/tar -jxf /opt/boxen/cache/Demo.app.tbz -C /Applications"},
		{format.Zip, "/opt/boxen/cache/My $App.app.zip", `/usr/bin/unzip -o '/opt/boxen/cache/My $App.app.zip' -d /Applications`},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			line, err := e.CommandLine(tt.archive, tt.format, "/Applications")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, line)
		})
	}

	_, err := e.CommandLine("/x.rar", format.Format("rar"), "/Applications")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFlavorUnsupported))
}

func TestCommandExtractorRunsPrivileged(t *testing.T) {
	runner := execution.NewDryRunRunner()
	e := extractor.NewCommandExtractor(runner, execution.Root, "unzip", "gtar")

	require.NoError(t, e.Extract(context.Background(), "/c/a.app.tbz", format.Tbz, "/Applications"))

	cmds := runner.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, execution.Root, cmds[0].Privilege)
	assert.Equal(t, "gtar -jxf /c/a.app.tbz -C /Applications", cmds[0].Line)
}

func TestCommandExtractorFailure(t *testing.T) {
	t.Run("tool failure becomes an extract error", func(t *testing.T) {
		runner := &testutil.MockRunner{}
		runner.On("Run", mock.Anything, mock.Anything).
			Return(execution.Result{ExitCode: 9}, errors.New(errors.ErrCommand, "End-of-central-directory signature not found"))

		e := extractor.NewCommandExtractor(runner, execution.Root, "", "")
		err := e.Extract(context.Background(), "/c/a.app.zip", format.Zip, "/Applications")
		assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
	})

	t.Run("permission failure is surfaced verbatim", func(t *testing.T) {
		runner := &testutil.MockRunner{}
		runner.On("Run", mock.Anything, mock.Anything).
			Return(execution.Result{ExitCode: 1}, errors.New(errors.ErrPermission, "sudo: a password is required"))

		e := extractor.NewCommandExtractor(runner, execution.Root, "", "")
		err := e.Extract(context.Background(), "/c/a.app.zip", format.Zip, "/Applications")
		assert.True(t, errors.IsErrorCode(err, errors.ErrPermission))
	})
}

func extractInto(t *testing.T, fs types.FS, data []byte, f format.Format) error {
	t.Helper()
	archive := "/opt/boxen/cache/Demo.app." + f.Extension()
	require.NoError(t, fs.MkdirAll("/opt/boxen/cache", 0755))
	require.NoError(t, fs.WriteFile(archive, data, 0644))
	return extractor.NewArchiveExtractor(fs).Extract(context.Background(), archive, f, "/Applications")
}

func TestArchiveExtractor(t *testing.T) {
	entries := testutil.Bundle("Demo", "v1")

	tests := []struct {
		name   string
		format format.Format
		build  func(t *testing.T, entries []testutil.Entry) []byte
	}{
		{"zip", format.Zip, testutil.BuildZip},
		{"tar.gz", format.TarGz, testutil.BuildTarGz},
		{"tgz alias", format.Tgz, testutil.BuildTarGz},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMemory()
			require.NoError(t, extractInto(t, fs, tt.build(t, entries), tt.format))

			content, err := fs.ReadFile("/Applications/Demo.app/Contents/Info.plist")
			require.NoError(t, err)
			assert.Equal(t, "<plist>v1</plist>\n", string(content))

			info, err := fs.Stat("/Applications/Demo.app/Contents/MacOS/demo")
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
		})
	}
}

func TestArchiveExtractorBzip2(t *testing.T) {
	data, err := os.ReadFile("testdata/demo.tar.bz2")
	require.NoError(t, err)

	for _, f := range []format.Format{format.TarBz2, format.Tbz} {
		t.Run(string(f), func(t *testing.T) {
			fs := filesystem.NewMemory()
			require.NoError(t, extractInto(t, fs, data, f))

			content, err := fs.ReadFile("/Applications/Demo.app/Contents/Info.plist")
			require.NoError(t, err)
			assert.Equal(t, "<plist>bzip2</plist>\n", string(content))
		})
	}
}

func TestArchiveExtractorOverwrites(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/Applications/Demo.app/Contents", 0755))
	require.NoError(t, fs.WriteFile("/Applications/Demo.app/Contents/Info.plist", []byte("a much longer old plist that must be truncated"), 0644))

	require.NoError(t, extractInto(t, fs, testutil.BuildZip(t, testutil.Bundle("Demo", "v2")), format.Zip))

	content, err := fs.ReadFile("/Applications/Demo.app/Contents/Info.plist")
	require.NoError(t, err)
	assert.Equal(t, "<plist>v2</plist>\n", string(content))
}

func TestArchiveExtractorSymlinks(t *testing.T) {
	entries := append(testutil.Bundle("Demo", "v1"),
		testutil.Entry{Name: "Demo.app/Contents/Current", Link: "MacOS"})

	for _, build := range []struct {
		f     format.Format
		build func(t *testing.T, entries []testutil.Entry) []byte
	}{{format.Zip, testutil.BuildZip}, {format.TarGz, testutil.BuildTarGz}} {
		t.Run(string(build.f), func(t *testing.T) {
			fs := filesystem.NewOS()
			root := t.TempDir()
			archive := root + "/demo." + build.f.Extension()
			require.NoError(t, os.WriteFile(archive, build.build(t, entries), 0644))

			dest := root + "/Applications"
			err := extractor.NewArchiveExtractor(fs).Extract(context.Background(), archive, build.f, dest)
			require.NoError(t, err)

			target, err := os.Readlink(dest + "/Demo.app/Contents/Current")
			require.NoError(t, err)
			assert.Equal(t, "MacOS", target)
		})
	}
}

func TestArchiveExtractorRejectsEscapingEntries(t *testing.T) {
	entries := []testutil.Entry{{Name: "../../etc/evil", Content: "x"}}

	for _, build := range []struct {
		f     format.Format
		build func(t *testing.T, entries []testutil.Entry) []byte
	}{{format.Zip, testutil.BuildZip}, {format.TarGz, testutil.BuildTarGz}} {
		t.Run(string(build.f), func(t *testing.T) {
			fs := filesystem.NewMemory()
			err := extractInto(t, fs, build.build(t, entries), build.f)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))

			_, statErr := fs.Stat("/etc/evil")
			assert.Error(t, statErr)
		})
	}
}

func TestArchiveExtractorRejectsSymlinkEscapes(t *testing.T) {
	builders := []struct {
		f     format.Format
		build func(t *testing.T, entries []testutil.Entry) []byte
	}{{format.Zip, testutil.BuildZip}, {format.TarGz, testutil.BuildTarGz}}

	links := map[string]func(outside string) string{
		"absolute target": func(outside string) string { return outside },
		"relative target": func(string) string { return "../../outside" },
	}

	for linkName, link := range links {
		for _, build := range builders {
			t.Run(linkName+"/"+string(build.f), func(t *testing.T) {
				root := t.TempDir()
				outside := root + "/outside"
				require.NoError(t, os.MkdirAll(outside, 0755))

				entries := []testutil.Entry{
					{Name: "Demo.app/link", Link: link(outside)},
					{Name: "Demo.app/link/pwned", Content: "escaped"},
				}
				archive := root + "/demo." + build.f.Extension()
				require.NoError(t, os.WriteFile(archive, build.build(t, entries), 0644))

				dest := root + "/Applications"
				err := extractor.NewArchiveExtractor(filesystem.NewOS()).
					Extract(context.Background(), archive, build.f, dest)
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))

				_, statErr := os.Stat(outside + "/pwned")
				assert.True(t, os.IsNotExist(statErr), "nothing may be written outside the destination")
				_, statErr = os.Lstat(dest + "/Demo.app/link")
				assert.True(t, os.IsNotExist(statErr))
			})
		}
	}
}

func TestArchiveExtractorRefusesExistingSymlinkedDirectory(t *testing.T) {
	root := t.TempDir()
	outside := root + "/outside"
	dest := root + "/Applications"
	require.NoError(t, os.MkdirAll(outside, 0755))
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.Symlink(outside, dest+"/Shared"))

	archive := root + "/demo.tar.gz"
	data := testutil.BuildTarGz(t, []testutil.Entry{{Name: "Shared/pwned", Content: "escaped"}})
	require.NoError(t, os.WriteFile(archive, data, 0644))

	err := extractor.NewArchiveExtractor(filesystem.NewOS()).
		Extract(context.Background(), archive, format.TarGz, dest)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))

	_, statErr := os.Stat(outside + "/pwned")
	assert.True(t, os.IsNotExist(statErr))
}

func TestArchiveExtractorCorruptArchive(t *testing.T) {
	for _, f := range []format.Format{format.Zip, format.TarGz, format.TarBz2} {
		t.Run(string(f), func(t *testing.T) {
			fs := filesystem.NewMemory()
			err := extractInto(t, fs, []byte("this is not an archive"), f)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
		})
	}
}

func TestArchiveExtractorMissingArchive(t *testing.T) {
	err := extractor.NewArchiveExtractor(filesystem.NewMemory()).
		Extract(context.Background(), "/nope.zip", format.Zip, "/Applications")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
	assert.True(t, stderrors.Is(err, os.ErrNotExist))
}

func TestArchiveExtractorCancelled(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile("/a.zip", testutil.BuildZip(t, testutil.Bundle("Demo", "v1")), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := extractor.NewArchiveExtractor(fs).Extract(ctx, "/a.zip", format.Zip, "/Applications")
	assert.ErrorIs(t, err, context.Canceled)
}
