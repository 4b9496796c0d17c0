package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/appbox/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseFS(t *testing.T, fsys types.FS, root string) {
	t.Helper()

	dir := filepath.Join(root, "cache", "sub")
	require.NoError(t, fsys.MkdirAll(dir, 0755))

	file := filepath.Join(dir, "demo.app.zip")
	require.NoError(t, fsys.WriteFile(file, []byte("archive"), 0644))

	content, err := fsys.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "archive", string(content))

	f, err := fsys.OpenFile(filepath.Join(dir, "streamed"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	require.NoError(t, err)
	_, err = io.WriteString(f, "chunk")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := fsys.Open(filepath.Join(dir, "streamed"))
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "chunk", string(data))

	require.NoError(t, fsys.Chmod(file, 0600))

	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = fsys.ReadFile(dir)
	assert.Error(t, err)

	require.NoError(t, fsys.RemoveAll(filepath.Join(root, "cache")))
	_, err = fsys.Stat(file)
	assert.True(t, os.IsNotExist(err))

	// RemoveAll on a missing path is not an error
	assert.NoError(t, fsys.RemoveAll(filepath.Join(root, "missing")))
}

func TestOSFilesystem(t *testing.T) {
	exerciseFS(t, NewOS(), t.TempDir())
}

func TestAferoFilesystem(t *testing.T) {
	exerciseFS(t, NewMemory(), "/tmp")
}

func TestAferoSymlinkFallback(t *testing.T) {
	fsys := NewMemory()
	require.NoError(t, fsys.MkdirAll("/apps/Demo.app/Contents", 0755))
	require.NoError(t, fsys.Symlink("Versions/Current", "/apps/Demo.app/Contents/Current"))

	target, err := fsys.Readlink("/apps/Demo.app/Contents/Current")
	require.NoError(t, err)
	assert.Equal(t, "Versions/Current", target)
}

func TestOSSymlink(t *testing.T) {
	fsys := NewOS()
	dir := t.TempDir()
	link := filepath.Join(dir, "link")
	require.NoError(t, fsys.Symlink("target", link))

	target, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, "target", target)

	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestDryRunNeverWritesToDisk(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.txt")
	require.NoError(t, os.WriteFile(existing, []byte("real"), 0644))

	fsys := NewDryRun()

	content, err := fsys.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "real", string(content), "reads see the real filesystem")

	created := filepath.Join(root, "cache", "new.txt")
	require.NoError(t, fsys.MkdirAll(filepath.Dir(created), 0755))
	require.NoError(t, fsys.WriteFile(created, []byte("overlay"), 0644))
	content, err = fsys.ReadFile(created)
	require.NoError(t, err)
	assert.Equal(t, "overlay", string(content))

	_, err = os.Stat(created)
	assert.True(t, os.IsNotExist(err), "writes stay in memory")
}
