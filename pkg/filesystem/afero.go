package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/appbox/pkg/types"
	"github.com/spf13/afero"
)

// aferoFS implements types.FS using afero
type aferoFS struct {
	fs afero.Fs
}

// NewAferoFS creates a new afero filesystem implementation
func NewAferoFS(fs afero.Fs) types.FS {
	return &aferoFS{fs: fs}
}

// NewMemory returns an empty in-memory filesystem.
func NewMemory() types.FS {
	return NewAferoFS(afero.NewMemMapFs())
}

// NewDryRun layers an in-memory overlay over a read-only view of the OS
// filesystem. Reads see the real files, writes never reach the disk.
func NewDryRun() types.FS {
	base := afero.NewReadOnlyFs(afero.NewOsFs())
	return NewAferoFS(afero.NewCopyOnWriteFs(base, afero.NewMemMapFs()))
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.fs, name)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.fs, name, data, perm)
}

func (a *aferoFS) Open(name string) (types.File, error) {
	f, err := a.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (a *aferoFS) OpenFile(name string, flag int, perm fs.FileMode) (types.File, error) {
	f, err := a.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (a *aferoFS) Chmod(name string, mode fs.FileMode) error {
	return a.fs.Chmod(name, mode)
}

func (a *aferoFS) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

func (a *aferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := afero.ReadDir(a.fs, name)
	if err != nil {
		return nil, err
	}
	dirEntries := make([]fs.DirEntry, len(entries))
	for i, entry := range entries {
		dirEntries[i] = fs.FileInfoToDirEntry(entry)
	}
	return dirEntries, nil
}

func (a *aferoFS) Symlink(oldname, newname string) error {
	if linker, ok := a.fs.(afero.Linker); ok {
		return linker.SymlinkIfPossible(oldname, newname)
	}
	// MemMapFs has no symlinks; store the target as file content so
	// Readlink can still answer.
	return afero.WriteFile(a.fs, newname, []byte(oldname), 0777|os.ModeSymlink)
}

func (a *aferoFS) Readlink(name string) (string, error) {
	if reader, ok := a.fs.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	content, err := afero.ReadFile(a.fs, name)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (a *aferoFS) Remove(name string) error {
	return a.fs.Remove(name)
}

func (a *aferoFS) RemoveAll(path string) error {
	return a.fs.RemoveAll(path)
}

func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	if lstater, ok := a.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(name)
		return info, err
	}
	return a.fs.Stat(name)
}
