package extractor

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/format"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/arthur-debert/appbox/pkg/types"
	"github.com/rs/zerolog"
)

// ArchiveExtractor unpacks archives in-process through a types.FS.
type ArchiveExtractor struct {
	fs     types.FS
	logger zerolog.Logger
}

// NewArchiveExtractor creates a native extractor writing to fs.
func NewArchiveExtractor(fs types.FS) *ArchiveExtractor {
	return &ArchiveExtractor{
		fs:     fs,
		logger: logging.GetLogger("extractor.archive"),
	}
}

// Extract unpacks archive into dest. Entries resolving outside dest are
// rejected.
func (e *ArchiveExtractor) Extract(ctx context.Context, archive string, f format.Format, dest string) error {
	e.logger.Info().
		Str("archive", archive).
		Str("format", string(f)).
		Str("dest", dest).
		Msg("Extracting archive")

	if err := e.fs.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "failed to create %s", dest)
	}

	var err error
	switch f.Canonical() {
	case format.Zip:
		err = e.extractZip(ctx, archive, dest)
	case format.TarGz, format.TarBz2:
		err = e.extractTar(ctx, archive, f.Compression(), dest)
	default:
		return errors.Newf(errors.ErrFlavorUnsupported, "no extractor for format %q", f)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "failed to extract %s", archive).
			WithDetail("archive", archive).
			WithDetail("format", string(f))
	}
	return nil
}

func (e *ArchiveExtractor) extractZip(ctx context.Context, archive, dest string) error {
	file, err := e.fs.Open(archive)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	zr, err := zip.NewReader(file, info.Size())
	if err != nil {
		return err
	}

	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := entryPath(dest, zf.Name)
		if err != nil {
			return err
		}
		mode := zf.Mode()

		switch {
		case zf.FileInfo().IsDir():
			err = e.mkdir(dest, target, dirMode(mode))
		case mode&fs.ModeSymlink != 0:
			err = e.writeZipSymlink(zf, dest, target)
		default:
			err = e.writeZipFile(zf, dest, target, mode)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", zf.Name, err)
		}
	}
	return nil
}

func (e *ArchiveExtractor) writeZipFile(zf *zip.File, dest, target string, mode fs.FileMode) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return e.writeFile(dest, target, rc, mode)
}

func (e *ArchiveExtractor) writeZipSymlink(zf *zip.File, dest, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	link, err := io.ReadAll(io.LimitReader(rc, 4096))
	if err != nil {
		return err
	}
	return e.symlink(dest, string(link), target)
}

func (e *ArchiveExtractor) extractTar(ctx context.Context, archive string, c format.Compression, dest string) error {
	file, err := e.fs.Open(archive)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	var stream io.Reader
	switch c {
	case format.CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return err
		}
		defer func() { _ = gz.Close() }()
		stream = gz
	case format.CompressionBzip2:
		stream = bzip2.NewReader(file)
	default:
		stream = file
	}

	tr := tar.NewReader(stream)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := entryPath(dest, hdr.Name)
		if err != nil {
			return err
		}
		mode := hdr.FileInfo().Mode()

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = e.mkdir(dest, target, dirMode(mode))
		case tar.TypeReg:
			err = e.writeFile(dest, target, tr, mode)
		case tar.TypeSymlink:
			err = e.symlink(dest, hdr.Linkname, target)
		default:
			e.logger.Debug().Str("entry", hdr.Name).Msg("Skipping unsupported tar entry")
		}
		if err != nil {
			return fmt.Errorf("%s: %w", hdr.Name, err)
		}
	}
}

func (e *ArchiveExtractor) mkdir(dest, target string, perm fs.FileMode) error {
	if err := e.checkNoSymlinks(dest, target); err != nil {
		return err
	}
	return e.fs.MkdirAll(target, perm)
}

func (e *ArchiveExtractor) writeFile(dest, target string, r io.Reader, mode fs.FileMode) error {
	if err := e.mkdir(dest, filepath.Dir(target), 0755); err != nil {
		return err
	}
	// A regular entry replaces an earlier symlink instead of writing through it.
	if err := e.removeSymlink(target); err != nil {
		return err
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	out, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile applies the umask; archives carry exact permissions.
	return e.fs.Chmod(target, perm)
}

// symlink creates target pointing at link. Links must be relative and stay
// inside dest.
func (e *ArchiveExtractor) symlink(dest, link, target string) error {
	if filepath.IsAbs(link) {
		return fmt.Errorf("symlink %s points to absolute path %q", target, link)
	}
	if !within(dest, filepath.Join(filepath.Dir(target), link)) {
		return fmt.Errorf("symlink %s points outside %s", target, dest)
	}
	if err := e.mkdir(dest, filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := e.fs.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return e.fs.Symlink(link, target)
}

// checkNoSymlinks refuses to descend through a symlink anywhere between dest
// (exclusive) and path (inclusive). dest itself may be a link.
func (e *ArchiveExtractor) checkNoSymlinks(dest, path string) error {
	root := filepath.Clean(dest)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return err
	}

	current := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, err := e.fs.Lstat(current)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("%s is a symlink, refusing to extract through it", current)
		}
	}
	return nil
}

func (e *ArchiveExtractor) removeSymlink(path string) error {
	info, err := e.fs.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return nil
	}
	return e.fs.Remove(path)
}

// entryPath joins an archive entry name onto dest, refusing names that
// escape it.
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !within(dest, target) {
		return "", fmt.Errorf("archive entry %q escapes %s", name, dest)
	}
	return target, nil
}

func within(dest, path string) bool {
	root := filepath.Clean(dest)
	if root == string(filepath.Separator) {
		return true
	}
	path = filepath.Clean(path)
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

func dirMode(mode fs.FileMode) fs.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm
	}
	return 0755
}
