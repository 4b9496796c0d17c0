// Package format maps archive sources and flavor overrides onto the closed
// set of archive formats appbox knows how to extract.
package format

import (
	"strings"

	"github.com/arthur-debert/appbox/pkg/errors"
)

// Format is an archive flavor. Its value doubles as the cache file extension.
type Format string

const (
	Zip    Format = "zip"
	TarGz  Format = "tar.gz"
	TarBz2 Format = "tar.bz2"
	Tgz    Format = "tgz"
	Tbz    Format = "tbz"
)

// Compression identifies the stream decompressor a tar flavor needs.
type Compression string

const (
	CompressionNone  Compression = ""
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
)

// Suffix order matters: canonical suffixes are checked before their aliases.
var suffixOrder = []Format{Zip, TarGz, Tgz, TarBz2, Tbz}

// All returns every recognised flavor in resolution order.
func All() []Format {
	out := make([]Format, len(suffixOrder))
	copy(out, suffixOrder)
	return out
}

// Extension returns the file extension used for cached archives.
func (f Format) Extension() string {
	return string(f)
}

// Canonical folds the tgz and tbz aliases onto tar.gz and tar.bz2.
func (f Format) Canonical() Format {
	switch f {
	case Tgz:
		return TarGz
	case Tbz:
		return TarBz2
	}
	return f
}

// IsTar reports whether the format is a compressed tarball.
func (f Format) IsTar() bool {
	c := f.Canonical()
	return c == TarGz || c == TarBz2
}

// Compression returns the decompressor for tar flavors.
func (f Format) Compression() Compression {
	switch f.Canonical() {
	case TarGz:
		return CompressionGzip
	case TarBz2:
		return CompressionBzip2
	}
	return CompressionNone
}

// Valid reports whether f is one of the recognised flavors.
func (f Format) Valid() bool {
	for _, known := range suffixOrder {
		if f == known {
			return true
		}
	}
	return false
}

// Parse validates an explicit flavor token. Tokens are matched exactly.
func Parse(flavor string) (Format, error) {
	f := Format(flavor)
	if !f.Valid() {
		return "", errors.New(errors.ErrFlavorUnsupported, "Unsupported flavor").
			WithDetail("flavor", flavor)
	}
	return f, nil
}

// Resolve picks the archive format for source. A non-empty flavor overrides
// suffix sniffing; otherwise the source suffix is matched case-insensitively.
func Resolve(source, flavor string) (Format, error) {
	if flavor != "" {
		return Parse(flavor)
	}

	lower := strings.ToLower(source)
	for _, f := range suffixOrder {
		if strings.HasSuffix(lower, "."+string(f)) {
			return f, nil
		}
	}

	return "", errors.New(errors.ErrSourceUnsupported, "Source must be one of .zip, .tar.gz, .tgz, .tar.bz2, .tbz").
		WithDetail("source", source)
}
