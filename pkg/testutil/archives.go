package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"
)

// Entry describes one archive member. Names ending in "/" are directories;
// a non-empty Link makes a symlink.
type Entry struct {
	Name    string
	Content string
	Mode    fs.FileMode
	Link    string
}

// Bundle returns the entries of a minimal <name>.app bundle whose
// Info.plist contains marker.
func Bundle(name, marker string) []Entry {
	root := name + ".app/"
	return []Entry{
		{Name: root},
		{Name: root + "Contents/"},
		{Name: root + "Contents/Info.plist", Content: "<plist>" + marker + "</plist>\n"},
		{Name: root + "Contents/MacOS/"},
		{Name: root + "Contents/MacOS/" + strings.ToLower(name), Content: "#!/bin/sh\n", Mode: 0755},
	}
}

// BuildZip returns a zip archive containing entries.
func BuildZip(t *testing.T, entries []Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range sorted(entries) {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: time.Unix(1700000000, 0)}
		switch {
		case strings.HasSuffix(e.Name, "/"):
			hdr.SetMode(fs.ModeDir | 0755)
		case e.Link != "":
			hdr.SetMode(fs.ModeSymlink | 0777)
		default:
			hdr.SetMode(modeOr(e.Mode, 0644))
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("zip header %s: %v", e.Name, err)
		}
		body := e.Content
		if e.Link != "" {
			body = e.Link
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// BuildTarGz returns a gzip-compressed tarball containing entries.
func BuildTarGz(t *testing.T, entries []Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range sorted(entries) {
		hdr := &tar.Header{Name: e.Name, ModTime: time.Unix(1700000000, 0)}
		switch {
		case strings.HasSuffix(e.Name, "/"):
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0755
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
			hdr.Mode = 0777
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Mode = int64(modeOr(e.Mode, 0644))
			hdr.Size = int64(len(e.Content))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Content)); err != nil {
				t.Fatalf("tar write %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func sorted(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func modeOr(mode, fallback fs.FileMode) fs.FileMode {
	if mode == 0 {
		return fallback
	}
	return mode
}
