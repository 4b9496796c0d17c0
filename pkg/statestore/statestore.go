package statestore

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/paths"
	"github.com/arthur-debert/appbox/pkg/types"
)

// Marker is the payload of an installed marker.
type Marker struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Store is the durable record of installed packages.
type Store interface {
	// Exists reports whether a marker for name is present.
	Exists(name string) (bool, error)

	// Put writes the marker for m.Name, replacing any previous one.
	Put(m Marker) error

	// Get reads the marker for name.
	Get(name string) (Marker, error)

	// Delete removes the marker for name. A missing marker is not an error.
	Delete(name string) error

	// List returns the names of all installed packages, sorted.
	List() ([]string, error)
}

type filesystemStore struct {
	fs     types.FS
	layout paths.Layout
}

// New creates a Store backed by marker files under layout.MarkerDir.
func New(fs types.FS, layout paths.Layout) Store {
	return &filesystemStore{fs: fs, layout: layout}
}

func (s *filesystemStore) Exists(name string) (bool, error) {
	_, err := s.fs.Stat(s.layout.MarkerPath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrState, "failed to check marker for %s", name)
}

func (s *filesystemStore) Put(m Marker) error {
	if err := s.fs.MkdirAll(s.layout.MarkerDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrState, "failed to create marker directory %s", s.layout.MarkerDir)
	}

	path := s.layout.MarkerPath(m.Name)
	if err := s.fs.WriteFile(path, []byte(Render(m)), 0644); err != nil {
		code := errors.ErrState
		if os.IsPermission(err) {
			code = errors.ErrPermission
		}
		return errors.Wrapf(err, code, "failed to write marker %s", path)
	}
	return nil
}

func (s *filesystemStore) Get(name string) (Marker, error) {
	data, err := s.fs.ReadFile(s.layout.MarkerPath(name))
	if err != nil {
		return Marker{}, errors.Wrapf(err, errors.ErrState, "failed to read marker for %s", name)
	}
	m := Parse(string(data))
	if m.Name == "" {
		m.Name = name
	}
	return m, nil
}

func (s *filesystemStore) Delete(name string) error {
	err := s.fs.Remove(s.layout.MarkerPath(name))
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(err, errors.ErrState, "failed to remove marker for %s", name)
}

func (s *filesystemStore) List() ([]string, error) {
	entries, err := s.fs.ReadDir(s.layout.MarkerDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrState, "failed to read marker directory %s", s.layout.MarkerDir)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := s.layout.NameFromMarker(entry.Name()); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Render formats a marker as written to disk. Values are not escaped.
func Render(m Marker) string {
	return fmt.Sprintf("name: '%s'\nsource: '%s'\n", m.Name, m.Source)
}

// Parse reads the lines written by Render. Unknown lines are ignored.
func Parse(content string) Marker {
	var m Marker
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ": ")
		if !ok {
			continue
		}
		value = strings.TrimSuffix(strings.TrimPrefix(value, "'"), "'")
		switch key {
		case "name":
			m.Name = value
		case "source":
			m.Source = value
		}
	}
	return m
}
