package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/types"
)

// FakeFetcher serves archives from memory into a types.FS.
type FakeFetcher struct {
	mu      sync.Mutex
	fs      types.FS
	content map[string][]byte
	failing map[string]error
	calls   []string
}

// NewFakeFetcher creates a fetcher writing into fs.
func NewFakeFetcher(fs types.FS) *FakeFetcher {
	return &FakeFetcher{
		fs:      fs,
		content: make(map[string][]byte),
		failing: make(map[string]error),
	}
}

// Serve registers the bytes returned for source.
func (f *FakeFetcher) Serve(source string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[source] = data
}

// Fail makes fetching source return err.
func (f *FakeFetcher) Fail(source string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[source] = err
}

// Calls returns the sources fetched so far.
func (f *FakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Fetch writes the registered bytes for source to dest.
func (f *FakeFetcher) Fetch(_ context.Context, source, dest string) error {
	f.mu.Lock()
	f.calls = append(f.calls, source)
	failErr, failing := f.failing[source]
	data, ok := f.content[source]
	f.mu.Unlock()

	if failing {
		return errors.Wrapf(failErr, errors.ErrFetch, "failed to download %s", source)
	}
	if !ok {
		return errors.Wrapf(fmt.Errorf("404 Not Found"), errors.ErrFetch, "failed to download %s", source)
	}
	if err := f.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return f.fs.WriteFile(dest, data, 0644)
}
