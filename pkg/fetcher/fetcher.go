// Package fetcher downloads package archives into the local cache.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/execution"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/arthur-debert/appbox/pkg/quote"
	"github.com/arthur-debert/appbox/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultCurl is the curl binary used when none is configured.
const DefaultCurl = "/usr/bin/curl"

// Fetcher downloads source into dest, replacing any existing file.
type Fetcher interface {
	Fetch(ctx context.Context, source, dest string) error
}

// CurlFetcher shells out to curl as the invoking user.
type CurlFetcher struct {
	Curl   string
	runner execution.Runner
	logger zerolog.Logger
}

// NewCurlFetcher creates a fetcher that runs curl through runner.
func NewCurlFetcher(runner execution.Runner, curl string) *CurlFetcher {
	if curl == "" {
		curl = DefaultCurl
	}
	return &CurlFetcher{
		Curl:   curl,
		runner: runner,
		logger: logging.GetLogger("fetcher.curl"),
	}
}

// CommandLine returns the shell line used to fetch source into dest.
// -q must come first for curl to skip .curlrc; -f turns HTTP errors into
// a non-zero exit.
func (f *CurlFetcher) CommandLine(source, dest string) string {
	return quote.Join(f.Curl, "-q", "-f", "-s", "-S", "-L", "-o", dest, source)
}

// Fetch runs curl and maps failures to FETCH errors.
func (f *CurlFetcher) Fetch(ctx context.Context, source, dest string) error {
	f.logger.Info().Str("source", source).Str("dest", dest).Msg("Downloading archive")

	_, err := f.runner.Run(ctx, execution.Command{
		Line:        f.CommandLine(source, dest),
		Privilege:   execution.NoPrivilege,
		Description: "download " + source,
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetch, "failed to download %s", source).
			WithDetail("source", source).
			WithDetail("dest", dest)
	}
	return nil
}

// HTTPFetcher downloads with net/http and writes through a types.FS.
type HTTPFetcher struct {
	client *http.Client
	fs     types.FS
	logger zerolog.Logger
}

// NewHTTPFetcher creates a native fetcher. A nil client uses
// http.DefaultClient, which follows redirects.
func NewHTTPFetcher(fs types.FS, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client: client,
		fs:     fs,
		logger: logging.GetLogger("fetcher.http"),
	}
}

// Fetch downloads source into dest. Non-2xx responses are errors and leave
// dest untouched.
func (f *HTTPFetcher) Fetch(ctx context.Context, source, dest string) error {
	f.logger.Info().Str("source", source).Str("dest", dest).Msg("Downloading archive")

	fail := func(err error, msg string) *errors.AppboxError {
		return errors.Wrapf(err, errors.ErrFetch, "failed to download %s: %s", source, msg).
			WithDetail("source", source).
			WithDetail("dest", dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return fail(err, "invalid request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fail(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(fmt.Errorf("unexpected status %s", resp.Status), "server error").
			WithDetail("status", resp.StatusCode)
	}

	if err := f.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fail(err, "cannot create cache directory")
	}

	out, err := f.fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fail(err, "cannot open cache file")
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		return fail(err, "transfer interrupted")
	}
	if closeErr != nil {
		return fail(closeErr, "cannot finish cache file")
	}

	f.logger.Debug().Int64("bytes", written).Str("dest", dest).Msg("Download complete")
	return nil
}
