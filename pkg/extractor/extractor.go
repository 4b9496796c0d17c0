// Package extractor unpacks cached archives into the install root.
package extractor

import (
	"context"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/execution"
	"github.com/arthur-debert/appbox/pkg/format"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/arthur-debert/appbox/pkg/quote"
	"github.com/rs/zerolog"
)

// Default tool locations.
const (
	DefaultUnzip = "/usr/bin/unzip"
	DefaultTar   = "/usr/bin/tar"
)

// Extractor unpacks archive into dest, overwriting existing files.
type Extractor interface {
	Extract(ctx context.Context, archive string, f format.Format, dest string) error
}

// CommandExtractor runs unzip or tar under a privileged identity.
type CommandExtractor struct {
	Unzip     string
	Tar       string
	Privilege execution.Privilege

	runner execution.Runner
	logger zerolog.Logger
}

// NewCommandExtractor creates an extractor running tools through runner.
// Empty tool paths fall back to the defaults.
func NewCommandExtractor(runner execution.Runner, priv execution.Privilege, unzip, tar string) *CommandExtractor {
	if unzip == "" {
		unzip = DefaultUnzip
	}
	if tar == "" {
		tar = DefaultTar
	}
	return &CommandExtractor{
		Unzip:     unzip,
		Tar:       tar,
		Privilege: priv,
		runner:    runner,
		logger:    logging.GetLogger("extractor.command"),
	}
}

// CommandLine returns the shell line extracting archive into dest.
func (e *CommandExtractor) CommandLine(archive string, f format.Format, dest string) (string, error) {
	switch f.Canonical() {
	case format.Zip:
		return quote.Join(e.Unzip, "-o", archive, "-d", dest), nil
	case format.TarGz:
		return quote.Join(e.Tar, "-zxf", archive, "-C", dest), nil
	case format.TarBz2:
		return quote.Join(e.Tar, "-jxf", archive, "-C", dest), nil
	}
	return "", errors.Newf(errors.ErrFlavorUnsupported, "no extraction tool for format %q", f)
}

// Extract runs the tool matching f.
func (e *CommandExtractor) Extract(ctx context.Context, archive string, f format.Format, dest string) error {
	line, err := e.CommandLine(archive, f, dest)
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("archive", archive).
		Str("format", string(f)).
		Str("dest", dest).
		Msg("Extracting archive")

	_, err = e.runner.Run(ctx, execution.Command{
		Line:        line,
		Privilege:   e.Privilege,
		Description: "extract " + archive,
	})
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrPermission) {
			return err
		}
		return errors.Wrapf(err, errors.ErrExtract, "failed to extract %s", archive).
			WithDetail("archive", archive).
			WithDetail("format", string(f))
	}
	return nil
}
