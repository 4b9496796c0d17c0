package installer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/execution"
	"github.com/arthur-debert/appbox/pkg/quote"
	"github.com/arthur-debert/appbox/pkg/types"
)

// Cleaner recursively removes a path. A missing path is not an error.
type Cleaner interface {
	RemoveAll(ctx context.Context, path string) error
}

// CommandCleaner removes paths with rm -rf under a privileged identity.
type CommandCleaner struct {
	Privilege execution.Privilege
	runner    execution.Runner
}

// NewCommandCleaner creates a cleaner running rm through runner.
func NewCommandCleaner(runner execution.Runner, priv execution.Privilege) *CommandCleaner {
	return &CommandCleaner{Privilege: priv, runner: runner}
}

// CommandLine returns the rm invocation for path.
func (c *CommandCleaner) CommandLine(path string) string {
	return quote.Join("rm", "-rf", path)
}

func (c *CommandCleaner) RemoveAll(ctx context.Context, path string) error {
	if err := checkRemovable(path); err != nil {
		return err
	}
	_, err := c.runner.Run(ctx, execution.Command{
		Line:        c.CommandLine(path),
		Privilege:   c.Privilege,
		Description: "remove " + path,
	})
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrPermission) {
			return err
		}
		return errors.Wrapf(err, errors.ErrCommand, "failed to remove %s", path)
	}
	return nil
}

// FSCleaner removes paths through a types.FS.
type FSCleaner struct {
	fs types.FS
}

// NewFSCleaner creates a cleaner backed by fs.
func NewFSCleaner(fs types.FS) *FSCleaner {
	return &FSCleaner{fs: fs}
}

func (c *FSCleaner) RemoveAll(_ context.Context, path string) error {
	if err := checkRemovable(path); err != nil {
		return err
	}
	if err := c.fs.RemoveAll(path); err != nil {
		code := errors.ErrCommand
		if os.IsPermission(err) {
			code = errors.ErrPermission
		}
		return errors.Wrapf(err, code, "failed to remove %s", path)
	}
	return nil
}

func checkRemovable(path string) error {
	clean := filepath.Clean(path)
	if path == "" || clean == string(filepath.Separator) || !filepath.IsAbs(clean) {
		return errors.Newf(errors.ErrInvalidInput, "refusing to remove %q", path)
	}
	return nil
}
