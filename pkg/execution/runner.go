package execution

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/rs/zerolog"
)

const waitDelay = 2 * time.Second

// Command is a shell command line plus the identity it runs as.
type Command struct {
	// Line is passed verbatim to /bin/sh -c. Every variable part must
	// already be quoted.
	Line        string
	Privilege   Privilege
	Description string
}

// Result captures the output of a finished command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands. Implementations must return an error for a
// non-zero exit status.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ShellRunner executes commands through /bin/sh.
type ShellRunner struct {
	Shell string
	Sudo  string

	logger      zerolog.Logger
	currentUser func() string
}

// NewShellRunner creates a runner using /bin/sh and sudo from PATH.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{
		Shell:       "/bin/sh",
		Sudo:        "sudo",
		logger:      logging.GetLogger("execution.shell"),
		currentUser: currentUsername,
	}
}

// argv builds the process arguments for cmd.
func (r *ShellRunner) argv(cmd Command) []string {
	if cmd.Privilege.needsSudo(r.currentUser()) {
		// -n: never prompt, a missing credential is an error
		return []string{r.Sudo, "-n", "-u", cmd.Privilege.User, r.Shell, "-c", cmd.Line}
	}
	return []string{r.Shell, "-c", cmd.Line}
}

// Run executes cmd and waits for it. Cancelling ctx kills the process.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if strings.TrimSpace(cmd.Line) == "" {
		return Result{}, errors.New(errors.ErrInvalidInput, "execute requires a command line")
	}

	args := r.argv(cmd)
	logging.LogCommand(r.logger, cmd.Line, cmd.Privilege.String())

	c := exec.CommandContext(ctx, args[0], args[1:]...)
	// Children of the shell may outlive it after a kill and hold the pipes.
	c.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: c.ProcessState.ExitCode(),
	}

	if err != nil {
		r.logger.Error().
			Err(err).
			Str("command", cmd.Line).
			Str("user", cmd.Privilege.String()).
			Str("stderr", result.Stderr).
			Msg("Command execution failed")

		code := errors.ErrCommand
		if cmd.Privilege.Elevated() && looksLikePermissionFailure(result.Stderr) {
			code = errors.ErrPermission
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return result, errors.Wrapf(err, code, "command failed: %s", strings.TrimSpace(firstNonEmpty(result.Stderr, cmd.Line))).
			WithDetail("command", cmd.Line).
			WithDetail("user", cmd.Privilege.String()).
			WithDetail("exit_code", result.ExitCode)
	}

	r.logger.Debug().
		Str("command", cmd.Line).
		Int("stdout_bytes", len(result.Stdout)).
		Msg("Command executed successfully")

	return result, nil
}

func looksLikePermissionFailure(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "permission denied") ||
		strings.Contains(s, "a password is required") ||
		strings.Contains(s, "not in the sudoers")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DryRunRunner logs commands instead of executing them.
type DryRunRunner struct {
	mu       sync.Mutex
	commands []Command
	logger   zerolog.Logger
}

// NewDryRunRunner creates a runner that never executes anything.
func NewDryRunRunner() *DryRunRunner {
	return &DryRunRunner{logger: logging.GetLogger("execution.dryrun")}
}

// Run records cmd and reports success.
func (r *DryRunRunner) Run(_ context.Context, cmd Command) (Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	r.logger.Info().
		Str("command", cmd.Line).
		Str("user", cmd.Privilege.String()).
		Msg("Dry run mode - command would be executed")
	return Result{}, nil
}

// Commands returns the commands seen so far.
func (r *DryRunRunner) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Lines returns the command lines seen so far.
func (r *DryRunRunner) Lines() []string {
	cmds := r.Commands()
	lines := make([]string, len(cmds))
	for i, c := range cmds {
		lines[i] = c.Line
	}
	return lines
}
