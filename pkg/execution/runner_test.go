package execution

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(current string) *ShellRunner {
	r := NewShellRunner()
	r.currentUser = func() string { return current }
	return r
}

func TestShellRunnerArgv(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		priv     Privilege
		expected []string
	}{
		{
			name:     "unprivileged runs the shell directly",
			current:  "alice",
			priv:     NoPrivilege,
			expected: []string{"/bin/sh", "-c", "rm -rf /tmp/x"},
		},
		{
			name:     "root from a normal user goes through sudo",
			current:  "alice",
			priv:     Root,
			expected: []string{"sudo", "-n", "-u", "root", "/bin/sh", "-c", "rm -rf /tmp/x"},
		},
		{
			name:     "already the target user skips sudo",
			current:  "root",
			priv:     Root,
			expected: []string{"/bin/sh", "-c", "rm -rf /tmp/x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRunner(tt.current)
			assert.Equal(t, tt.expected, r.argv(Command{Line: "rm -rf /tmp/x", Privilege: tt.priv}))
		})
	}
}

func TestShellRunnerRun(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	r := newTestRunner("nobody-in-particular")
	ctx := context.Background()

	t.Run("captures stdout", func(t *testing.T) {
		res, err := r.Run(ctx, Command{Line: "printf hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello", res.Stdout)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("non-zero exit is an error", func(t *testing.T) {
		res, err := r.Run(ctx, Command{Line: "echo boom >&2; exit 3"})
		require.Error(t, err)
		assert.Equal(t, 3, res.ExitCode)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommand))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("empty line is rejected", func(t *testing.T) {
		_, err := r.Run(ctx, Command{Line: "  "})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("quoted injection stays literal", func(t *testing.T) {
		dir := t.TempDir()
		canary := filepath.Join(dir, "canary")
		require.NoError(t, os.WriteFile(canary, []byte("alive"), 0644))

		name := "foo; rm -f " + canary
		_, err := r.Run(ctx, Command{Line: "printf '%s' " + quote.Quote(name) + " > " + quote.Quote(filepath.Join(dir, "out"))})
		require.NoError(t, err)

		_, err = os.Stat(canary)
		assert.NoError(t, err, "injected rm must not run")
		out, err := os.ReadFile(filepath.Join(dir, "out"))
		require.NoError(t, err)
		assert.Equal(t, name, string(out))
	})

	t.Run("context timeout kills the command", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := r.Run(tctx, Command{Line: "sleep 5"})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 4*time.Second)
	})
}

func TestDryRunRunner(t *testing.T) {
	r := NewDryRunRunner()

	_, err := r.Run(context.Background(), Command{Line: "rm -rf /Applications/Demo.app", Privilege: Root})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), Command{Line: "echo hi"})
	require.NoError(t, err)

	assert.Equal(t, []string{"rm -rf /Applications/Demo.app", "echo hi"}, r.Lines())
	assert.Equal(t, Root, r.Commands()[0].Privilege)
}

func TestPrivilege(t *testing.T) {
	assert.False(t, NoPrivilege.Elevated())
	assert.True(t, Root.Elevated())
	assert.Equal(t, "current", NoPrivilege.String())
	assert.Equal(t, "root", Root.String())
	assert.True(t, Root.needsSudo("alice"))
	assert.False(t, Root.needsSudo("root"))
	assert.False(t, NoPrivilege.needsSudo("alice"))
}

func TestLooksLikePermissionFailure(t *testing.T) {
	assert.True(t, looksLikePermissionFailure("rm: /Applications/X.app: Permission denied"))
	assert.True(t, looksLikePermissionFailure("sudo: a password is required"))
	assert.False(t, looksLikePermissionFailure("tar: Error opening archive"))
}
