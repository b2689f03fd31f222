package infogroup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	utilexec "k8s.io/utils/exec"

	"github.com/NVIDIA/machinestate/pkg/defaults"
)

// CommandExecutor runs a command and returns its standard output.
// It allows replacing real processes in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}

// defaultCommandExecutor implements CommandExecutor on top of k8s.io/utils/exec.
type defaultCommandExecutor struct {
	exec    utilexec.Interface
	Timeout time.Duration
}

// NewCommandExecutor returns an executor that runs real processes, each
// bounded by timeout (defaults.CommandTimeout when zero).
func NewCommandExecutor(timeout time.Duration) CommandExecutor {
	return &defaultCommandExecutor{exec: utilexec.New(), Timeout: timeout}
}

// Execute runs name with args and returns stdout. Stderr is only logged.
// A non-zero exit status is not an error: whatever the command wrote to
// stdout, possibly nothing, is returned. Start failures and timeouts are.
func (e *defaultCommandExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaults.CommandTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := e.exec.CommandContext(timeoutCtx, name, args...)
	cmd.SetStderr(&stderr)

	output, err := cmd.Output()
	if stderr.Len() > 0 {
		slog.Debug("command wrote to stderr",
			slog.String("command", name),
			slog.String("stderr", strings.TrimSpace(stderr.String())),
		)
	}
	if err != nil {
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) && timeoutCtx.Err() == nil {
			slog.Debug("command exited non-zero, keeping stdout",
				slog.String("command", name),
				slog.Int("status", exitErr.ExitStatus()),
			)
			return string(output), nil
		}
		return "", &CommandError{Command: name, Err: err}
	}

	return string(output), nil
}
