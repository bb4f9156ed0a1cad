package deploy

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	// ExitCodeTimeout is reported when a command is killed by its deadline
	ExitCodeTimeout = 124
	// ExitCodeNotStarted is reported when a command could not be started,
	// usually because the binary is not in PATH
	ExitCodeNotStarted = 127
	// ExitCodeInterrupted is reported when the run was cancelled, e.g. by SIGINT
	ExitCodeInterrupted = 130
)

// waitDelay bounds how long Execute keeps reading output after a command
// was killed, in case a descendant outside its process group holds the pipes
const waitDelay = 2 * time.Second

// Command is an external program invocation
type Command struct {
	Name string
	Args []string
	Dir  string
}

// Argv returns the program name followed by its arguments
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// CommandResult is the outcome of a finished command
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with code 0
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Executor runs external commands and blocks until they exit
type Executor interface {
	Execute(ctx context.Context, cmd Command) CommandResult
}

// ExecExecutor runs commands as local processes
type ExecExecutor struct{}

// Ensure ExecExecutor implements Executor
var _ Executor = (*ExecExecutor)(nil)

func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

func (e *ExecExecutor) Execute(ctx context.Context, c Command) CommandResult {
	slog.Debug("Executing command",
		"command", c.Name,
		"args", c.Args,
		"working_dir", c.Dir)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) && ctx.Err() == nil && cmd.ProcessState != nil {
		// the command exited but a descendant kept its output pipes open
		slog.Debug("Command left output pipes open after exiting",
			"command", c.Name,
			"args", c.Args)
		err = nil
		if !cmd.ProcessState.Success() {
			err = &exec.ExitError{ProcessState: cmd.ProcessState}
		}
	}
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		slog.Debug("Command completed successfully",
			"command", c.Name,
			"stdout_length", len(result.Stdout))
		return result
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.ExitCode = ExitCodeTimeout
		result.Stderr = appendLine(result.Stderr, "command timed out: "+c.String())
	case errors.Is(ctx.Err(), context.Canceled):
		result.ExitCode = ExitCodeInterrupted
		result.Stderr = appendLine(result.Stderr, "command interrupted: "+c.String())
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode <= 0 {
			// killed by a signal
			result.ExitCode = 1
		}
	default:
		result.ExitCode = ExitCodeNotStarted
		result.Stderr = appendLine(result.Stderr, err.Error())
	}

	slog.Debug("Command exited with non-zero code",
		"command", c.Name,
		"args", c.Args,
		"exit_code", result.ExitCode,
		"error", err)
	return result
}

func appendLine(s, line string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s + line
	}
	return s + "\n" + line
}
