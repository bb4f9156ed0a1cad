package deploy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommand_String(t *testing.T) {
	cmd := Command{Name: "wrangler", Args: []string{"deploy", "--env", "staging"}, Dir: "/srv/app/server"}

	assert.Equal(t, []string{"wrangler", "deploy", "--env", "staging"}, cmd.Argv())
	assert.Equal(t, "wrangler deploy --env staging", cmd.String())
}

func TestExecExecutor_Execute(t *testing.T) {
	tests := []struct {
		name         string
		cmd          Command
		wantCode     int
		wantStdout   string
		wantStderr   string
		stderrSubstr string
	}{
		{
			name:       "captures stdout and stderr separately",
			cmd:        Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2"}},
			wantCode:   0,
			wantStdout: "out\n",
			wantStderr: "err\n",
		},
		{
			name:       "reports non-zero exit code",
			cmd:        Command{Name: "sh", Args: []string{"-c", "echo failing >&2; exit 3"}},
			wantCode:   3,
			wantStderr: "failing\n",
		},
		{
			name:         "missing binary is reported as not started",
			cmd:          Command{Name: "canthus-deploy-no-such-binary", Args: []string{"--version"}},
			wantCode:     ExitCodeNotStarted,
			stderrSubstr: "canthus-deploy-no-such-binary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewExecExecutor().Execute(context.Background(), tt.cmd)

			assert.Equal(t, tt.wantCode, result.ExitCode)
			if tt.wantStdout != "" {
				assert.Equal(t, tt.wantStdout, result.Stdout)
			}
			if tt.wantStderr != "" {
				assert.Equal(t, tt.wantStderr, result.Stderr)
			}
			if tt.stderrSubstr != "" {
				assert.Contains(t, result.Stderr, tt.stderrSubstr)
			}
		})
	}
}

func TestExecExecutor_RunsInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()

	result := NewExecExecutor().Execute(context.Background(), Command{Name: "pwd", Dir: dir})

	assert.True(t, result.Success())
	assert.Contains(t, result.Stdout, dir)
}

func TestExecExecutor_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result := NewExecExecutor().Execute(ctx, Command{Name: "sleep", Args: []string{"5"}})

	assert.Equal(t, ExitCodeTimeout, result.ExitCode)
	assert.Contains(t, result.Stderr, "command timed out: sleep 5")
}

func TestExecExecutor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	result := NewExecExecutor().Execute(ctx, Command{Name: "sleep", Args: []string{"5"}})

	assert.Equal(t, ExitCodeInterrupted, result.ExitCode)
	assert.Contains(t, result.Stderr, "command interrupted: sleep 5")
}

func TestExecExecutor_DeadlineKillsChildProcesses(t *testing.T) {
	tests := []struct {
		name     string
		cancel   func(context.Context) (context.Context, context.CancelFunc)
		wantCode int
	}{
		{
			name: "timeout",
			cancel: func(ctx context.Context) (context.Context, context.CancelFunc) {
				return context.WithTimeout(ctx, 200*time.Millisecond)
			},
			wantCode: ExitCodeTimeout,
		},
		{
			name: "interrupt",
			cancel: func(ctx context.Context) (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(ctx)
				time.AfterFunc(200*time.Millisecond, cancel)
				return ctx, cancel
			},
			wantCode: ExitCodeInterrupted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.cancel(context.Background())
			defer cancel()

			// the shell forks sleep, which inherits stdout and stderr
			start := time.Now()
			result := NewExecExecutor().Execute(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 10; echo done"}})
			elapsed := time.Since(start)

			assert.Equal(t, tt.wantCode, result.ExitCode)
			assert.NotContains(t, result.Stdout, "done")
			assert.Less(t, elapsed, 5*time.Second)
		})
	}
}

func TestExecExecutor_BackgroundDescendantDoesNotBlockSuccess(t *testing.T) {
	// the background sleep keeps stdout open after the shell exits
	start := time.Now()
	result := NewExecExecutor().Execute(context.Background(),
		Command{Name: "sh", Args: []string{"-c", "echo ready; sleep 4 & exit 0"}})
	elapsed := time.Since(start)

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "ready")
	assert.Less(t, elapsed, 5*time.Second)
}
