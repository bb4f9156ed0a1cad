// Package deploy runs the build and deployment pipeline of the application:
// prerequisite checks, secrets check, tests, builds, server and client deploys
// and post-deploy verification, recording every step in a deployment log.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/canthus/deploy/config"
	"github.com/canthus/deploy/domain"
	"github.com/gosimple/slug"
)

// Report is what a run leaves behind, returned on every exit path
type Report struct {
	Run     domain.Run
	Entries []Entry
}

// Runner executes the deployment sequence for one invocation. A Runner is
// single use: call Run once.
type Runner struct {
	cfg      *config.Config
	executor Executor
	now      func() time.Time
	echo     func(Entry)

	log     *Log
	run     domain.Run
	current *domain.PhaseResult
}

// RunnerOption customizes a Runner
type RunnerOption func(*Runner)

// WithClock replaces time.Now, used for timestamps and the log file name
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// WithEcho receives every log entry as it is appended
func WithEcho(echo func(Entry)) RunnerOption {
	return func(r *Runner) {
		r.echo = echo
	}
}

func NewRunner(cfg *config.Config, executor Executor, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:      cfg,
		executor: executor,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = NewLog(r.now, r.echo)
	return r
}

// Run executes all phases in order and always persists the deployment log.
// The returned error is a *DeploymentError or an *UnexpectedError.
func (r *Runner) Run(ctx context.Context) (report *Report, err error) {
	r.run = domain.NewRun(r.cfg.Environment, r.cfg.DryRun, r.cfg.SkipTests, r.now())

	defer func() {
		if rec := recover(); rec != nil {
			err = &UnexpectedError{Err: fmt.Errorf("panic: %v", rec)}
			r.log.Append(LevelError, fmt.Sprintf("Unexpected error: %s", err))
		}

		err = r.finalize(err)
		report = &Report{Run: r.run, Entries: r.log.Entries()}
	}()

	err = r.deploy(ctx)
	if err != nil {
		var deployErr *DeploymentError
		if errors.As(err, &deployErr) {
			r.log.Append(LevelError, fmt.Sprintf("Deployment failed: %s", deployErr))
			return nil, deployErr
		}
		r.log.Append(LevelError, fmt.Sprintf("Unexpected error: %s", err))
		return nil, &UnexpectedError{Err: err}
	}

	return nil, nil
}

func (r *Runner) deploy(ctx context.Context) error {
	env := r.cfg.Environment
	r.info("Starting deployment to %s", env)
	r.info("Dry run: %t", r.cfg.DryRun)
	r.info("Skip tests: %t", r.cfg.SkipTests)

	if err := r.phase(ctx, "Prerequisites", r.checkPrerequisites); err != nil {
		return err
	}
	if err := r.phase(ctx, "Secrets", r.checkSecrets); err != nil {
		return err
	}
	if err := r.phase(ctx, "Tests", r.runTests); err != nil {
		return err
	}
	if err := r.buildApplication(ctx); err != nil {
		return err
	}
	if err := r.phase(ctx, "Deploy server", r.deployServer); err != nil {
		return err
	}
	if err := r.phase(ctx, "Deploy client", r.deployClient); err != nil {
		return err
	}
	if err := r.phase(ctx, "Verify", r.verifyDeployment); err != nil {
		return err
	}

	r.info("Deployment to %s completed successfully!", env)
	return nil
}

// finalize closes the run record and writes the log file
func (r *Runner) finalize(runErr error) error {
	r.run.FinishedAt = r.now()

	path, flushErr := r.log.Flush(r.cfg.LogsDir, r.logFileName())
	if flushErr != nil {
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "save_deployment_log",
			"environment", r.cfg.Environment,
			"error", flushErr)
		if runErr == nil {
			runErr = &UnexpectedError{Err: fmt.Errorf("saving deployment log: %w", flushErr)}
		}
		r.log.Append(LevelError, fmt.Sprintf("Unexpected error: saving deployment log: %s", flushErr))
	} else {
		r.run.LogFile = path
		r.info("Deployment log saved to %s", path)
	}

	if runErr != nil {
		r.run.Status = domain.RunStatusFailed
		r.run.Error = runErr.Error()
	} else {
		r.run.Status = domain.RunStatusCompleted
	}

	return runErr
}

func (r *Runner) logFileName() string {
	return fmt.Sprintf("deployment-%s-%s.log", r.cfg.Environment, r.run.StartedAt.Format("20060102-150405"))
}

// phase runs fn as a named phase and records its outcome
func (r *Runner) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	result := domain.PhaseResult{
		Key:       slug.Make(name),
		Name:      name,
		Status:    domain.PhaseStatusSucceeded,
		StartedAt: r.now(),
	}
	r.current = &result

	finished := false
	defer func() {
		if !finished {
			result.Status = domain.PhaseStatusFailed
			result.Message = "aborted"
		}
		result.Duration = r.now().Sub(result.StartedAt)
		r.run.Phases = append(r.run.Phases, result)
		r.current = nil
	}()

	err := fn(ctx)
	finished = true
	if err != nil {
		result.Status = domain.PhaseStatusFailed
		result.Message = err.Error()
	}
	return err
}

// runCommand executes argv in dir. Under dry-run nothing is executed and a
// successful empty result is returned. With check set, a non-zero exit is
// logged and turned into a DeploymentError.
func (r *Runner) runCommand(ctx context.Context, argv []string, dir string, check bool) (CommandResult, error) {
	r.info("Running command: %s in %s", strings.Join(argv, " "), dir)

	if r.cfg.DryRun {
		r.log.Append(LevelDryRun, "DRY RUN: Command would be executed")
		return CommandResult{}, nil
	}

	cmdCtx := ctx
	if r.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, r.cfg.CommandTimeout)
		defer cancel()
	}

	result := r.executor.Execute(cmdCtx, Command{Name: argv[0], Args: argv[1:], Dir: dir})

	// the result of an interrupted command says nothing about the command itself
	if ctx.Err() != nil {
		return result, &DeploymentError{Message: "Deployment interrupted", Command: argv}
	}

	if check && !result.Success() {
		r.log.Append(LevelError, fmt.Sprintf("Command failed with return code %d", result.ExitCode))
		r.log.Append(LevelError, fmt.Sprintf("STDOUT: %s", result.Stdout))
		r.log.Append(LevelError, fmt.Sprintf("STDERR: %s", result.Stderr))
		return result, newCommandError(argv)
	}

	return result, nil
}

func (r *Runner) info(format string, a ...any) {
	r.log.Append(LevelInfo, fmt.Sprintf(format, a...))
}

// warn logs a warning and marks the current phase as finished with a warning
func (r *Runner) warn(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	r.log.Append(LevelWarning, msg)
	if r.current != nil && r.current.Status == domain.PhaseStatusSucceeded {
		r.current.Status = domain.PhaseStatusWarning
		r.current.Message = msg
	}
}

func (r *Runner) skip(reason string) {
	r.info("%s", reason)
	if r.current != nil {
		r.current.Status = domain.PhaseStatusSkipped
		r.current.Message = reason
	}
}
