// Package utils provides utility functions for canthus-deploy CLI commands.
package utils

import (
	"errors"
	"log/slog"

	"github.com/canthus/deploy/cmd/output"
	"github.com/spf13/cobra"
)

// reportedError marks an error the user has already been shown
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

// Reported wraps err so that the top level does not print it again
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already shown to the user
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// HandleCommandError provides consistent error handling for CLI commands. It
// logs and prints the failure and returns it marked as reported.
func HandleCommandError(cmd *cobra.Command, operation string, err error, context ...any) error {
	slog.Error("Command failed", append([]any{"operation", operation, "error", err}, context...)...)
	_ = output.FprintError(cmd, "Error: %s failed: %v", operation, err)
	return Reported(err)
}
