package deploy

import "strings"

// DeploymentError is an expected deployment failure: a missing prerequisite,
// a failed fatal command or a failed test run.
type DeploymentError struct {
	Message string
	// Command is the failing command line, nil when no command was involved
	Command []string
}

func (e *DeploymentError) Error() string {
	return e.Message
}

func newCommandError(argv []string) *DeploymentError {
	return &DeploymentError{
		Message: "Command failed: " + strings.Join(argv, " "),
		Command: argv,
	}
}

// UnexpectedError wraps any failure that is not a DeploymentError, including
// panics raised inside a phase and failures to save the deployment log.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}
