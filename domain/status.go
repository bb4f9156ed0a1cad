package domain

import "fmt"

// RunStatus represents the outcome of one deployment run
type RunStatus int

const (
	RunStatusUnknown RunStatus = iota
	RunStatusStarted
	RunStatusCompleted
	RunStatusFailed
)

func (s RunStatus) String() string {
	switch s {
	case RunStatusStarted:
		return "started"
	case RunStatusCompleted:
		return "completed"
	case RunStatusFailed:
		return "failed"
	case RunStatusUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

func ParseRunStatus(s string) (RunStatus, error) {
	switch s {
	case "started":
		return RunStatusStarted, nil
	case "completed":
		return RunStatusCompleted, nil
	case "failed":
		return RunStatusFailed, nil
	case "unknown":
		return RunStatusUnknown, nil
	default:
		return RunStatusUnknown, fmt.Errorf("invalid run status: %q", s)
	}
}

// PhaseStatus represents the outcome of a single deployment phase
type PhaseStatus int

const (
	PhaseStatusUnknown PhaseStatus = iota
	PhaseStatusSucceeded
	PhaseStatusWarning
	PhaseStatusSkipped
	PhaseStatusFailed
)

func (s PhaseStatus) String() string {
	switch s {
	case PhaseStatusSucceeded:
		return "succeeded"
	case PhaseStatusWarning:
		return "warning"
	case PhaseStatusSkipped:
		return "skipped"
	case PhaseStatusFailed:
		return "failed"
	case PhaseStatusUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

func ParsePhaseStatus(s string) (PhaseStatus, error) {
	switch s {
	case "succeeded":
		return PhaseStatusSucceeded, nil
	case "warning":
		return PhaseStatusWarning, nil
	case "skipped":
		return PhaseStatusSkipped, nil
	case "failed":
		return PhaseStatusFailed, nil
	case "unknown":
		return PhaseStatusUnknown, nil
	default:
		return PhaseStatusUnknown, fmt.Errorf("invalid phase status: %q", s)
	}
}
