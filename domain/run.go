package domain

import (
	"time"

	"github.com/google/uuid"
)

// PhaseResult records how one phase of a run ended
type PhaseResult struct {
	Key       string // stable identifier, e.g. "build-server"
	Name      string // human readable name
	Status    PhaseStatus
	Message   string // failure or warning detail, empty on success
	StartedAt time.Time
	Duration  time.Duration
}

// Run is a single invocation of the deployment pipeline
type Run struct {
	ID          uuid.UUID
	Environment Environment
	DryRun      bool
	SkipTests   bool
	Status      RunStatus
	CommitHash  *string
	LogFile     string
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Phases      []PhaseResult
}

func NewRun(env Environment, dryRun, skipTests bool, startedAt time.Time) Run {
	return Run{
		ID:          uuid.New(),
		Environment: env,
		DryRun:      dryRun,
		SkipTests:   skipTests,
		Status:      RunStatusStarted,
		StartedAt:   startedAt,
	}
}

// Duration returns the wall time of the run, zero while it is still going
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Run) CommitHashStr() string {
	if r.CommitHash == nil {
		return ""
	}
	return *r.CommitHash
}

// ShortCommit returns the first 8 characters of the commit hash
func (r *Run) ShortCommit() string {
	commit := r.CommitHashStr()
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
