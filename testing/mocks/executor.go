// Package mocks provides hand-written test doubles for canthus-deploy interfaces.
package mocks

import (
	"context"

	"github.com/canthus/deploy/deploy"
)

// MockExecutor implements deploy.Executor and records every command it receives
type MockExecutor struct {
	ExecuteFunc func(ctx context.Context, cmd deploy.Command) deploy.CommandResult
	Calls       []deploy.Command
}

func (m *MockExecutor) Execute(ctx context.Context, cmd deploy.Command) deploy.CommandResult {
	m.Calls = append(m.Calls, cmd)
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, cmd)
	}
	return deploy.CommandResult{}
}

// CommandLines returns the recorded commands as joined strings
func (m *MockExecutor) CommandLines() []string {
	lines := make([]string, len(m.Calls))
	for i, call := range m.Calls {
		lines[i] = call.String()
	}
	return lines
}

// ResultsByCommand builds an ExecuteFunc that answers by command line. Commands
// without an entry succeed with empty output.
func ResultsByCommand(results map[string]deploy.CommandResult) func(context.Context, deploy.Command) deploy.CommandResult {
	return func(_ context.Context, cmd deploy.Command) deploy.CommandResult {
		if result, ok := results[cmd.String()]; ok {
			return result
		}
		return deploy.CommandResult{}
	}
}
