// Package domain provides core domain types for canthus-deploy.
package domain

import "fmt"

// Environment is a deployment target on the hosting platform
type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
)

// String implements the Stringer interface
func (e Environment) String() string {
	return string(e)
}

// IsValid checks if the Environment is one of the supported targets
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentProduction, EnvironmentStaging:
		return true
	default:
		return false
	}
}

// ValidEnvironments returns the supported environments in display order
func ValidEnvironments() []string {
	return []string{EnvironmentProduction.String(), EnvironmentStaging.String()}
}

// ParseEnvironment parses a string into an Environment
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(s)
	if !env.IsValid() {
		return "", fmt.Errorf("invalid environment: %q", s)
	}
	return env, nil
}
