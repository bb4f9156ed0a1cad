package root

import (
	"fmt"
	"strings"

	"github.com/canthus/deploy/domain"
	"github.com/spf13/pflag"
)

var _ pflag.Value = (*environmentFlag)(nil)

// environmentFlag rejects unknown environments while the command line is parsed
type environmentFlag struct {
	value domain.Environment
}

func newEnvironmentFlag() *environmentFlag {
	return &environmentFlag{value: domain.EnvironmentProduction}
}

func (f *environmentFlag) Set(value string) error {
	env, err := domain.ParseEnvironment(value)
	if err != nil {
		return fmt.Errorf("invalid value '%s'. Allowed values: %s",
			value, strings.Join(domain.ValidEnvironments(), ", "))
	}
	f.value = env
	return nil
}

func (f *environmentFlag) String() string {
	return f.value.String()
}

func (f *environmentFlag) Type() string {
	return fmt.Sprintf("one of [%s]", strings.Join(domain.ValidEnvironments(), "|"))
}
