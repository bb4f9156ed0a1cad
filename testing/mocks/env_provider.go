package mocks

// MockEnvProvider implements config.EnvProvider for testing
type MockEnvProvider struct {
	EnvVars map[string]string
	Wd      string
	WdErr   error
}

func NewMockEnvProvider(wd string, envVars map[string]string) *MockEnvProvider {
	if envVars == nil {
		envVars = make(map[string]string)
	}
	return &MockEnvProvider{
		EnvVars: envVars,
		Wd:      wd,
	}
}

func (m *MockEnvProvider) Getenv(key string) string {
	return m.EnvVars[key]
}

func (m *MockEnvProvider) Getwd() (string, error) {
	return m.Wd, m.WdErr
}
