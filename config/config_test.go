package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/canthus/deploy/config"
	"github.com/canthus/deploy/domain"
	"github.com/canthus/deploy/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ProjectFile), []byte(content), 0o644))
}

func TestNewConfigForCLIWithEnv_Defaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := config.NewConfigForCLIWithEnv(mocks.NewMockEnvProvider(root, nil), config.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, domain.EnvironmentProduction, cfg.Environment)
	assert.False(t, cfg.DryRun)
	assert.False(t, cfg.SkipTests)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "shared"), cfg.SharedDir)
	assert.Equal(t, filepath.Join(root, "server"), cfg.ServerDir)
	assert.Equal(t, filepath.Join(root, "client"), cfg.ClientDir)
	assert.Equal(t, filepath.Join(root, "logs"), cfg.LogsDir)
	assert.Equal(t, "package.json", cfg.ManifestFile)
	assert.Equal(t, filepath.Join(root, "package.json"), cfg.ManifestPath())
	assert.Equal(t, "dist", cfg.StaticAssetsDir)
	assert.Equal(t, "bun", cfg.BuildTool)
	assert.Equal(t, "wrangler", cfg.CloudCLI)
	assert.Equal(t, "CLOUDFLARE_API_TOKEN", cfg.AuthTokenEnvVar)
	assert.Zero(t, cfg.CommandTimeout)
	assert.Equal(t, "silent", cfg.LogLevel)
	assert.True(t, cfg.ColorEnabled)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, filepath.Join(root, ".canthus-deploy"), cfg.DataDir)
	assert.Equal(t, filepath.Join(root, ".canthus-deploy", "history.db"), cfg.DatabasePath)
}

func TestNewConfigForCLIWithEnv_ProjectRoot(t *testing.T) {
	wd := t.TempDir()
	other := t.TempDir()

	tests := []struct {
		name     string
		cliRoot  string
		envRoot  string
		wantRoot string
	}{
		{name: "working directory", wantRoot: wd},
		{name: "absolute flag", cliRoot: other, wantRoot: other},
		{name: "relative flag", cliRoot: "app", wantRoot: filepath.Join(wd, "app")},
		{name: "environment variable", envRoot: other, wantRoot: other},
		{name: "flag wins over environment", cliRoot: "app", envRoot: other, wantRoot: filepath.Join(wd, "app")},
		{name: "trailing slash is cleaned", cliRoot: other + "/", wantRoot: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := mocks.NewMockEnvProvider(wd, map[string]string{
				"CANTHUS_DEPLOY_PROJECT_ROOT": tt.envRoot,
			})

			cfg, err := config.NewConfigForCLIWithEnv(env, config.Overrides{ProjectRoot: tt.cliRoot})
			require.NoError(t, err)

			assert.Equal(t, tt.wantRoot, cfg.ProjectRoot)
			assert.Equal(t, filepath.Join(tt.wantRoot, "server"), cfg.ServerDir)
		})
	}
}

func TestNewConfigForCLIWithEnv_WorkingDirectoryError(t *testing.T) {
	env := mocks.NewMockEnvProvider("", nil)
	env.WdErr = errors.New("getwd failed")

	_, err := config.NewConfigForCLIWithEnv(env, config.Overrides{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving project root")
}

func TestNewConfigForCLIWithEnv_ProjectFile(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, `
directories:
  shared: packages/shared
  server: packages/api
  client: packages/web
  logs: /var/log/canthus
manifest_file: bun.lockb
static_assets_dir: build
build_tool: /usr/local/bin/bun
cloud_cli: npx-wrangler
auth_token_env_var: CF_TOKEN
command_timeout: 10m
log_level: info
history: false
`)

	cfg, err := config.NewConfigForCLIWithEnv(mocks.NewMockEnvProvider(root, nil), config.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "packages/shared"), cfg.SharedDir)
	assert.Equal(t, filepath.Join(root, "packages/api"), cfg.ServerDir)
	assert.Equal(t, filepath.Join(root, "packages/web"), cfg.ClientDir)
	assert.Equal(t, "/var/log/canthus", cfg.LogsDir)
	assert.Equal(t, "bun.lockb", cfg.ManifestFile)
	assert.Equal(t, "build", cfg.StaticAssetsDir)
	assert.Equal(t, "/usr/local/bin/bun", cfg.BuildTool)
	assert.Equal(t, "npx-wrangler", cfg.CloudCLI)
	assert.Equal(t, "CF_TOKEN", cfg.AuthTokenEnvVar)
	assert.Equal(t, 10*time.Minute, cfg.CommandTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.HistoryEnabled)
}

func TestNewConfigForCLIWithEnv_ProjectFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed yaml", content: "directories: [", wantErr: "parsing YAML"},
		{name: "bad timeout", content: "command_timeout: soon", wantErr: "invalid command_timeout"},
		{name: "bad log level", content: "log_level: loud", wantErr: "invalid log level: loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeProjectFile(t, root, tt.content)

			_, err := config.NewConfigForCLIWithEnv(mocks.NewMockEnvProvider(root, nil), config.Overrides{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewConfigForCLIWithEnv_EnvironmentVariables(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "log_level: error\ncommand_timeout: 1m\n")

	env := mocks.NewMockEnvProvider(root, map[string]string{
		"CANTHUS_DEPLOY_LOG_LEVEL":       "debug",
		"CANTHUS_DEPLOY_COLOR_ENABLED":   "false",
		"CANTHUS_DEPLOY_HISTORY_ENABLED": "0",
		"CANTHUS_DEPLOY_COMMAND_TIMEOUT": "90s",
		"CANTHUS_DEPLOY_DATA_DIR":        "state",
	})

	cfg, err := config.NewConfigForCLIWithEnv(env, config.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "environment wins over the project file")
	assert.False(t, cfg.ColorEnabled)
	assert.False(t, cfg.HistoryEnabled)
	assert.Equal(t, 90*time.Second, cfg.CommandTimeout)
	assert.Equal(t, filepath.Join(root, "state"), cfg.DataDir)
	assert.Equal(t, filepath.Join(root, "state", "history.db"), cfg.DatabasePath)
}

func TestNewConfigForCLIWithEnv_UnparsableEnvironmentValuesAreIgnored(t *testing.T) {
	root := t.TempDir()
	env := mocks.NewMockEnvProvider(root, map[string]string{
		"CANTHUS_DEPLOY_COLOR_ENABLED":   "maybe",
		"CANTHUS_DEPLOY_COMMAND_TIMEOUT": "later",
	})

	cfg, err := config.NewConfigForCLIWithEnv(env, config.Overrides{})
	require.NoError(t, err)

	assert.True(t, cfg.ColorEnabled)
	assert.Zero(t, cfg.CommandTimeout)
}

func TestNewConfigForCLIWithEnv_Overrides(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "command_timeout: 1m\n")
	timeout := 5 * time.Second

	cfg, err := config.NewConfigForCLIWithEnv(mocks.NewMockEnvProvider(root, nil), config.Overrides{
		Environment:     domain.EnvironmentStaging,
		DryRun:          true,
		SkipTests:       true,
		CommandTimeout:  &timeout,
		HistoryDisabled: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.EnvironmentStaging, cfg.Environment)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.SkipTests)
	assert.Equal(t, timeout, cfg.CommandTimeout)
	assert.False(t, cfg.HistoryEnabled)
}

func TestNewConfigForCLIWithEnv_Validation(t *testing.T) {
	negative := -time.Second

	tests := []struct {
		name      string
		overrides config.Overrides
		file      string
		wantErr   string
	}{
		{
			name:      "unknown environment",
			overrides: config.Overrides{Environment: "dev"},
			wantErr:   "invalid environment: dev (must be production or staging)",
		},
		{
			name:      "negative timeout",
			overrides: config.Overrides{CommandTimeout: &negative},
			wantErr:   "command timeout cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()

			_, err := config.NewConfigForCLIWithEnv(mocks.NewMockEnvProvider(root, nil), tt.overrides)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Getenv(t *testing.T) {
	root := t.TempDir()
	env := mocks.NewMockEnvProvider(root, map[string]string{"CLOUDFLARE_API_TOKEN": "secret"})

	cfg, err := config.NewConfigForCLIWithEnv(env, config.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Getenv("CLOUDFLARE_API_TOKEN"))
	assert.Empty(t, cfg.Getenv("UNSET_VARIABLE"))
}

func TestConfig_GetenvWithoutProvider(t *testing.T) {
	t.Setenv("CANTHUS_DEPLOY_TEST_VALUE", "from-os")

	cfg := &config.Config{}

	assert.Equal(t, "from-os", cfg.Getenv("CANTHUS_DEPLOY_TEST_VALUE"))
}
