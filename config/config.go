// Package config resolves the configuration of a deployment run from defaults,
// the optional project file, environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/canthus/deploy/domain"
	"github.com/canthus/deploy/logging"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectFile is the optional per-project configuration file in the project root
	ProjectFile = "deploy.yaml"
	// DataDirName is the directory in the project root holding the run history
	DataDirName = ".canthus-deploy"
	// DatabaseFile is the name of the run history database inside the data directory
	DatabaseFile = "history.db"
)

// EnvProvider abstracts environment access for testing
type EnvProvider interface {
	Getenv(key string) string
	Getwd() (string, error)
}

// DefaultEnvProvider implements EnvProvider using real OS functions
type DefaultEnvProvider struct{}

func (p *DefaultEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

func (p *DefaultEnvProvider) Getwd() (string, error) {
	return os.Getwd()
}

// Config holds the immutable configuration of one invocation
type Config struct {
	// Invocation
	Environment domain.Environment
	DryRun      bool
	SkipTests   bool

	// Layout. All directories are absolute once the config is built.
	ProjectRoot     string
	SharedDir       string
	ServerDir       string
	ClientDir       string
	LogsDir         string
	ManifestFile    string // marker file that must exist in ProjectRoot
	StaticAssetsDir string // client build output, relative to ClientDir

	// External tools
	BuildTool       string
	CloudCLI        string
	AuthTokenEnvVar string

	// CommandTimeout bounds every external command, zero means no timeout
	CommandTimeout time.Duration

	// Logging
	LogLevel     string
	ColorEnabled bool

	// Run history
	HistoryEnabled bool
	DataDir        string
	DatabasePath   string

	env EnvProvider
}

// Overrides carries values given on the command line. Zero values leave the
// configured value untouched, except for the invocation fields which always apply.
type Overrides struct {
	ProjectRoot     string
	Environment     domain.Environment
	DryRun          bool
	SkipTests       bool
	CommandTimeout  *time.Duration
	HistoryDisabled bool
}

// fileConfig mirrors deploy.yaml
type fileConfig struct {
	Directories struct {
		Shared string `yaml:"shared"`
		Server string `yaml:"server"`
		Client string `yaml:"client"`
		Logs   string `yaml:"logs"`
	} `yaml:"directories"`
	ManifestFile    string `yaml:"manifest_file"`
	StaticAssetsDir string `yaml:"static_assets_dir"`
	BuildTool       string `yaml:"build_tool"`
	CloudCLI        string `yaml:"cloud_cli"`
	AuthTokenEnvVar string `yaml:"auth_token_env_var"`
	CommandTimeout  string `yaml:"command_timeout"`
	LogLevel        string `yaml:"log_level"`
	History         *bool  `yaml:"history"`
}

// NewConfigForCLI creates the configuration for a CLI invocation
func NewConfigForCLI(overrides Overrides) (*Config, error) {
	return NewConfigForCLIWithEnv(&DefaultEnvProvider{}, overrides)
}

// NewConfigForCLIWithEnv creates a new configuration with custom environment provider (for testing)
func NewConfigForCLIWithEnv(env EnvProvider, overrides Overrides) (*Config, error) {
	c := &Config{env: env}

	c.setDefaults()

	root, err := c.resolveProjectRoot(overrides.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	c.ProjectRoot = root

	if err := c.loadFromFile(filepath.Join(root, ProjectFile)); err != nil {
		return nil, fmt.Errorf("loading %s: %w", ProjectFile, err)
	}

	c.loadFromEnv()
	c.applyOverrides(overrides)
	c.derivePaths()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// setDefaults reproduces the fixed layout of the application repository
func (c *Config) setDefaults() {
	c.Environment = domain.EnvironmentProduction
	c.SharedDir = "shared"
	c.ServerDir = "server"
	c.ClientDir = "client"
	c.LogsDir = "logs"
	c.ManifestFile = "package.json"
	c.StaticAssetsDir = "dist"
	c.BuildTool = "bun"
	c.CloudCLI = "wrangler"
	c.AuthTokenEnvVar = "CLOUDFLARE_API_TOKEN"
	c.LogLevel = "silent"
	c.ColorEnabled = true
	c.HistoryEnabled = true
}

// resolveProjectRoot picks the flag value, then CANTHUS_DEPLOY_PROJECT_ROOT,
// then the working directory, and makes the result absolute
func (c *Config) resolveProjectRoot(cliRoot string) (string, error) {
	root := cliRoot
	if root == "" {
		root = c.env.Getenv("CANTHUS_DEPLOY_PROJECT_ROOT")
	}

	if root != "" && filepath.IsAbs(root) {
		return filepath.Clean(root), nil
	}

	wd, err := c.env.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, root), nil
}

// loadFromFile applies deploy.yaml if it exists
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	setIfNotEmpty(&c.SharedDir, fc.Directories.Shared)
	setIfNotEmpty(&c.ServerDir, fc.Directories.Server)
	setIfNotEmpty(&c.ClientDir, fc.Directories.Client)
	setIfNotEmpty(&c.LogsDir, fc.Directories.Logs)
	setIfNotEmpty(&c.ManifestFile, fc.ManifestFile)
	setIfNotEmpty(&c.StaticAssetsDir, fc.StaticAssetsDir)
	setIfNotEmpty(&c.BuildTool, fc.BuildTool)
	setIfNotEmpty(&c.CloudCLI, fc.CloudCLI)
	setIfNotEmpty(&c.AuthTokenEnvVar, fc.AuthTokenEnvVar)
	setIfNotEmpty(&c.LogLevel, fc.LogLevel)

	if fc.CommandTimeout != "" {
		d, err := time.ParseDuration(fc.CommandTimeout)
		if err != nil {
			return fmt.Errorf("invalid command_timeout %q: %w", fc.CommandTimeout, err)
		}
		c.CommandTimeout = d
	}
	if fc.History != nil {
		c.HistoryEnabled = *fc.History
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if v := c.env.Getenv("CANTHUS_DEPLOY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := c.env.Getenv("CANTHUS_DEPLOY_COLOR_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.ColorEnabled = enabled
		}
	}
	if v := c.env.Getenv("CANTHUS_DEPLOY_HISTORY_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.HistoryEnabled = enabled
		}
	}
	if v := c.env.Getenv("CANTHUS_DEPLOY_COMMAND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CommandTimeout = d
		}
	}
	if v := c.env.Getenv("CANTHUS_DEPLOY_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

func (c *Config) applyOverrides(o Overrides) {
	if o.Environment != "" {
		c.Environment = o.Environment
	}
	c.DryRun = o.DryRun
	c.SkipTests = o.SkipTests
	if o.CommandTimeout != nil {
		c.CommandTimeout = *o.CommandTimeout
	}
	if o.HistoryDisabled {
		c.HistoryEnabled = false
	}
}

// derivePaths anchors relative directories at the project root
func (c *Config) derivePaths() {
	c.SharedDir = c.underRoot(c.SharedDir)
	c.ServerDir = c.underRoot(c.ServerDir)
	c.ClientDir = c.underRoot(c.ClientDir)
	c.LogsDir = c.underRoot(c.LogsDir)

	if c.DataDir == "" {
		c.DataDir = DataDirName
	}
	c.DataDir = c.underRoot(c.DataDir)
	c.DatabasePath = filepath.Join(c.DataDir, DatabaseFile)
}

func (c *Config) underRoot(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(c.ProjectRoot, dir)
}

// validate ensures configuration values are valid
func (c *Config) validate() error {
	if !c.Environment.IsValid() {
		return fmt.Errorf("invalid environment: %s (must be %s)",
			c.Environment, strings.Join(domain.ValidEnvironments(), " or "))
	}

	if !slices.Contains(logging.ValidLogLevels(), c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of %s)",
			c.LogLevel, strings.Join(logging.ValidLogLevels(), ", "))
	}

	if c.CommandTimeout < 0 {
		return fmt.Errorf("command timeout cannot be negative, got: %v", c.CommandTimeout)
	}

	if c.BuildTool == "" {
		return fmt.Errorf("build tool cannot be empty")
	}
	if c.CloudCLI == "" {
		return fmt.Errorf("cloud CLI cannot be empty")
	}
	if c.ManifestFile == "" {
		return fmt.Errorf("manifest file cannot be empty")
	}
	if c.AuthTokenEnvVar == "" {
		return fmt.Errorf("auth token environment variable name cannot be empty")
	}

	return nil
}

// Getenv reads an environment variable through the configured provider
func (c *Config) Getenv(key string) string {
	if c.env == nil {
		return os.Getenv(key)
	}
	return c.env.Getenv(key)
}

// ManifestPath returns the absolute path of the project marker file
func (c *Config) ManifestPath() string {
	return filepath.Join(c.ProjectRoot, c.ManifestFile)
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
