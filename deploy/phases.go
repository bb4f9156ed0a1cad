package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

func (r *Runner) checkPrerequisites(ctx context.Context) error {
	r.info("Checking prerequisites...")

	if _, err := os.Stat(r.cfg.ManifestPath()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &DeploymentError{Message: "Not in project root directory"}
		}
		return fmt.Errorf("checking %s: %w", r.cfg.ManifestFile, err)
	}

	root := r.cfg.ProjectRoot

	result, err := r.runCommand(ctx, []string{r.cfg.BuildTool, "--version"}, root, false)
	if err != nil {
		return err
	}
	if !result.Success() {
		return &DeploymentError{Message: "Bun is not installed or not in PATH"}
	}

	result, err = r.runCommand(ctx, []string{r.cfg.CloudCLI, "--version"}, root, false)
	if err != nil {
		return err
	}
	if !result.Success() {
		return &DeploymentError{Message: "Wrangler CLI is not installed or not in PATH"}
	}

	result, err = r.runCommand(ctx, []string{r.cfg.CloudCLI, "whoami"}, root, false)
	if err != nil {
		return err
	}
	if result.Success() {
		r.info("Wrangler CLI is authenticated")
	} else {
		tokenVar := r.cfg.AuthTokenEnvVar
		if r.cfg.Getenv(tokenVar) == "" {
			return &DeploymentError{Message: fmt.Sprintf(
				"Not authenticated with Cloudflare and no %s found.\n"+
					"Either run 'wrangler login' or set %s environment variable",
				tokenVar, tokenVar)}
		}
		r.warn("Wrangler not authenticated, but %s is available", tokenVar)
	}

	r.info("Prerequisites check passed")
	return nil
}

// checkSecrets never fails the run: a failing listing only produces warnings
func (r *Runner) checkSecrets(ctx context.Context) error {
	env := r.cfg.Environment
	r.info("Checking Cloudflare secrets configuration for %s...", env)

	result, err := r.runCommand(ctx,
		[]string{r.cfg.CloudCLI, "secret", "list", "--env", env.String()},
		r.cfg.ServerDir, false)
	if err != nil {
		return err
	}

	if !result.Success() {
		r.warn("Could not list secrets for %s: %s", env, result.Stderr)
		r.info("Secrets may not be configured. Deployment will proceed without secret validation.")
		return nil
	}

	output := strings.TrimSpace(result.Stdout)
	if output == "" {
		r.info("No secrets configured for %s", env)
	} else {
		r.info("Found configured secrets for %s", env)
		for _, line := range strings.Split(output, "\n") {
			if name := strings.TrimSpace(line); name != "" {
				r.info("  - %s", name)
			}
		}
	}

	r.info("Cloudflare secrets check completed")
	return nil
}

func (r *Runner) runTests(ctx context.Context) error {
	if r.cfg.SkipTests {
		r.skip("Skipping tests as requested")
		return nil
	}

	r.info("Running tests...")
	r.info("Running server tests...")

	result, err := r.runCommand(ctx, []string{r.cfg.BuildTool, "test"}, r.cfg.ServerDir, false)
	if err != nil {
		return err
	}
	if !result.Success() {
		return &DeploymentError{Message: fmt.Sprintf("Server tests failed: %s", result.Stderr)}
	}

	r.info("All tests passed")
	return nil
}

// buildApplication builds shared, server and client in that order; later
// packages consume the artifacts of earlier ones
func (r *Runner) buildApplication(ctx context.Context) error {
	r.info("Building application...")

	steps := []struct {
		phase   string
		message string
		dir     string
	}{
		{"Build shared", "Building shared package...", r.cfg.SharedDir},
		{"Build server", "Building server...", r.cfg.ServerDir},
		{"Build client", "Building client...", r.cfg.ClientDir},
	}

	for _, step := range steps {
		err := r.phase(ctx, step.phase, func(ctx context.Context) error {
			r.info("%s", step.message)
			_, err := r.runCommand(ctx, []string{r.cfg.BuildTool, "run", "build"}, step.dir, true)
			return err
		})
		if err != nil {
			return err
		}
	}

	r.info("Application build completed")
	return nil
}

func (r *Runner) deployServer(ctx context.Context) error {
	env := r.cfg.Environment
	r.info("Deploying server to %s...", env)

	if _, err := r.runCommand(ctx,
		[]string{r.cfg.CloudCLI, "deploy", "--env", env.String()},
		r.cfg.ServerDir, true); err != nil {
		return err
	}

	r.info("Server deployed to %s", env)
	return nil
}

func (r *Runner) deployClient(ctx context.Context) error {
	env := r.cfg.Environment
	r.info("Deploying client to %s...", env)

	if _, err := r.runCommand(ctx,
		[]string{r.cfg.CloudCLI, "pages", "deploy", r.cfg.StaticAssetsDir},
		r.cfg.ClientDir, true); err != nil {
		return err
	}

	r.info("Client deployed to %s", env)
	return nil
}

// verifyDeployment validates the deployed configuration; failures are warnings only
func (r *Runner) verifyDeployment(ctx context.Context) error {
	r.info("Verifying deployment...")

	result, err := r.runCommand(ctx,
		[]string{r.cfg.CloudCLI, "deploy", "--dry-run", "--env", r.cfg.Environment.String()},
		r.cfg.ServerDir, false)
	if err != nil {
		return err
	}

	if result.Success() {
		r.info("Deployment verification passed")
	} else {
		r.warn("Deployment verification failed: %s", result.Stderr)
	}
	return nil
}
