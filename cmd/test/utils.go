// Package test provides helpers for testing the canthus-deploy CLI
package test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/canthus/deploy/app"
	"github.com/canthus/deploy/cmd/output"
	"github.com/canthus/deploy/logging"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type RepoFile struct {
	Path    string
	Content string
}

// ManifestFile is the marker every project root carries
var ManifestFile = RepoFile{Path: "package.json", Content: `{"name":"canthus","private":true}`}

// NewProjectRoot creates a project directory holding the given files
func NewProjectRoot(t *testing.T, files ...RepoFile) string {
	t.Helper()
	root := t.TempDir()
	for _, file := range files {
		path := filepath.Join(root, file.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating directory for %s: %v", file.Path, err)
		}
		if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", file.Path, err)
		}
	}
	return root
}

// ResetCLIState clears the process-wide state a command invocation leaves behind
func ResetCLIState(t *testing.T) {
	t.Helper()
	reset := func() {
		app.Reset()
		logging.LogLevel.Reset()
		output.NoColor.Reset()
	}
	reset()
	t.Cleanup(reset)
}

// InitGitRepo initializes a repository at path and commits files, returning the commit hash
func InitGitRepo(path string, files []RepoFile) (string, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return "", fmt.Errorf("failed to initialize git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := AddRepoFiles(worktree, files); err != nil {
		return "", fmt.Errorf("failed to add files to git repository: %w", err)
	}

	hash, err := worktree.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Jane Doe",
			Email: "jane@example.org",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit changes: %w", err)
	}

	return hash.String(), nil
}

func AddRepoFiles(repoWorktree *git.Worktree, files []RepoFile) error {
	repoDir := repoWorktree.Filesystem.Root()

	for _, file := range files {
		filePath := filepath.Join(repoDir, file.Path)
		if err := os.WriteFile(filePath, []byte(file.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", file.Path, err)
		}
		if _, err := repoWorktree.Add(file.Path); err != nil {
			return fmt.Errorf("failed to add file %s to git: %w", file.Path, err)
		}
	}

	return nil
}

// Trim removes the trailing spaces tablewriter leaves on each line
func Trim(input string) string {
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
