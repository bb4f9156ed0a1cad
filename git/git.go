// Package git reads repository state of the project being deployed.
package git

import (
	"errors"
	"log/slog"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when the project is not inside a Git work tree
var ErrNotRepository = errors.New("not a git repository")

type GitService struct{}

func NewGitService() *GitService {
	return &GitService{}
}

// GetLatestCommit returns the hash HEAD points to. workingDir may be any
// directory inside the work tree.
func (s *GitService) GetLatestCommit(workingDir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(workingDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			slog.Debug("Project is not a git repository", "working_dir", workingDir)
			return "", ErrNotRepository
		}
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "git_get_commit",
			"working_dir", workingDir,
			"error", err)
		return "", err
	}

	ref, err := repo.Head()
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "git_get_commit",
			"working_dir", workingDir,
			"error", err)
		return "", err
	}

	return ref.Hash().String(), nil
}
