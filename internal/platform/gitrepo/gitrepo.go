// Package gitrepo drives the git working tree a release is committed from.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nathantilsley/chart-publish/internal/platform/execx"
)

// GitRepo runs git commands inside a single working tree. Every call goes
// through the runner, so each is bounded by its timeout.
type GitRepo struct {
	runner execx.Runner
	gitBin string
	dir    string
	remote string // empty means git's configured upstream
	logger *slog.Logger
}

// New creates a GitRepo for dir, resolving git on PATH. No git command is run.
func New(runner execx.Runner, dir, remote string, logger *slog.Logger) (*GitRepo, error) {
	bin, err := execx.LookPath("git")
	if err != nil {
		return nil, err
	}
	return NewWithBinary(runner, bin, dir, remote, logger), nil
}

// NewWithBinary creates a GitRepo for an already resolved git binary.
func NewWithBinary(runner execx.Runner, gitBin, dir, remote string, logger *slog.Logger) *GitRepo {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &GitRepo{runner: runner, gitBin: gitBin, dir: dir, remote: remote, logger: logger}
}

// Path returns the working tree directory.
func (r *GitRepo) Path() string {
	return r.dir
}

// Stage adds exactly the given paths to the index.
func (r *GitRepo) Stage(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return errors.New("git add: no paths given")
	}
	r.logger.Info("staging release files", "paths", paths)
	args := append([]string{"add", "--"}, paths...)
	if _, err := r.git(ctx, args...); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}
	return nil
}

// HasStagedChanges reports whether the index differs from HEAD.
func (r *GitRepo) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := r.git(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var te *execx.ToolError
	if errors.As(err, &te) && te.ExitCode == 1 && !te.TimedOut {
		return true, nil
	}
	return false, fmt.Errorf("git diff --cached failed: %w", err)
}

// Commit records the staged changes with message.
func (r *GitRepo) Commit(ctx context.Context, message string) error {
	r.logger.Info("committing", "message", message)
	if _, err := r.git(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit failed: %w", err)
	}
	return nil
}

// Tag creates an annotated tag on HEAD.
func (r *GitRepo) Tag(ctx context.Context, name, message string) error {
	r.logger.Info("tagging", "tag", name)
	if _, err := r.git(ctx, "tag", "-a", name, "-m", message); err != nil {
		return fmt.Errorf("git tag failed: %w", err)
	}
	return nil
}

// Push pushes the current branch.
func (r *GitRepo) Push(ctx context.Context) error {
	r.logger.Info("pushing", "remote", r.remoteName())
	if _, err := r.git(ctx, r.pushArgs()...); err != nil {
		return fmt.Errorf("git push failed: %w", err)
	}
	return nil
}

// PushTags pushes all tags.
func (r *GitRepo) PushTags(ctx context.Context) error {
	r.logger.Info("pushing tags", "remote", r.remoteName())
	if _, err := r.git(ctx, append(r.pushArgs(), "--tags")...); err != nil {
		return fmt.Errorf("git push --tags failed: %w", err)
	}
	return nil
}

func (r *GitRepo) pushArgs() []string {
	if r.remote == "" {
		return []string{"push"}
	}
	return []string{"push", r.remote}
}

func (r *GitRepo) remoteName() string {
	if r.remote == "" {
		return "upstream"
	}
	return r.remote
}

func (r *GitRepo) git(ctx context.Context, args ...string) (execx.Result, error) {
	return r.runner.Run(ctx, execx.Command{Name: r.gitBin, Args: args, Dir: r.dir})
}
