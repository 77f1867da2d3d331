// Package githubrelease creates GitHub releases for published versions.
package githubrelease

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/chart-publish/internal/release/domain"
)

// Adapter implements ports.ReleasePort via the GitHub Releases API.
type Adapter struct {
	client *gogithub.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// New creates a release adapter for repository, given as "owner/name".
func New(client *gogithub.Client, repository string, logger *slog.Logger) (*Adapter, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("invalid repository %q: want owner/name", repository)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Adapter{client: client, owner: owner, repo: repo, logger: logger}, nil
}

// CreateRelease publishes a release for the tag named after v and returns its page URL.
func (a *Adapter) CreateRelease(ctx context.Context, v domain.Version) (string, error) {
	a.logger.Info("creating github release", "owner", a.owner, "repo", a.repo, "tag", v.String())

	rel, _, err := a.client.Repositories.CreateRelease(ctx, a.owner, a.repo, &gogithub.RepositoryRelease{
		TagName:              gogithub.Ptr(v.String()),
		Name:                 gogithub.Ptr(v.String()),
		Prerelease:           gogithub.Ptr(v.IsPrerelease()),
		GenerateReleaseNotes: gogithub.Ptr(true),
	})
	if err != nil {
		return "", fmt.Errorf("creating release %s: %w", v, err)
	}

	a.logger.Info("github release created", "url", rel.GetHTMLURL())
	return rel.GetHTMLURL(), nil
}
