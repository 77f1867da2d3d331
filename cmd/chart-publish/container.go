// Package main provides chart-publish, which releases the Helm chart, the
// quickstart manifest and optionally the container image.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nathantilsley/chart-publish/internal/platform/config"
	"github.com/nathantilsley/chart-publish/internal/platform/execx"
	"github.com/nathantilsley/chart-publish/internal/platform/gitrepo"
	ghclient "github.com/nathantilsley/chart-publish/internal/platform/github"
	"github.com/nathantilsley/chart-publish/internal/platform/telemetry"
	chartyaml "github.com/nathantilsley/chart-publish/internal/release/adapters/chart_yaml"
	"github.com/nathantilsley/chart-publish/internal/release/adapters/console"
	dockercli "github.com/nathantilsley/chart-publish/internal/release/adapters/docker_cli"
	dockerhub "github.com/nathantilsley/chart-publish/internal/release/adapters/docker_hub"
	githubrelease "github.com/nathantilsley/chart-publish/internal/release/adapters/github_release"
	helmcli "github.com/nathantilsley/chart-publish/internal/release/adapters/helm_cli"
	linediff "github.com/nathantilsley/chart-publish/internal/release/adapters/line_diff"
	mkdocscli "github.com/nathantilsley/chart-publish/internal/release/adapters/mkdocs_cli"
	"github.com/nathantilsley/chart-publish/internal/release/app"
	"github.com/nathantilsley/chart-publish/internal/release/domain"
)

// Options selects which adapters a command needs.
type Options struct {
	Command       string
	TagsOnly      bool // registry and operator only
	Interactive   bool // attach the console operator
	DryRun        bool // no helm/git/docker/mkdocs adapters
	BuildImage    bool
	DeployDocs    bool
	CreateRelease bool

	In  io.Reader
	Out io.Writer
}

// Container holds all application dependencies.
type Container struct {
	Config         config.Config
	Logger         *slog.Logger
	Telemetry      *telemetry.Telemetry
	Operator       *console.Adapter
	PublishService *app.PublishService
}

// NewContainer builds and wires the dependencies a command needs.
func NewContainer(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (*Container, error) {
	tel, err := telemetry.New(ctx, telemetry.Settings{
		Enabled: cfg.OTelEnabled,
		Version: version,
		Command: opts.Command,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	c := &Container{Config: cfg, Logger: log, Telemetry: tel}
	p, err := buildPorts(cfg, log, opts)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	if op, ok := p.Operator.(*console.Adapter); ok {
		c.Operator = op
	}

	c.PublishService = app.NewPublishService(p, layoutFrom(cfg), cfg.RegistryPageSize, tel.Tracer, tel.Meter, log)
	return c, nil
}

func buildPorts(cfg config.Config, log *slog.Logger, opts Options) (app.Ports, error) {
	var p app.Ports
	p.Registry = dockerhub.New(cfg.RegistryURL, cfg.HTTPTimeout, log)
	if opts.Interactive || opts.TagsOnly {
		p.Operator = console.New(opts.In, opts.Out)
	}
	if opts.TagsOnly {
		return p, nil
	}

	p.Chart = chartyaml.New(log)
	p.Diff = linediff.New()
	if opts.DryRun {
		return p, nil
	}

	runner := execx.New(cfg.ToolTimeout, log)

	helm, err := helmcli.New(runner, log)
	if err != nil {
		return p, fmt.Errorf("creating helm adapter: %w", err)
	}
	p.Renderer = helm
	p.Packager = helm

	git, err := gitrepo.New(runner, "", cfg.GitRemote, log)
	if err != nil {
		return p, fmt.Errorf("creating git adapter: %w", err)
	}
	p.VCS = git

	if opts.BuildImage {
		docker, err := dockercli.New(runner, log)
		if err != nil {
			return p, fmt.Errorf("creating docker adapter: %w", err)
		}
		p.Images = docker
	}

	if opts.DeployDocs {
		mkdocs, err := mkdocscli.New(runner, log)
		if err != nil {
			return p, fmt.Errorf("creating mkdocs adapter: %w", err)
		}
		p.Docs = mkdocs
	}

	if opts.CreateRelease {
		client, err := ghclient.NewClient(ghclient.Credentials{
			Token:          cfg.GitHubToken,
			AppID:          cfg.GitHubAppID,
			InstallationID: cfg.GitHubInstallationID,
			PrivateKeyPEM:  cfg.GitHubPrivateKey,
		})
		if err != nil {
			return p, fmt.Errorf("creating github client: %w", err)
		}
		releases, err := githubrelease.New(client, cfg.GitHubRepository, log)
		if err != nil {
			return p, fmt.Errorf("creating github release adapter: %w", err)
		}
		p.Releases = releases
	}

	return p, nil
}

func layoutFrom(cfg config.Config) domain.Layout {
	return domain.Layout{
		ChartDir:        cfg.ChartDir,
		ManifestPath:    cfg.ManifestPath,
		ReleaseName:     cfg.ReleaseName,
		PackageDir:      cfg.PackageDir,
		IndexDir:        cfg.IndexDir,
		ChartRepoURL:    cfg.ChartRepoURL,
		ImageRepository: cfg.ImageRepository,
		ImageContext:    cfg.ImageContext,
	}
}
