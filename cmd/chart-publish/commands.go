package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/nathantilsley/chart-publish/internal/platform/config"
	"github.com/nathantilsley/chart-publish/internal/platform/logger"
	"github.com/nathantilsley/chart-publish/internal/release/domain"
)

const (
	name            = "chart-publish"
	shutdownTimeout = 10 * time.Second
)

// streams carries the process I/O so tests can capture it.
type streams struct {
	in       io.Reader
	out, err io.Writer
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error)",
		Sources: cli.EnvVars("LOG_LEVEL"),
		Value:   "info",
	}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Resolve the version and print the chart diff and planned commands without changing anything",
	}
}

func githubReleaseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "github-release",
		Usage: "Create a GitHub release for the version after pushing (needs GITHUB_REPOSITORY and credentials)",
	}
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	s := streams{in: stdin, out: stdout, err: stderr}
	return &cli.Command{
		Name:      name,
		Usage:     "Publish the Helm chart, quickstart manifest and image for a release",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Reader:    stdin,
		Flags:     []cli.Flag{logLevelFlag()},
		Commands: []*cli.Command{
			tagsCmd(s),
			releaseCmd(s),
			ciCmd(s),
		},
	}
}

func tagsCmd(s streams) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Show the most recently updated image tags in the registry",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := setup(cmd, s, false)
			if err != nil {
				return err
			}
			c, err := NewContainer(ctx, cfg, log, Options{Command: cmd.Name, TagsOnly: true, In: s.in, Out: s.out})
			if err != nil {
				return fmt.Errorf("building container: %w", err)
			}
			defer shutdown(c)

			tags, err := c.PublishService.ListRecentTags(ctx)
			if err != nil {
				return err
			}
			return c.Operator.ShowTags(ctx, tags)
		},
	}
}

func releaseCmd(s streams) *cli.Command {
	return &cli.Command{
		Name:  "release",
		Usage: "Release interactively: show recent tags, ask for the version, publish and tag",
		Description: `Runs the full release from an operator's machine:

  docker build (--image), update Chart.yaml, helm template, helm package,
  helm repo index, mkdocs gh-deploy (--docs), git commit, git tag, git push,
  git push --tags, docker push (--image), GitHub release (--github-release).

The version is read from --version or prompted for after the recent tags are shown.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "version",
				Usage: "Version to release; prompted for when empty",
			},
			&cli.BoolFlag{
				Name:  "image",
				Usage: "Build the image before the chart update and push it after git push",
			},
			&cli.BoolFlag{
				Name:  "docs",
				Usage: "Deploy the documentation site with mkdocs gh-deploy",
			},
			githubReleaseFlag(),
			dryRunFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := setup(cmd, s, false)
			if err != nil {
				return err
			}
			req := domain.Request{
				Mode:          domain.ModeInteractive,
				Version:       cmd.String("version"),
				BuildImage:    cmd.Bool("image"),
				DeployDocs:    cmd.Bool("docs"),
				CreateRelease: cmd.Bool("github-release"),
				DryRun:        cmd.Bool("dry-run"),
			}
			return publish(ctx, cmd.Name, cfg, log, s, req)
		},
	}
}

func ciCmd(s streams) *cli.Command {
	return &cli.Command{
		Name:  "ci",
		Usage: "Release from a tag-push workflow using GITHUB_REF_NAME and GITHUB_REF_TYPE",
		Description: `Runs inside GitHub Actions after a tag is pushed. Fails with an ::error::
annotation unless GITHUB_REF_TYPE is "tag" and GITHUB_REF_NAME is set.

  update Chart.yaml, helm template, helm package, helm repo index,
  git commit "<version> - Automated Helm & k8s update", git push.`,
		Flags: []cli.Flag{githubReleaseFlag(), dryRunFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := setup(cmd, s, true)
			if err != nil {
				return err
			}
			// Reject non-tag runs before any adapter is built.
			if _, err := domain.VersionFromRef(cfg.RefName, cfg.RefType); err != nil {
				log.Error("release aborted", logger.ErrorKey, err)
				return err
			}
			req := domain.Request{
				Mode:          domain.ModeCI,
				RefName:       cfg.RefName,
				RefType:       cfg.RefType,
				CreateRelease: cmd.Bool("github-release"),
				DryRun:        cmd.Bool("dry-run"),
			}
			return publish(ctx, cmd.Name, cfg, log, s, req)
		},
	}
}

// setup loads configuration and builds the logger. Logs go to stderr; in ci
// mode error records are also written to stdout as workflow annotations.
func setup(cmd *cli.Command, s streams, annotate bool) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		if annotate {
			fmt.Fprintf(s.out, "::error::%s\n", logger.EscapeData("loading config: "+err.Error()))
		}
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.LogLevel = cmd.String("log-level")

	if annotate {
		return cfg, logger.NewWithAnnotations(cfg.LogLevel, s.err, s.out), nil
	}
	return cfg, logger.New(cfg.LogLevel, s.err), nil
}

func publish(ctx context.Context, command string, cfg config.Config, log *slog.Logger, s streams, req domain.Request) error {
	c, err := NewContainer(ctx, cfg, log, Options{
		Command:       command,
		Interactive:   req.Mode == domain.ModeInteractive,
		DryRun:        req.DryRun,
		BuildImage:    req.BuildImage,
		DeployDocs:    req.DeployDocs,
		CreateRelease: req.CreateRelease,
		In:            s.in,
		Out:           s.out,
	})
	if err != nil {
		log.Error("release aborted", logger.ErrorKey, err)
		return fmt.Errorf("building container: %w", err)
	}
	defer shutdown(c)

	report, err := c.PublishService.Execute(ctx, req)
	if err != nil {
		var se *domain.StepError
		if errors.As(err, &se) {
			log.Error("release failed", logger.ErrorKey, err, "stage", se.From.String(), "kind", se.Kind.String())
		} else {
			log.Error("release failed", logger.ErrorKey, err)
		}
		return err
	}
	printReport(s.out, report, req.DryRun)
	return nil
}

func printReport(w io.Writer, r *domain.Report, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "dry run for %s, nothing was changed\n", r.Version)
		if r.Preview != "" {
			fmt.Fprintf(w, "\n%s\n", strings.TrimRight(r.Preview, "\n"))
		} else {
			fmt.Fprintln(w, "\nChart.yaml already at this version")
		}
		fmt.Fprintln(w, "\nplanned commands:")
		for _, c := range r.Plan {
			fmt.Fprintf(w, "  %s\n", c)
		}
		return
	}

	fmt.Fprintf(w, "released %s\n", r.Version)
	if r.ArchivePath != "" {
		fmt.Fprintf(w, "  chart:   %s\n", r.ArchivePath)
	}
	if r.ImageRef != "" {
		fmt.Fprintf(w, "  image:   %s\n", r.ImageRef)
	}
	if r.ReleaseURL != "" {
		fmt.Fprintf(w, "  release: %s\n", r.ReleaseURL)
	}
	if r.CommitSkipped {
		fmt.Fprintln(w, "  nothing new to commit, pushed existing history")
	}
}

func shutdown(c *Container) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := c.Telemetry.Shutdown(ctx); err != nil {
		c.Logger.Warn("telemetry shutdown failed", "error", err)
	}
}
