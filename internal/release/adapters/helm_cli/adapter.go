package helmcli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/nathantilsley/chart-publish/internal/platform/execx"
	"github.com/nathantilsley/chart-publish/internal/platform/fileio"
)

var packagedPathRe = regexp.MustCompile(`(?m)saved it to:\s*(\S+)\s*$`)

// Adapter implements ports.RendererPort and ports.PackagerPort by shelling
// out to the helm CLI.
type Adapter struct {
	runner  execx.Runner
	helmBin string
	logger  *slog.Logger
}

// New creates a new Helm CLI adapter. It verifies that the helm binary
// is available on PATH at construction time.
func New(runner execx.Runner, logger *slog.Logger) (*Adapter, error) {
	helmBin, err := execx.LookPath("helm")
	if err != nil {
		return nil, err
	}
	return NewWithBinary(runner, helmBin, logger), nil
}

// NewWithBinary creates an adapter for an already resolved helm binary.
func NewWithBinary(runner execx.Runner, helmBin string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Adapter{runner: runner, helmBin: helmBin, logger: logger}
}

// Render runs `helm template` on chartDir under releaseName and returns the
// rendered manifest bytes.
func (a *Adapter) Render(ctx context.Context, chartDir, releaseName string) ([]byte, error) {
	args := []string{"template", "--name-template", releaseName, chartDir}

	a.logger.Info("running helm template", "chartDir", chartDir, "releaseName", releaseName)
	res, err := a.runner.Run(ctx, execx.Command{Name: a.helmBin, Args: args})
	if err != nil {
		return nil, fmt.Errorf("helm template failed: %w", err)
	}

	a.logger.Info("helm template completed", "outputSize", len(res.Stdout))
	return res.Stdout, nil
}

// RenderManifest renders the chart and replaces outPath with the result. The
// file is only touched when helm exits zero.
func (a *Adapter) RenderManifest(ctx context.Context, chartDir, releaseName, outPath string) error {
	manifest, err := a.Render(ctx, chartDir, releaseName)
	if err != nil {
		return err
	}
	if err := fileio.WriteFileAtomically(outPath, manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	a.logger.Info("manifest written", "path", outPath)
	return nil
}

// Package runs `helm package` and returns the path of the archive helm reports,
// or an empty string when the output does not name one.
func (a *Adapter) Package(ctx context.Context, chartDir, destDir string) (string, error) {
	args := []string{"package", chartDir, "--destination", destDir}

	a.logger.Info("running helm package", "chartDir", chartDir, "destination", destDir)
	res, err := a.runner.Run(ctx, execx.Command{Name: a.helmBin, Args: args})
	if err != nil {
		return "", fmt.Errorf("helm package failed: %w", err)
	}

	archive := ""
	if m := packagedPathRe.FindSubmatch(res.Stdout); m != nil {
		archive = strings.TrimSpace(string(m[1]))
	}
	a.logger.Info("chart packaged", "archive", archive)
	return archive, nil
}

// Index runs `helm repo index` on dir with baseURL as the chart URL prefix.
func (a *Adapter) Index(ctx context.Context, dir, baseURL string) error {
	args := []string{"repo", "index", dir, "--url", baseURL}

	a.logger.Info("running helm repo index", "dir", dir, "url", baseURL)
	if _, err := a.runner.Run(ctx, execx.Command{Name: a.helmBin, Args: args}); err != nil {
		return fmt.Errorf("helm repo index failed: %w", err)
	}
	return nil
}
