// Package dockercli builds and pushes container images with the docker CLI.
package dockercli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nathantilsley/chart-publish/internal/platform/execx"
)

// Adapter implements ports.ImagePort.
type Adapter struct {
	runner    execx.Runner
	dockerBin string
	logger    *slog.Logger
}

// New creates a docker adapter, resolving the docker binary on PATH.
func New(runner execx.Runner, logger *slog.Logger) (*Adapter, error) {
	bin, err := execx.LookPath("docker")
	if err != nil {
		return nil, err
	}
	return NewWithBinary(runner, bin, logger), nil
}

// NewWithBinary creates a docker adapter for an already resolved binary.
func NewWithBinary(runner execx.Runner, dockerBin string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Adapter{runner: runner, dockerBin: dockerBin, logger: logger}
}

// Build runs `docker build -t <ref> <contextDir>`.
func (a *Adapter) Build(ctx context.Context, ref, contextDir string) error {
	a.logger.Info("building image", "ref", ref, "context", contextDir)
	if _, err := a.runner.Run(ctx, execx.Command{
		Name: a.dockerBin,
		Args: []string{"build", "-t", ref, contextDir},
	}); err != nil {
		return fmt.Errorf("docker build failed: %w", err)
	}
	return nil
}

// Push runs `docker push <ref>`.
func (a *Adapter) Push(ctx context.Context, ref string) error {
	a.logger.Info("pushing image", "ref", ref)
	if _, err := a.runner.Run(ctx, execx.Command{
		Name: a.dockerBin,
		Args: []string{"push", ref},
	}); err != nil {
		return fmt.Errorf("docker push failed: %w", err)
	}
	return nil
}
