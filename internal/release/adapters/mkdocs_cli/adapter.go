// Package mkdocscli publishes the documentation site with mkdocs.
package mkdocscli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nathantilsley/chart-publish/internal/platform/execx"
)

// Adapter implements ports.DocsPort.
type Adapter struct {
	runner    execx.Runner
	mkdocsBin string
	logger    *slog.Logger
}

// New creates an mkdocs adapter, resolving the binary on PATH.
func New(runner execx.Runner, logger *slog.Logger) (*Adapter, error) {
	bin, err := execx.LookPath("mkdocs")
	if err != nil {
		return nil, err
	}
	return NewWithBinary(runner, bin, logger), nil
}

// NewWithBinary creates an mkdocs adapter for an already resolved binary.
func NewWithBinary(runner execx.Runner, mkdocsBin string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Adapter{runner: runner, mkdocsBin: mkdocsBin, logger: logger}
}

// Deploy runs `mkdocs gh-deploy`.
func (a *Adapter) Deploy(ctx context.Context) error {
	a.logger.Info("deploying docs")
	if _, err := a.runner.Run(ctx, execx.Command{Name: a.mkdocsBin, Args: []string{"gh-deploy"}}); err != nil {
		return fmt.Errorf("mkdocs gh-deploy failed: %w", err)
	}
	return nil
}
