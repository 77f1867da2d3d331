package ports

import (
	"context"

	"github.com/nathantilsley/chart-publish/internal/release/domain"
)

// RegistryPort abstracts listing image tags from a container registry.
type RegistryPort interface {
	ListTags(ctx context.Context, pageSize int) ([]domain.Tag, error)
}

// OperatorPort abstracts the interactive terminal: showing recent tags and
// asking for the version to release.
type OperatorPort interface {
	ShowTags(ctx context.Context, tags []string) error
	AskVersion(ctx context.Context) (string, error)
}

// ChartPort abstracts reading and rewriting the chart descriptor.
type ChartPort interface {
	// UpdateVersion sets version and appVersion in chartFile and writes it back.
	UpdateVersion(ctx context.Context, chartFile string, v domain.Version) (domain.ChartChange, error)
	// PreviewVersion computes the same change without writing anything.
	PreviewVersion(ctx context.Context, chartFile string, v domain.Version) (domain.ChartChange, error)
}

// RendererPort abstracts rendering the chart into a flat manifest file.
type RendererPort interface {
	RenderManifest(ctx context.Context, chartDir, releaseName, outPath string) error
}

// PackagerPort abstracts packaging the chart and updating the repository index.
type PackagerPort interface {
	Package(ctx context.Context, chartDir, destDir string) (archivePath string, err error)
	Index(ctx context.Context, dir, baseURL string) error
}

// VersionControlPort abstracts the git working tree the release is committed to.
type VersionControlPort interface {
	Stage(ctx context.Context, paths ...string) error
	HasStagedChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context) error
	PushTags(ctx context.Context) error
}

// ImagePort abstracts building and pushing the container image.
type ImagePort interface {
	Build(ctx context.Context, ref, contextDir string) error
	Push(ctx context.Context, ref string) error
}

// DocsPort abstracts publishing the documentation site.
type DocsPort interface {
	Deploy(ctx context.Context) error
}

// ReleasePort abstracts creating a hosted release for a pushed tag.
type ReleasePort interface {
	CreateRelease(ctx context.Context, v domain.Version) (url string, err error)
}

// DiffPort abstracts computing a human-readable diff between two documents.
type DiffPort interface {
	ComputeDiff(baseName, headName string, base, head []byte) string
}
