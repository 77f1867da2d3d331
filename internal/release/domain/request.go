package domain

import "path/filepath"

// Mode selects the release variant.
type Mode int

const (
	ModeInteractive Mode = iota // operator picks the version after seeing recent tags
	ModeCI                      // version comes from the tag push that triggered CI
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeCI:
		return "ci"
	default:
		return "unknown"
	}
}

// Request holds the per-run inputs of a release.
type Request struct {
	Mode    Mode
	Version string // preset version (interactive); prompted for when empty

	// CI reference inputs (GITHUB_REF_NAME / GITHUB_REF_TYPE).
	RefName string
	RefType string

	BuildImage    bool // docker build before the chart update, docker push at the end
	DeployDocs    bool // mkdocs gh-deploy after indexing
	CreateRelease bool // GitHub release for the tag after pushing
	DryRun        bool // preview the chart change; no mutation
}

// Layout is the fixed set of repository paths and URLs a release touches.
type Layout struct {
	ChartDir        string // e.g. deploy/helm/wg-access-server
	ManifestPath    string // e.g. deploy/k8s/quickstart.yaml
	ReleaseName     string // --name-template for helm template
	PackageDir      string // helm package --destination
	IndexDir        string // helm repo index directory
	ChartRepoURL    string // helm repo index --url
	ImageRepository string // e.g. place1/wg-access-server
	ImageContext    string // docker build context
}

// ChartFile is the path to Chart.yaml inside the chart directory.
func (l Layout) ChartFile() string {
	return filepath.Join(l.ChartDir, "Chart.yaml")
}

// IndexFile is the path of the chart repository index.
func (l Layout) IndexFile() string {
	return filepath.Join(l.IndexDir, "index.yaml")
}

// StagedPaths is the exact set of paths committed by a release. Nothing
// outside this set is ever staged.
func (l Layout) StagedPaths() []string {
	return []string{
		l.IndexFile(),
		l.PackageDir,
		l.ChartDir,
		filepath.Dir(l.ManifestPath),
	}
}

// CommitMessage returns the release commit message for mode.
func CommitMessage(mode Mode, v Version) string {
	if mode == ModeCI {
		return v.String() + " - Automated Helm & k8s update"
	}
	return v.String()
}

// ChartChange is the before/after content of a chart version update.
type ChartChange struct {
	Path   string
	Name   string // chart name from Chart.yaml
	Before []byte
	After  []byte
}
