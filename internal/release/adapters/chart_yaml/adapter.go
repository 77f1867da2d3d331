// Package chartyaml rewrites the version fields of a Helm Chart.yaml in place.
package chartyaml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/chart-publish/api"
	"github.com/nathantilsley/chart-publish/internal/platform/fileio"
	"github.com/nathantilsley/chart-publish/internal/release/domain"
)

// ErrNotAMapping is returned when the chart document's root is not a mapping.
var ErrNotAMapping = errors.New("chart descriptor is not a mapping")

const (
	keyVersion    = "version"
	keyAppVersion = "appVersion"
)

// Adapter implements ports.ChartPort on top of a yaml.v3 node tree, keeping
// key order, comments and unknown keys intact.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new Chart.yaml adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Adapter{logger: logger}
}

// PreviewVersion returns the change UpdateVersion would make without writing it.
func (a *Adapter) PreviewVersion(ctx context.Context, chartFile string, v domain.Version) (domain.ChartChange, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChartChange{}, err
	}

	before, err := os.ReadFile(chartFile)
	if err != nil {
		return domain.ChartChange{}, fmt.Errorf("reading chart: %w", err)
	}

	after, err := SetVersion(before, v.String())
	if err != nil {
		return domain.ChartChange{}, fmt.Errorf("updating %s: %w", chartFile, err)
	}

	meta, err := decodeMetadata(after)
	if err != nil {
		return domain.ChartChange{}, err
	}

	return domain.ChartChange{
		Path:   chartFile,
		Name:   meta.Name,
		Before: before,
		After:  after,
	}, nil
}

// UpdateVersion sets version and appVersion to v and atomically replaces
// chartFile with the full new document.
func (a *Adapter) UpdateVersion(ctx context.Context, chartFile string, v domain.Version) (domain.ChartChange, error) {
	change, err := a.PreviewVersion(ctx, chartFile, v)
	if err != nil {
		return domain.ChartChange{}, err
	}

	if err := fileio.WriteFileAtomically(chartFile, change.After); err != nil {
		return domain.ChartChange{}, fmt.Errorf("writing chart: %w", err)
	}

	written, err := os.ReadFile(chartFile)
	if err != nil {
		return domain.ChartChange{}, fmt.Errorf("re-reading chart: %w", err)
	}
	meta, err := decodeMetadata(written)
	if err != nil {
		return domain.ChartChange{}, err
	}
	if meta.Version != v.String() || meta.AppVersion != v.String() {
		return domain.ChartChange{}, fmt.Errorf(
			"chart %s has version %q and appVersion %q after update, want %q",
			chartFile, meta.Version, meta.AppVersion, v,
		)
	}

	a.logger.Info("chart updated", "chart", meta.Name, "path", chartFile, "version", v.String())
	return change, nil
}

// SetVersion returns content with version and appVersion set to version.
// Missing keys are appended; every other node is kept verbatim. The output is
// always block style with two-space indentation.
func SetVersion(content []byte, version string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parsing chart: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNotAMapping
	}

	root := doc.Content[0]
	setScalar(root, keyVersion, version)
	setScalar(root, keyAppVersion, version)
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}
	return buf.Bytes(), nil
}

func setScalar(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		prev := mapping.Content[i+1]
		mapping.Content[i+1] = &yaml.Node{
			Kind:        yaml.ScalarNode,
			Tag:         "!!str",
			Value:       value,
			Style:       scalarStyle(prev, value),
			HeadComment: prev.HeadComment,
			LineComment: prev.LineComment,
			FootComment: prev.FootComment,
		}
		return
	}

	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: scalarStyle(nil, value)},
	)
}

// scalarStyle keeps an existing quoting style and otherwise quotes only values
// that a plain scalar would turn into a number or bool (e.g. 1.10).
func scalarStyle(prev *yaml.Node, value string) yaml.Style {
	if prev != nil && prev.Kind == yaml.ScalarNode {
		if q := prev.Style & (yaml.DoubleQuotedStyle | yaml.SingleQuotedStyle); q != 0 {
			return q
		}
	}
	if resolvesAsString(value) {
		return 0
	}
	return yaml.DoubleQuotedStyle
}

func resolvesAsString(value string) bool {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(value), &n); err != nil || len(n.Content) != 1 {
		return false
	}
	c := n.Content[0]
	return c.Kind == yaml.ScalarNode && c.ShortTag() == "!!str" && c.Value == value
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func decodeMetadata(content []byte) (api.ChartMetadata, error) {
	var meta api.ChartMetadata
	if err := yaml.Unmarshal(content, &meta); err != nil {
		return api.ChartMetadata{}, fmt.Errorf("decoding chart metadata: %w", err)
	}
	return meta, nil
}
