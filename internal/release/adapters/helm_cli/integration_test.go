package helmcli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nathantilsley/chart-publish/internal/platform/execx"
)

func TestIntegration_RenderPackageIndex(t *testing.T) {
	runner := execx.New(2*time.Minute, nil)
	a, err := New(runner, nil)
	if err != nil {
		t.Skipf("helm not on PATH, skipping integration test: %v", err)
	}

	ctx := context.Background()
	root := t.TempDir()
	chartDir := filepath.Join(root, "deploy", "helm", "demo")
	writeTestChart(t, chartDir)

	manifest := filepath.Join(root, "deploy", "k8s", "quickstart.yaml")
	if err := a.RenderManifest(ctx, chartDir, "quickstart", manifest); err != nil {
		t.Fatalf("RenderManifest: %v", err)
	}
	first, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	if !strings.Contains(string(first), "name: quickstart-demo") {
		t.Errorf("manifest does not use the release name:\n%s", first)
	}

	if err := a.RenderManifest(ctx, chartDir, "quickstart", manifest); err != nil {
		t.Fatalf("RenderManifest (second run): %v", err)
	}
	second, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("rendering is not deterministic")
	}

	pkgDir := filepath.Join(root, "docs", "charts")
	archive, err := a.Package(ctx, chartDir, pkgDir)
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if _, err := os.Stat(filepath.Join(pkgDir, "demo-1.2.0.tgz")); err != nil {
		t.Errorf("expected packaged archive (helm reported %q): %v", archive, err)
	}

	indexDir := filepath.Join(root, "docs")
	if err := a.Index(ctx, indexDir, "https://charts.example.com"); err != nil {
		t.Fatalf("Index: %v", err)
	}
	index, err := os.ReadFile(filepath.Join(indexDir, "index.yaml"))
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	if !strings.Contains(string(index), "https://charts.example.com/charts/demo-1.2.0.tgz") {
		t.Errorf("index does not reference the packaged chart:\n%s", index)
	}
}

func writeTestChart(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"Chart.yaml": "apiVersion: v2\nname: demo\nversion: 1.2.0\nappVersion: 1.2.0\n",
		"templates/configmap.yaml": `apiVersion: v1
kind: ConfigMap
metadata:
  name: {{ .Release.Name }}-{{ .Chart.Name }}
data:
  version: {{ .Chart.AppVersion | quote }}
`,
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}
