package config

import (
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"LOG_LEVEL", "OTEL_ENABLED", "CHART_DIR", "MANIFEST_PATH", "RELEASE_NAME",
	"PACKAGE_DIR", "INDEX_DIR", "CHART_REPO_URL", "REGISTRY_URL", "REGISTRY_PAGE_SIZE",
	"IMAGE_REPOSITORY", "IMAGE_CONTEXT", "TOOL_TIMEOUT", "HTTP_TIMEOUT", "GIT_REMOTE",
	"GITHUB_REF_NAME", "GITHUB_REF_TYPE", "GITHUB_REPOSITORY", "GITHUB_TOKEN",
	"GITHUB_APP_ID", "GITHUB_INSTALLATION_ID", "GITHUB_PRIVATE_KEY",
}

// clearEnv blanks every variable Load reads so the host environment (for
// example a GitHub Actions runner) cannot leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	want := Config{
		LogLevel:         "info",
		ChartDir:         "deploy/helm/wg-access-server",
		ManifestPath:     "deploy/k8s/quickstart.yaml",
		ReleaseName:      "quickstart",
		PackageDir:       "docs/charts",
		IndexDir:         "docs",
		ChartRepoURL:     "https://freie-netze.org/wg-access-server",
		RegistryURL:      "https://registry.hub.docker.com/v2/repositories/place1/wg-access-server/tags",
		RegistryPageSize: 10,
		ImageRepository:  "place1/wg-access-server",
		ImageContext:     ".",
		ToolTimeout:      5 * time.Minute,
		HTTPTimeout:      30 * time.Second,
	}
	if got != want {
		t.Errorf("Load() = %+v\nwant %+v", got, want)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	env := map[string]string{
		"LOG_LEVEL":              "debug",
		"OTEL_ENABLED":           "true",
		"CHART_DIR":              "charts/app",
		"MANIFEST_PATH":          "out/app.yaml",
		"RELEASE_NAME":           "demo",
		"PACKAGE_DIR":            "site/charts",
		"INDEX_DIR":              "site",
		"CHART_REPO_URL":         "https://charts.example.com",
		"REGISTRY_URL":           "http://localhost:5000/tags",
		"REGISTRY_PAGE_SIZE":     "25",
		"IMAGE_REPOSITORY":       "ghcr.io/example/app",
		"IMAGE_CONTEXT":          "build",
		"TOOL_TIMEOUT":           "90s",
		"HTTP_TIMEOUT":           "5s",
		"GIT_REMOTE":             "origin",
		"GITHUB_REF_NAME":        "v1.2.0",
		"GITHUB_REF_TYPE":        "tag",
		"GITHUB_REPOSITORY":      "example/app",
		"GITHUB_TOKEN":           "ghs_token",
		"GITHUB_APP_ID":          "123456",
		"GITHUB_INSTALLATION_ID": "789012",
		"GITHUB_PRIVATE_KEY":     "test-key",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	want := Config{
		LogLevel:             "debug",
		ChartDir:             "charts/app",
		ManifestPath:         "out/app.yaml",
		ReleaseName:          "demo",
		PackageDir:           "site/charts",
		IndexDir:             "site",
		ChartRepoURL:         "https://charts.example.com",
		RegistryURL:          "http://localhost:5000/tags",
		RegistryPageSize:     25,
		ImageRepository:      "ghcr.io/example/app",
		ImageContext:         "build",
		ToolTimeout:          90 * time.Second,
		HTTPTimeout:          5 * time.Second,
		GitRemote:            "origin",
		RefName:              "v1.2.0",
		RefType:              "tag",
		GitHubRepository:     "example/app",
		GitHubToken:          "ghs_token",
		GitHubAppID:          123456,
		GitHubInstallationID: 789012,
		GitHubPrivateKey:     "test-key",
		OTelEnabled:          true,
	}
	if got != want {
		t.Errorf("Load() = %+v\nwant %+v", got, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		errMsg string
	}{
		{name: "page size not a number", key: "REGISTRY_PAGE_SIZE", value: "ten", errMsg: "REGISTRY_PAGE_SIZE"},
		{name: "page size zero", key: "REGISTRY_PAGE_SIZE", value: "0", errMsg: "must be positive"},
		{name: "tool timeout unparseable", key: "TOOL_TIMEOUT", value: "5 minutes", errMsg: "TOOL_TIMEOUT"},
		{name: "http timeout negative", key: "HTTP_TIMEOUT", value: "-1s", errMsg: "must be positive"},
		{name: "app id not a number", key: "GITHUB_APP_ID", value: "abc", errMsg: "GITHUB_APP_ID"},
		{name: "installation id not a number", key: "GITHUB_INSTALLATION_ID", value: "1.5", errMsg: "GITHUB_INSTALLATION_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			if err == nil {
				t.Fatalf("Load() expected error containing %q, got nil", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Load() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestLoad_OTelFlagOnlyTrue(t *testing.T) {
	clearEnv(t)
	t.Setenv("OTEL_ENABLED", "1")

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.OTelEnabled {
		t.Error("OTEL_ENABLED=1 should not enable telemetry; only \"true\" does")
	}
}
