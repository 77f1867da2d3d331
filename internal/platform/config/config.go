// Package config provides application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	LogLevel string

	// Repository layout
	ChartDir     string // Chart directory (e.g., "deploy/helm/wg-access-server")
	ManifestPath string // Rendered quickstart manifest
	ReleaseName  string // helm --name-template
	PackageDir   string // helm package --destination
	IndexDir     string // helm repo index directory
	ChartRepoURL string // helm repo index --url

	// Registry and image
	RegistryURL      string
	RegistryPageSize int
	ImageRepository  string
	ImageContext     string

	ToolTimeout time.Duration // per external process
	HTTPTimeout time.Duration // per registry/GitHub request
	GitRemote   string        // empty pushes to the configured upstream

	// GitHub Actions inputs (ci mode)
	RefName string
	RefType string

	// GitHub release creation (optional)
	GitHubRepository     string
	GitHubToken          string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKey     string // PEM file contents

	// OpenTelemetry (optional)
	OTelEnabled bool // OTEL_ENABLED feature flag
}

// Load reads configuration from environment variables and applies defaults.
// Nothing is required; malformed numbers and durations are errors.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		ChartDir:     getEnvOrDefault("CHART_DIR", "deploy/helm/wg-access-server"),
		ManifestPath: getEnvOrDefault("MANIFEST_PATH", "deploy/k8s/quickstart.yaml"),
		ReleaseName:  getEnvOrDefault("RELEASE_NAME", "quickstart"),
		PackageDir:   getEnvOrDefault("PACKAGE_DIR", "docs/charts"),
		IndexDir:     getEnvOrDefault("INDEX_DIR", "docs"),
		ChartRepoURL: getEnvOrDefault("CHART_REPO_URL", "https://freie-netze.org/wg-access-server"),

		RegistryURL:     getEnvOrDefault("REGISTRY_URL", "https://registry.hub.docker.com/v2/repositories/place1/wg-access-server/tags"),
		ImageRepository: getEnvOrDefault("IMAGE_REPOSITORY", "place1/wg-access-server"),
		ImageContext:    getEnvOrDefault("IMAGE_CONTEXT", "."),
		GitRemote:       os.Getenv("GIT_REMOTE"),

		RefName: os.Getenv("GITHUB_REF_NAME"),
		RefType: os.Getenv("GITHUB_REF_TYPE"),
	}

	if err := loadLimits(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadGitHubConfig(&cfg); err != nil {
		return Config{}, err
	}
	loadOTelConfig(&cfg)

	return cfg, nil
}

func loadLimits(cfg *Config) error {
	var err error
	cfg.RegistryPageSize, err = parsePositiveIntOrDefault("REGISTRY_PAGE_SIZE", 10)
	if err != nil {
		return err
	}
	cfg.ToolTimeout, err = parseDurationOrDefault("TOOL_TIMEOUT", 5*time.Minute)
	if err != nil {
		return err
	}
	cfg.HTTPTimeout, err = parseDurationOrDefault("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return err
	}
	return nil
}

func loadGitHubConfig(cfg *Config) error {
	cfg.GitHubRepository = os.Getenv("GITHUB_REPOSITORY")
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	cfg.GitHubPrivateKey = os.Getenv("GITHUB_PRIVATE_KEY")

	var err error
	cfg.GitHubAppID, err = parseOptionalInt64("GITHUB_APP_ID")
	if err != nil {
		return err
	}
	cfg.GitHubInstallationID, err = parseOptionalInt64("GITHUB_INSTALLATION_ID")
	if err != nil {
		return err
	}
	return nil
}

func loadOTelConfig(cfg *Config) {
	cfg.OTelEnabled = os.Getenv("OTEL_ENABLED") == "true"
}

func getEnvOrDefault(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

func parseOptionalInt64(envKey string) (int64, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return id, nil
}

func parsePositiveIntOrDefault(envKey string, defaultValue int) (int, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", envKey, v)
	}
	return n, nil
}

func parseDurationOrDefault(envKey string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return defaultValue, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", envKey, v)
	}
	return dur, nil
}
