// Package github provides authenticated GitHub API clients.
package github

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNoCredentials is returned when neither a token nor App credentials are configured.
var ErrNoCredentials = errors.New("no GitHub credentials configured: set GITHUB_TOKEN or GITHUB_APP_ID, GITHUB_INSTALLATION_ID and GITHUB_PRIVATE_KEY")

// Credentials selects how the client authenticates. A token wins over App
// credentials when both are set.
type Credentials struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPEM  string
}

// NewClient creates a GitHub API client from whichever credentials are set.
func NewClient(creds Credentials) (*gogithub.Client, error) {
	switch {
	case creds.Token != "":
		return NewTokenClient(creds.Token), nil
	case creds.AppID != 0 && creds.InstallationID != 0 && creds.PrivateKeyPEM != "":
		return NewAppClient(creds.AppID, creds.InstallationID, creds.PrivateKeyPEM)
	default:
		return nil, ErrNoCredentials
	}
}

// NewAppClient creates a client authenticated as a GitHub App installation.
// The ghinstallation transport handles token renewal.
func NewAppClient(appID, installationID int64, privateKeyPEM string) (*gogithub.Client, error) {
	transport, err := ghinstallation.New(otelhttp.NewTransport(http.DefaultTransport), appID, installationID, []byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("creating github installation transport: %w", err)
	}
	return gogithub.NewClient(&http.Client{Transport: transport}), nil
}

// NewTokenClient creates a client authenticated with a personal or workflow token.
func NewTokenClient(token string) *gogithub.Client {
	hc := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	return gogithub.NewClient(hc).WithAuthToken(token)
}
