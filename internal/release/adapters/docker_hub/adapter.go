// Package dockerhub lists image tags from the Docker Hub repositories API.
package dockerhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nathantilsley/chart-publish/internal/release/domain"
)

const maxErrorBody = 512

// tagPage is the subset of the Docker Hub tag listing the release needs.
type tagPage struct {
	Results []struct {
		Name        string `json:"name"`
		LastUpdated string `json:"last_updated"`
	} `json:"results"`
}

// Adapter implements ports.RegistryPort against a Docker Hub compatible
// tags endpoint.
type Adapter struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// New creates a registry adapter for endpoint. Requests are traced through
// otelhttp and bounded by timeout.
func New(endpoint string, timeout time.Duration, logger *slog.Logger) *Adapter {
	return NewWithClient(&http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}, endpoint, logger)
}

// NewWithClient creates a registry adapter that uses client as-is.
func NewWithClient(client *http.Client, endpoint string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Adapter{client: client, endpoint: endpoint, logger: logger}
}

// ListTags fetches one page of tags. Only the first page is read; the newest
// tags are expected within it.
func (a *Adapter) ListTags(ctx context.Context, pageSize int) ([]domain.Tag, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return nil, a.transportErr(fmt.Errorf("parsing endpoint: %w", err))
	}
	q := u.Query()
	q.Set("page_size", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, a.transportErr(err)
	}
	req.Header.Set("Accept", "application/json")

	a.logger.Info("listing registry tags", "url", u.String())
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, a.transportErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, a.transportErr(fmt.Errorf("unexpected status %s: %s", resp.Status, body))
	}

	var page tagPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, a.transportErr(fmt.Errorf("decoding response: %w", err))
	}
	if page.Results == nil {
		return nil, a.transportErr(errors.New("response has no results field"))
	}

	tags := make([]domain.Tag, 0, len(page.Results))
	for _, r := range page.Results {
		ts, err := time.Parse(time.RFC3339Nano, r.LastUpdated)
		if err != nil {
			return nil, a.transportErr(fmt.Errorf("tag %q: invalid last_updated %q: %w", r.Name, r.LastUpdated, err))
		}
		tags = append(tags, domain.Tag{Name: r.Name, LastUpdated: ts})
	}

	a.logger.Info("registry tags listed", "count", len(tags))
	return tags, nil
}

func (a *Adapter) transportErr(err error) error {
	return &domain.TransportError{Endpoint: a.endpoint, Err: err}
}
