package dockerhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantilsley/chart-publish/internal/release/domain"
)

func newServer(t *testing.T, status int, body string) (*httptest.Server, *url.URL) {
	t.Helper()
	got := &url.URL{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = *r.URL
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestListTags(t *testing.T) {
	body := `{"count": 3, "next": null, "results": [
		{"name": "latest", "last_updated": "2023-05-02T10:00:00.123456Z"},
		{"name": "0.9.0", "last_updated": "2023-05-01T09:30:00Z"},
		{"name": "0.8.1", "last_updated": "2023-04-01T08:00:00.5+02:00"}
	]}`
	srv, req := newServer(t, http.StatusOK, body)
	a := New(srv.URL+"/v2/repositories/place1/wg-access-server/tags", 5*time.Second, nil)

	tags, err := a.ListTags(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, "/v2/repositories/place1/wg-access-server/tags", req.Path)
	assert.Equal(t, "10", req.Query().Get("page_size"))
	require.Len(t, tags, 3)
	assert.Equal(t, "latest", tags[0].Name)
	assert.Equal(t, time.Date(2023, 5, 2, 10, 0, 0, 123456000, time.UTC), tags[0].LastUpdated.UTC())
	assert.Equal(t, time.Date(2023, 4, 1, 6, 0, 0, 500000000, time.UTC), tags[2].LastUpdated.UTC())
}

func TestListTags_EmptyResults(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"results": []}`)
	a := New(srv.URL, 5*time.Second, nil)

	tags, err := a.ListTags(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestListTags_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantMsg: "unexpected status"},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"object not found"}`, wantMsg: "404"},
		{name: "malformed json", status: http.StatusOK, body: `{"results": [`, wantMsg: "decoding response"},
		{name: "missing results", status: http.StatusOK, body: `{"count": 0}`, wantMsg: "no results"},
		{name: "bad timestamp", status: http.StatusOK, body: `{"results": [{"name": "0.9.0", "last_updated": "yesterday"}]}`, wantMsg: "invalid last_updated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			a := New(srv.URL, 5*time.Second, nil)

			_, err := a.ListTags(context.Background(), 10)

			require.Error(t, err)
			var te *domain.TransportError
			require.True(t, errors.As(err, &te), "want TransportError, got %T", err)
			assert.Equal(t, srv.URL, te.Endpoint)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestListTags_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()
	a := New(endpoint, time.Second, nil)

	_, err := a.ListTags(context.Background(), 10)

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
}

func TestListTags_KeepsExistingQuery(t *testing.T) {
	srv, req := newServer(t, http.StatusOK, `{"results": []}`)
	a := New(srv.URL+"?ordering=last_updated", time.Second, nil)

	_, err := a.ListTags(context.Background(), 4)

	require.NoError(t, err)
	assert.True(t, strings.Contains(req.RawQuery, "ordering=last_updated"))
	assert.Equal(t, "4", req.Query().Get("page_size"))
}
