package telemetry

import (
	"context"
	"testing"

	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), Settings{Version: "v1.4.0", Command: "ci"})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if tel.Meter == nil || tel.Tracer == nil {
		t.Fatal("New() returned nil meter or tracer")
	}

	ctx, span := tel.Tracer.Start(context.Background(), "release.Packaged")
	span.End()
	if span.SpanContext().IsValid() {
		t.Error("noop tracer produced a recording span")
	}

	counter, err := tel.Meter.Int64Counter("release.steps")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}
	counter.Add(ctx, 1)

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
}

func TestNewResource(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     map[string]string
		absent   []string
	}{
		{
			name:     "version and command",
			settings: Settings{Version: "v1.4.0", Command: "release"},
			want: map[string]string{
				string(semconv.ServiceNameKey):    "chart-publish",
				string(semconv.ServiceVersionKey): "v1.4.0",
				"chart_publish.command":           "release",
			},
		},
		{
			name:     "name only",
			settings: Settings{},
			want:     map[string]string{string(semconv.ServiceNameKey): "chart-publish"},
			absent:   []string{string(semconv.ServiceVersionKey), "chart_publish.command"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newResource(context.Background(), tt.settings)
			if err != nil {
				t.Fatalf("newResource() unexpected error: %v", err)
			}
			got := map[string]string{}
			for _, kv := range res.Attributes() {
				got[string(kv.Key)] = kv.Value.Emit()
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("attribute %s = %q, want %q", k, got[k], v)
				}
			}
			for _, k := range tt.absent {
				if _, ok := got[k]; ok {
					t.Errorf("attribute %s should not be set", k)
				}
			}
		})
	}
}
