package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_TextOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("LOG_FORMAT", "")
	var buf bytes.Buffer

	log := New("info", &buf)
	log.Debug("hidden")
	log.With("stage", "Packaged").WithGroup("helm").Info("chart packaged", "archive", "docs/charts/x-1.0.0.tgz")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level:\n%s", out)
	}
	for _, want := range []string{"INFO ", "chart packaged", "stage=Packaged", "helm.archive=docs/charts/x-1.0.0.tgz"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("NO_COLOR set but output contains ANSI codes:\n%q", out)
	}
}

func TestNew_JSONOutput(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	var buf bytes.Buffer

	New("debug", &buf).Debug("resolved", "version", "1.2.0")

	if !strings.Contains(buf.String(), `"version":"1.2.0"`) {
		t.Errorf("expected JSON output, got:\n%s", buf.String())
	}
}

func TestNewWithAnnotations(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("LOG_FORMAT", "")

	tests := []struct {
		name string
		log  func(*slog.Logger)
		want string
	}{
		{
			name: "message only",
			log:  func(l *slog.Logger) { l.Error("release failed") },
			want: "::error::release failed\n",
		},
		{
			name: "error attribute wins",
			log: func(l *slog.Logger) {
				l.Error("release failed", "error", errors.New("aborting, workflow not triggered by tag event"))
			},
			want: "::error::aborting, workflow not triggered by tag event\n",
		},
		{
			name: "error attribute from With",
			log:  func(l *slog.Logger) { l.With("error", "boom").Error("release failed") },
			want: "::error::boom\n",
		},
		{
			name: "escaped",
			log:  func(l *slog.Logger) { l.Error("helm failed\nstderr: 100%\r") },
			want: "::error::helm failed%0Astderr: 100%25%0D\n",
		},
		{
			name: "non-error records are not annotated",
			log: func(l *slog.Logger) {
				l.Info("ok")
				l.Warn("nothing staged")
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs, annotations bytes.Buffer
			tt.log(NewWithAnnotations("info", &logs, &annotations))

			if got := annotations.String(); got != tt.want {
				t.Errorf("annotations = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewWithAnnotations_AnnotatesBelowLogLevel(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var logs, annotations bytes.Buffer

	// Level above error suppresses the log line but not the annotation.
	log := slog.New(&annotationHandler{
		next: &coloredTextHandler{w: &logs, level: slog.LevelError + 4, mu: &sync.Mutex{}},
		out:  &annotations,
		mu:   &sync.Mutex{},
	})
	log.Error("boom")

	if logs.Len() != 0 {
		t.Errorf("expected no log output, got %q", logs.String())
	}
	if annotations.String() != "::error::boom\n" {
		t.Errorf("annotations = %q", annotations.String())
	}
}

func TestEscapeData(t *testing.T) {
	if got := EscapeData("a%b\r\nc"); got != "a%25b%0D%0Ac" {
		t.Errorf("EscapeData() = %q", got)
	}
}
