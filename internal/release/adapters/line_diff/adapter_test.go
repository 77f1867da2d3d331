package linediff

import (
	"strings"
	"testing"
)

func TestComputeDiff_VersionBump(t *testing.T) {
	base := []byte("apiVersion: v2\nname: demo\nversion: 0.1.0\nappVersion: 0.1.0\n")
	head := []byte("apiVersion: v2\nname: demo\nversion: 1.2.0\nappVersion: 1.2.0\n")

	got := New().ComputeDiff("a/Chart.yaml", "b/Chart.yaml", base, head)

	for _, want := range []string{
		"--- a/Chart.yaml",
		"+++ b/Chart.yaml",
		"-version: 0.1.0",
		"+version: 1.2.0",
		"-appVersion: 0.1.0",
		"+appVersion: 1.2.0",
		" name: demo",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}
}

func TestComputeDiff_Identical(t *testing.T) {
	doc := []byte("version: 1.0.0\n")
	if got := New().ComputeDiff("a", "b", doc, doc); got != "" {
		t.Errorf("expected empty diff, got:\n%s", got)
	}
}

func TestComputeDiff_NoTrailingNewline(t *testing.T) {
	base := []byte("name: demo\nversion: 0.1.0")
	head := []byte("name: demo\nversion: 1.2.0\n")

	got := New().ComputeDiff("a", "b", base, head)

	if !strings.Contains(got, "-version: 0.1.0\n+version: 1.2.0\n") {
		t.Errorf("changed lines ran together:\n%s", got)
	}
}

func TestComputeDiff_Context(t *testing.T) {
	base := []byte("a\nb\nc\nd\nversion: 0.1.0\ne\n")
	head := []byte("a\nb\nc\nd\nversion: 1.2.0\ne\n")

	tests := []struct {
		name    string
		adapter *Adapter
		present []string
		absent  []string
	}{
		{
			name:    "default",
			adapter: New(),
			present: []string{" b\n", " c\n", " d\n", " e\n"},
			absent:  []string{" a\n"},
		},
		{
			name:    "none",
			adapter: New().WithContext(0),
			absent:  []string{" d\n", " e\n"},
		},
		{
			name:    "negative clamps to none",
			adapter: New().WithContext(-2),
			absent:  []string{" d\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.adapter.ComputeDiff("old/Chart.yaml", "new/Chart.yaml", base, head)
			if !strings.Contains(got, "+version: 1.2.0\n") {
				t.Fatalf("diff missing change:\n%s", got)
			}
			for _, want := range tt.present {
				if !strings.Contains(got, want) {
					t.Errorf("diff missing context %q:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(got, unwanted) {
					t.Errorf("diff has unexpected context %q:\n%s", unwanted, got)
				}
			}
		})
	}
}
