// Package linediff renders unified diffs for release previews.
package linediff

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const defaultContext = 3

// Adapter implements ports.DiffPort with a line-based unified diff.
type Adapter struct {
	context int
}

// New creates a line-based diff adapter showing three lines of context.
func New() *Adapter {
	return &Adapter{context: defaultContext}
}

// WithContext returns a copy of the adapter that shows n lines of context
// around each change.
func (a *Adapter) WithContext(n int) *Adapter {
	if n < 0 {
		n = 0
	}
	return &Adapter{context: n}
}

// ComputeDiff returns the unified diff from base to head, or an empty string
// when the two documents are identical.
func (a *Adapter) ComputeDiff(baseName, headName string, base, head []byte) string {
	if bytes.Equal(base, head) {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(base),
		B:        splitLines(head),
		FromFile: baseName,
		ToFile:   headName,
		Context:  a.context,
	})
	if err != nil {
		return fmt.Sprintf("error computing diff: %s", err)
	}
	return text
}

// splitLines splits doc into newline-terminated lines. A final line without
// a newline gets one so it does not run into the next diff line.
func splitLines(doc []byte) []string {
	if len(doc) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(doc), "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n"
	return lines
}
