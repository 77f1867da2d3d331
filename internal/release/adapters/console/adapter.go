// Package console implements the operator prompt on a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when the input stream ends before a version is entered.
var ErrNoInput = errors.New("no version entered")

// Adapter implements ports.OperatorPort over a reader/writer pair.
type Adapter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a console adapter reading answers from in and writing to out.
func New(in io.Reader, out io.Writer) *Adapter {
	return &Adapter{in: bufio.NewReader(in), out: out}
}

// ShowTags prints the recent registry tags.
func (a *Adapter) ShowTags(_ context.Context, tags []string) error {
	_, err := fmt.Fprintf(a.out, "current docker tags: [%s]\n", strings.Join(tags, ", "))
	return err
}

// AskVersion prompts for the version and returns the trimmed answer. An empty
// answer is returned as-is; validation belongs to the caller.
func (a *Adapter) AskVersion(ctx context.Context) (string, error) {
	if _, err := fmt.Fprint(a.out, "Version: "); err != nil {
		return "", err
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := a.in.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case ans := <-ch:
		if ans.err != nil {
			if !errors.Is(ans.err, io.EOF) {
				return "", fmt.Errorf("reading version: %w", ans.err)
			}
			if ans.line == "" {
				return "", ErrNoInput
			}
		}
		return strings.TrimSpace(ans.line), nil
	}
}
