// Package exectest provides a scripted execx.Runner for tests.
package exectest

import (
	"context"
	"fmt"

	"github.com/nathantilsley/chart-publish/internal/platform/execx"
)

// Response is the scripted outcome of a command.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Fake records every command and answers from Responses. Lookup tries the
// full command line, then "name firstArg", then "name". Unscripted commands
// succeed with no output.
type Fake struct {
	Responses map[string]Response
	Calls     []execx.Command
}

// Run implements execx.Runner.
func (f *Fake) Run(ctx context.Context, c execx.Command) (execx.Result, error) {
	f.Calls = append(f.Calls, c)
	if err := ctx.Err(); err != nil {
		return execx.Result{ExitCode: -1}, &execx.ToolError{Command: c.String(), ExitCode: -1, Err: err}
	}

	r := f.lookup(c)
	res := execx.Result{
		Stdout:   []byte(r.Stdout),
		Stderr:   []byte(r.Stderr),
		ExitCode: r.ExitCode,
	}
	if r.ExitCode != 0 {
		return res, &execx.ToolError{
			Command:  c.String(),
			ExitCode: r.ExitCode,
			Stdout:   r.Stdout,
			Stderr:   r.Stderr,
			Err:      fmt.Errorf("exit status %d", r.ExitCode),
		}
	}
	return res, nil
}

// CommandLines returns the recorded commands as strings.
func (f *Fake) CommandLines() []string {
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c.String())
	}
	return out
}

func (f *Fake) lookup(c execx.Command) Response {
	if f.Responses == nil {
		return Response{}
	}
	if r, ok := f.Responses[c.String()]; ok {
		return r
	}
	if len(c.Args) > 0 {
		if r, ok := f.Responses[c.Name+" "+c.Args[0]]; ok {
			return r
		}
	}
	return f.Responses[c.Name]
}
