// Package proctest provides a scripted proc.Runner for tests.
package proctest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/proc"
)

// Call records one invocation of the fake.
type Call struct {
	Args        []string
	Opts        proc.RunOptions
	Interactive bool
}

// Response is the scripted outcome for a command line.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Runner replays Responses keyed by the space-joined argv.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	prefixes  []string
	paths     map[string]string
	calls     []Call
}

// New returns an empty fake runner.
func New() *Runner {
	return &Runner{
		responses: make(map[string]Response),
		paths:     make(map[string]string),
	}
}

// On scripts the response for an exact command line.
func (r *Runner) On(cmdline string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[cmdline] = resp
	return r
}

// OnPrefix scripts the response for any command line starting with prefix.
func (r *Runner) OnPrefix(prefix string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[prefix] = resp
	r.prefixes = append(r.prefixes, prefix)
	return r
}

// WithPath makes LookPath resolve name.
func (r *Runner) WithPath(name, path string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[name] = path
	return r
}

// Calls returns the recorded invocations in order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CommandLines returns the recorded argv joined by spaces.
func (r *Runner) CommandLines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = strings.Join(c.Args, " ")
	}
	return out
}

// Run implements proc.Runner.
func (r *Runner) Run(_ context.Context, args []string, opts proc.RunOptions) (*proc.Result, error) {
	resp, err := r.record(Call{Args: args, Opts: opts})
	if err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	res := &proc.Result{Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode}
	if opts.Check && res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(res.Stdout)
		}
		if msg == "" {
			msg = "Command failed"
		}
		return res, apperr.WithCode(res.ExitCode, msg)
	}
	return res, nil
}

// Interactive implements proc.Runner.
func (r *Runner) Interactive(_ context.Context, args []string) (int, error) {
	resp, err := r.record(Call{Args: args, Interactive: true})
	if err != nil {
		return 0, err
	}
	return resp.ExitCode, resp.Err
}

// LookPath implements proc.Runner.
func (r *Runner) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.paths[name]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (r *Runner) record(c Call) (Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)

	line := strings.Join(c.Args, " ")
	if resp, ok := r.responses[line]; ok {
		return resp, nil
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(line, p) {
			return r.responses[p], nil
		}
	}
	return Response{}, fmt.Errorf("proctest: unexpected command %q", line)
}

var _ proc.Runner = (*Runner)(nil)
