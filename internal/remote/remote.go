// Package remote proxies dami commands into the toolbox pod via kubectl exec.
package remote

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/kube"
	"github.com/adt-dummy/dami/internal/proc"
)

// Defaults for locating the toolbox pod.
const (
	DefaultNamespace   = "adt-dynamic"
	DefaultPodSelector = "app.kubernetes.io/name=adt-dummy"
	DefaultExecTimeout = 60 * time.Second
)

// Options controls a single proxied invocation.
type Options struct {
	// Stdin, when non-nil, is piped to the remote process (implies -i).
	Stdin *string
	// Timeout overrides Proxy.Timeout when positive.
	Timeout     time.Duration
	TTY         bool
	Interactive bool
	// Capture returns stdout instead of writing it to Proxy.Stdout.
	Capture bool
}

// Proxy runs commands inside the toolbox pod.
type Proxy struct {
	Kube      *kube.Client
	Runner    proc.Runner
	Namespace string
	Selector  string
	Pod       string
	Timeout   time.Duration
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
}

// Run executes args in the selected pod. It returns captured stdout when
// opts.Capture is set.
func (p *Proxy) Run(ctx context.Context, args []string, opts Options) (string, error) {
	timeout := p.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	pod, err := p.Kube.FindPod(ctx, p.namespace(), p.selector(), p.Pod, timeout)
	if err != nil {
		return "", err
	}

	cmd, err := p.Kube.ExecArgs(p.namespace(), pod, args, opts.TTY, opts.Interactive || opts.Stdin != nil)
	if err != nil {
		return "", err
	}

	p.logger().Debug("proxying to pod",
		slog.String("pod", pod),
		slog.String("namespace", p.namespace()),
		slog.String("cmd", strings.Join(args, " ")))

	if opts.Interactive {
		code, err := p.Runner.Interactive(ctx, cmd)
		if err != nil {
			return "", err
		}
		if code != 0 {
			return "", apperr.WithCode(code, "Remote shell exited with an error")
		}
		return "", nil
	}

	runOpts := proc.RunOptions{Timeout: timeout}
	if opts.Stdin != nil {
		runOpts.Stdin = *opts.Stdin
	}
	res, err := p.Runner.Run(ctx, cmd, runOpts)
	if err != nil {
		return "", err
	}

	if res.Stderr != "" && p.Stderr != nil {
		_, _ = io.WriteString(p.Stderr, res.Stderr)
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = "Remote command failed"
		}
		return "", apperr.WithCode(res.ExitCode, msg)
	}
	if opts.Capture {
		return res.Stdout, nil
	}
	if res.Stdout != "" && p.Stdout != nil {
		_, _ = io.WriteString(p.Stdout, res.Stdout)
	}
	return "", nil
}

func (p *Proxy) namespace() string {
	if p.Namespace == "" {
		return DefaultNamespace
	}
	return p.Namespace
}

func (p *Proxy) selector() string {
	if p.Selector == "" {
		return DefaultPodSelector
	}
	return p.Selector
}

func (p *Proxy) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
