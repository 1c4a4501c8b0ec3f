package commands

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/cli/config"
	"github.com/adt-dummy/dami/internal/cli/output"
	"github.com/adt-dummy/dami/internal/kube"
	"github.com/adt-dummy/dami/internal/proc"
	"github.com/adt-dummy/dami/internal/query"
	"github.com/adt-dummy/dami/internal/remote"
	"github.com/adt-dummy/dami/pkg/sqlguard"
)

// RemoteGroupName is the hidden command group executed inside the pod.
const RemoteGroupName = "__remote"

// Deps are the external collaborators commands talk to. Zero fields fall
// back to the real implementations.
type Deps struct {
	Runner     proc.Runner
	Resolver   *net.Resolver
	HTTPClient *http.Client
	// Open overrides the adapter configured in the trino block.
	Open query.OpenFunc
	// ShellPath overrides the in-cluster shell lookup.
	ShellPath string
}

type depsKey struct{}

// WithDeps stores deps in ctx for NewCommandContext.
func WithDeps(ctx context.Context, d *Deps) context.Context {
	return context.WithValue(ctx, depsKey{}, d)
}

func depsFrom(ctx context.Context) *Deps {
	if ctx != nil {
		if d, ok := ctx.Value(depsKey{}).(*Deps); ok && d != nil {
			return d
		}
	}
	return &Deps{}
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Runner   proc.Runner
	Deps     *Deps

	// InCluster is true when running in the pod or under the __remote group.
	InCluster bool
}

// NewCommandContext builds the CommandContext for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	deps := depsFrom(cmd.Context())

	runner := deps.Runner
	if runner == nil {
		er := proc.NewExecRunner(logger)
		er.Stdin = cmd.InOrStdin()
		er.Stdout = cmd.OutOrStdout()
		er.Stderr = cmd.ErrOrStderr()
		runner = er
	}

	mode := output.Mode(cfg.OutputFormat)
	return &CommandContext{
		Cfg:       cfg,
		Logger:    logger,
		Renderer:  output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
		Runner:    runner,
		Deps:      deps,
		InCluster: cfg.InCluster || isRemoteInvocation(cmd),
	}
}

// getConfig returns the loaded configuration or the defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func isRemoteInvocation(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == RemoteGroupName {
			return true
		}
	}
	return false
}

// Kube returns a kubectl client for the configured binary and context.
func (c *CommandContext) Kube() *kube.Client {
	return kube.NewClient(c.Runner, c.Cfg.KubectlBin, c.Cfg.KubectlContext)
}

// Proxy returns a Proxy that forwards to the toolbox pod.
func (c *CommandContext) Proxy() *remote.Proxy {
	return &remote.Proxy{
		Kube:      c.Kube(),
		Runner:    c.Runner,
		Namespace: c.Cfg.Namespace,
		Selector:  c.Cfg.PodSelector,
		Pod:       c.Cfg.Pod,
		Timeout:   c.Cfg.ExecTimeout(),
		Stdout:    c.Renderer.Writer(),
		Stderr:    c.Renderer.ErrWriter(),
		Logger:    c.Logger,
	}
}

// RunRemote runs "dami __remote <args>" in the toolbox pod.
func (c *CommandContext) RunRemote(ctx context.Context, args []string, opts remote.Options) (string, error) {
	full := append([]string{"dami", RemoteGroupName}, args...)
	return c.Proxy().Run(ctx, full, opts)
}

// QueryService returns the query service bound to the configured backend.
func (c *CommandContext) QueryService() *query.Service {
	open := c.Deps.Open
	if open == nil {
		open = query.OpenAdapter(c.Cfg.AdapterConfig(), c.Logger)
	}
	return query.NewService(sqlguard.NewGuard(nil), open, c.Logger)
}

// Resolver returns the DNS resolver.
func (c *CommandContext) Resolver() *net.Resolver {
	if c.Deps.Resolver != nil {
		return c.Deps.Resolver
	}
	return net.DefaultResolver
}

// HTTPClient returns the client used by "net http".
func (c *CommandContext) HTTPClient() *http.Client {
	if c.Deps.HTTPClient != nil {
		return c.Deps.HTTPClient
	}
	return &http.Client{}
}
