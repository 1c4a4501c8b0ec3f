package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/adt-dummy/dami/internal/cli/config"
	"github.com/adt-dummy/dami/internal/proc/proctest"
)

const (
	podsJSON  = `{"items":[{"metadata":{"name":"toolbox-1"},"status":{"phase":"Running"}}]}`
	getPods   = "kubectl get pods -n adt-dynamic -l app.kubernetes.io/name=adt-dummy -o json"
	execInPod = "kubectl exec -n adt-dynamic toolbox-1 -- dami __remote "
)

// harness runs a single command with scripted collaborators.
type harness struct {
	runner *proctest.Runner
	cfg    *config.Config
	deps   *Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	runner := proctest.New()
	cfg := config.Default()
	config.SetCurrentConfig(cfg)
	t.Cleanup(func() { config.SetCurrentConfig(nil) })
	return &harness{runner: runner, cfg: cfg, deps: &Deps{Runner: runner}}
}

// withPod scripts kubectl discovery of toolbox-1.
func (h *harness) withPod() *harness {
	h.runner.WithPath("kubectl", "/usr/bin/kubectl").On(getPods, proctest.Response{Stdout: podsJSON})
	return h
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes cmd with args. When remote is set the command is mounted
// under the __remote group, as it is inside the pod.
func (h *harness) run(cmd *cobra.Command, stdin string, remote bool, args ...string) result {
	root := cmd
	if remote {
		root = &cobra.Command{Use: RemoteGroupName}
		root.AddCommand(cmd)
		args = append([]string{cmd.Name()}, args...)
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(WithDeps(context.Background(), h.deps))
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewQueryCommand(), "query [SQL]", []string{"file", "format", "output", "max-rows", "param", "allow-write", "stdin"}},
		{NewDoctorCommand(), "doctor", []string{"ping"}},
		{NewNetCommand(), "net", nil},
		{NewShellCommand(), "shell", nil},
		{NewPyCommand(), "py MODE [PATH] [-- ARGS...]", []string{"stdin"}},
		{NewLsCommand(), "ls", nil},
		{NewGoCommand(), "go TARGET", nil},
		{NewConfigCommand(), "config", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestHiddenFlags(t *testing.T) {
	assert.True(t, NewQueryCommand().Flags().Lookup("stdin").Hidden)
	assert.True(t, NewPyCommand().Flags().Lookup("stdin").Hidden)

	var http *cobra.Command
	for _, c := range NewNetCommand().Commands() {
		if c.Name() == "http" {
			http = c
		}
	}
	if assert.NotNil(t, http) {
		assert.True(t, http.Flags().Lookup("data-raw").Hidden)
		assert.True(t, http.Flags().Lookup("json-raw").Hidden)
	}
}

func TestNewCommandContext_InCluster(t *testing.T) {
	h := newHarness(t)

	cmd := &cobra.Command{Use: "probe"}
	var local, remote bool
	cmd.RunE = func(c *cobra.Command, _ []string) error {
		cc := NewCommandContext(c)
		if c.Parent() != nil {
			remote = cc.InCluster
		} else {
			local = cc.InCluster
		}
		return nil
	}

	assert.NoError(t, h.run(cmd, "", false).err)
	assert.False(t, local)

	cmd2 := &cobra.Command{Use: "probe", RunE: cmd.RunE}
	assert.NoError(t, h.run(cmd2, "", true).err)
	assert.True(t, remote)

	h.cfg.InCluster = true
	cmd3 := &cobra.Command{Use: "probe", RunE: cmd.RunE}
	assert.NoError(t, h.run(cmd3, "", false).err)
	assert.True(t, local)
}
