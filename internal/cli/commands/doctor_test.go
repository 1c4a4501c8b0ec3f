package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adt-dummy/dami/internal/proc/proctest"
)

func TestDoctor_Local(t *testing.T) {
	h := newHarness(t).withPod()
	h.runner.
		On("kubectl config current-context", proctest.Response{Stdout: "kaas-prod\n"}).
		On("kubectl auth can-i create pods/exec -n adt-dynamic", proctest.Response{Stdout: "yes\n"})

	res := h.run(NewDoctorCommand(), "", false)
	require.NoError(t, res.err)

	want := "Mode: local\n" +
		"kubectl: /usr/bin/kubectl\n" +
		"Context: kaas-prod\n" +
		"Namespace: adt-dynamic\n" +
		"Pod selector: app.kubernetes.io/name=adt-dummy\n" +
		"Selected pod: toolbox-1\n" +
		"kubectl auth can-i create pods/exec: yes\n"
	assert.Equal(t, want, res.stdout)
}

func TestDoctor_LocalPodOverride(t *testing.T) {
	h := newHarness(t)
	h.cfg.Pod = "toolbox-9"
	h.runner.WithPath("kubectl", "/usr/bin/kubectl").
		On("kubectl config current-context", proctest.Response{Stdout: "dev\n"}).
		On("kubectl get pod toolbox-9 -n adt-dynamic -o json", proctest.Response{Stdout: `{"metadata":{"name":"toolbox-9"}}`}).
		On("kubectl auth can-i create pods/exec -n adt-dynamic", proctest.Response{Stdout: ""})

	res := h.run(NewDoctorCommand(), "", false)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Pod override: toolbox-9\n")
	assert.Contains(t, res.stdout, "Selected pod: toolbox-9\n")
	assert.NotContains(t, res.stdout, "auth can-i", "empty answers are not printed")
}

func TestDoctor_LocalFailures(t *testing.T) {
	t.Run("kubectl missing", func(t *testing.T) {
		h := newHarness(t)
		res := h.run(NewDoctorCommand(), "", false)
		require.Error(t, res.err)
		assert.Equal(t, "Required executable not found in PATH: kubectl", res.err.Error())
		assert.Equal(t, "Mode: local\n", res.stdout)
	})

	t.Run("no pods", func(t *testing.T) {
		h := newHarness(t)
		h.runner.WithPath("kubectl", "/usr/bin/kubectl").
			On("kubectl config current-context", proctest.Response{Stdout: "dev\n"}).
			On(getPods, proctest.Response{Stdout: `{"items":[]}`}).
			On("kubectl auth can-i create pods/exec -n adt-dynamic", proctest.Response{Stdout: "yes\n"})

		res := h.run(NewDoctorCommand(), "", false)
		require.Error(t, res.err)
		assert.Equal(t, "No pods found for selector", res.err.Error())
		assert.Contains(t, res.stdout, "Pod selector: ")
		assert.NotContains(t, res.stdout, "Selected pod")
	})
}

func TestDoctor_JSON(t *testing.T) {
	h := newHarness(t).withPod()
	h.cfg.OutputFormat = "json"
	h.runner.
		On("kubectl config current-context", proctest.Response{Stdout: "kaas-prod\n"}).
		On("kubectl auth can-i create pods/exec -n adt-dynamic", proctest.Response{Stdout: "yes\n"})

	res := h.run(NewDoctorCommand(), "", false)
	require.NoError(t, res.err)

	var report DoctorReport
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.Equal(t, "local", report.Mode)
	assert.True(t, report.OK)
	assert.Contains(t, report.Items, DoctorItem{Label: "Selected pod", Value: "toolbox-1"})
}

func TestDoctor_InCluster(t *testing.T) {
	t.Run("missing settings", func(t *testing.T) {
		h := newHarness(t)
		res := h.run(NewDoctorCommand(), "", true)
		require.Error(t, res.err)
		assert.Equal(t, "Missing required environment variables: ADT_DUMMY_TRINO_HOST, ADT_DUMMY_TRINO_USER, ADT_DUMMY_TRINO_PASSWORD", res.err.Error())
		assert.Equal(t, "Mode: in-cluster\n", res.stdout)
	})

	t.Run("configured", func(t *testing.T) {
		h := newHarness(t)
		h.cfg.Trino.Host = "trino"
		h.cfg.Trino.User = "svc"
		h.cfg.Trino.Password = "secret"

		res := h.run(NewDoctorCommand(), "", true)
		require.NoError(t, res.err)
		assert.Equal(t, "Mode: in-cluster\nTrino environment: ok\n", res.stdout)
	})

	t.Run("ping local backend", func(t *testing.T) {
		h := newHarness(t).useSQLite()
		res := h.run(NewDoctorCommand(), "", true, "--ping")
		require.NoError(t, res.err)
		assert.Equal(t, "Mode: in-cluster\nTrino environment: ok\nTrino connection: ok\n", res.stdout)
	})
}
