// Package kube locates toolbox pods and builds kubectl command lines.
package kube

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/proc"
)

// DefaultBin is the kubectl executable used when none is configured.
const DefaultBin = "kubectl"

// Client shells out to kubectl.
type Client struct {
	Runner  proc.Runner
	Bin     string
	Context string
}

// NewClient returns a Client; an empty bin falls back to DefaultBin.
func NewClient(runner proc.Runner, bin, kubeContext string) *Client {
	if bin == "" {
		bin = DefaultBin
	}
	return &Client{Runner: runner, Bin: bin, Context: kubeContext}
}

// BaseArgs returns the kubectl argv prefix, failing if kubectl is not in PATH.
func (c *Client) BaseArgs() ([]string, error) {
	if _, err := proc.WhichOrError(c.Runner, c.Bin); err != nil {
		return nil, err
	}
	args := []string{c.Bin}
	if c.Context != "" {
		args = append(args, "--context", c.Context)
	}
	return args, nil
}

// CurrentContext returns the configured context or asks kubectl for it.
func (c *Client) CurrentContext(ctx context.Context) (string, error) {
	if c.Context != "" {
		return c.Context, nil
	}
	res, err := c.run(ctx, 0, true, "config", "current-context")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// PodsJSON lists pods in namespace matching selector.
func (c *Client) PodsJSON(ctx context.Context, namespace, selector string, timeout time.Duration) (*PodList, error) {
	res, err := c.run(ctx, timeout, true, "get", "pods", "-n", namespace, "-l", selector, "-o", "json")
	if err != nil {
		return nil, err
	}
	var list PodList
	if err := decode(res.Stdout, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// PodJSON fetches a single pod by name.
func (c *Client) PodJSON(ctx context.Context, namespace, name string, timeout time.Duration) (*Pod, error) {
	res, err := c.run(ctx, timeout, true, "get", "pod", name, "-n", namespace, "-o", "json")
	if err != nil {
		return nil, err
	}
	var pod Pod
	if err := decode(res.Stdout, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

// FindPod resolves the pod to exec into. An explicit pod is verified to
// exist; otherwise one is selected from the pods matching selector.
func (c *Client) FindPod(ctx context.Context, namespace, selector, explicit string, timeout time.Duration) (string, error) {
	if explicit != "" {
		if _, err := c.PodJSON(ctx, namespace, explicit, timeout); err != nil {
			return "", err
		}
		return explicit, nil
	}
	list, err := c.PodsJSON(ctx, namespace, selector, timeout)
	if err != nil {
		return "", err
	}
	return SelectPod(list, "")
}

// CanExec reports kubectl's answer to "auth can-i create pods/exec".
func (c *Client) CanExec(ctx context.Context, namespace string) (string, error) {
	res, err := c.run(ctx, 0, false, "auth", "can-i", "create", "pods/exec", "-n", namespace)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ListPods runs "get pods" and returns kubectl's table output.
func (c *Client) ListPods(ctx context.Context, namespace string) (string, error) {
	res, err := c.run(ctx, 0, true, "get", "pods", "-n", namespace)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// ExecArgs builds the argv for running command inside pod.
func (c *Client) ExecArgs(namespace, pod string, command []string, tty, interactive bool) ([]string, error) {
	args, err := c.BaseArgs()
	if err != nil {
		return nil, err
	}
	args = append(args, "exec")
	if tty {
		args = append(args, "-t")
	}
	if interactive {
		args = append(args, "-i")
	}
	args = append(args, "-n", namespace, pod, "--")
	return append(args, command...), nil
}

func (c *Client) run(ctx context.Context, timeout time.Duration, check bool, args ...string) (*proc.Result, error) {
	base, err := c.BaseArgs()
	if err != nil {
		return nil, err
	}
	return c.Runner.Run(ctx, append(base, args...), proc.RunOptions{Timeout: timeout, Check: check})
}

func decode(out string, v any) error {
	if err := json.Unmarshal([]byte(out), v); err != nil {
		return apperr.Wrap(err, "Failed to parse kubectl JSON output")
	}
	return nil
}
