package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/cli/output"
	"github.com/adt-dummy/dami/internal/proc"
	"github.com/adt-dummy/dami/internal/query"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Ping bool
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check kubectl access locally or Trino configuration in the pod",
		Long: `Check kubectl access locally or Trino configuration in the pod.

Local mode validates kubectl context, namespace access, and pod discovery.
In the cluster it checks that the Trino connection settings are present and,
with --ping, runs SELECT 1.`,
		Example: `  dami doctor
  dami doctor --output-mode json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Ping, "ping", false, "Run SELECT 1 against Trino (in-cluster only)")

	return cmd
}

// DoctorItem is one reported fact.
type DoctorItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DoctorReport is the JSON output for the doctor command.
type DoctorReport struct {
	Mode  string       `json:"mode"`
	Items []DoctorItem `json:"items"`
	OK    bool         `json:"ok"`
	Error string       `json:"error,omitempty"`
}

func (d *DoctorReport) add(label, value string) {
	d.Items = append(d.Items, DoctorItem{Label: label, Value: value})
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cc := NewCommandContext(cmd)

	var report *DoctorReport
	var err error
	if cc.InCluster {
		report, err = doctorInCluster(cmd.Context(), cc, opts)
	} else {
		report, err = doctorLocal(cmd.Context(), cc)
	}
	report.OK = err == nil
	if err != nil {
		report.Error = err.Error()
	}

	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		if jerr := cc.Renderer.JSON(report); jerr != nil {
			return jerr
		}
		return err
	}

	renderDoctor(cc.Renderer, report)
	return err
}

func renderDoctor(r *output.Renderer, report *DoctorReport) {
	if r.IsTTY() {
		title := cases.Title(language.English).String(report.Mode + " diagnostics")
		r.Println(r.Styles().Header1.Render(title))
	}
	for _, item := range report.Items {
		r.Println(output.FormatKeyValue(item.Label, item.Value))
	}
}

// localProbes are the independent kubectl calls made by the local doctor.
type localProbes struct {
	context    string
	contextErr error
	pod        string
	podErr     error
	auth       string
	authErr    error
}

func doctorLocal(ctx context.Context, cc *CommandContext) (*DoctorReport, error) {
	cfg := cc.Cfg
	report := &DoctorReport{Mode: "local"}
	report.add("Mode", "local")

	kubectlPath, err := proc.WhichOrError(cc.Runner, cfg.KubectlBin)
	if err != nil {
		return report, err
	}
	report.add("kubectl", kubectlPath)

	client := cc.Kube()
	var p localProbes
	var g errgroup.Group
	g.Go(func() error {
		p.context, p.contextErr = client.CurrentContext(ctx)
		return p.contextErr
	})
	g.Go(func() error {
		p.pod, p.podErr = client.FindPod(ctx, cfg.Namespace, cfg.PodSelector, cfg.Pod, cfg.ExecTimeout())
		return p.podErr
	})
	g.Go(func() error {
		p.auth, p.authErr = client.CanExec(ctx, cfg.Namespace)
		return p.authErr
	})
	if err := g.Wait(); err != nil {
		cc.Logger.Debug("doctor probe failed", "error", err)
	}

	if p.contextErr != nil {
		return report, p.contextErr
	}
	report.add("Context", p.context)
	report.add("Namespace", cfg.Namespace)
	report.add("Pod selector", cfg.PodSelector)
	if cfg.Pod != "" {
		report.add("Pod override", cfg.Pod)
	}

	if p.podErr != nil {
		return report, p.podErr
	}
	report.add("Selected pod", p.pod)

	if p.authErr != nil {
		return report, p.authErr
	}
	if p.auth != "" {
		report.add("kubectl auth can-i create pods/exec", p.auth)
	}
	return report, nil
}

func doctorInCluster(ctx context.Context, cc *CommandContext, opts *DoctorOptions) (*DoctorReport, error) {
	report := &DoctorReport{Mode: "in-cluster"}
	report.add("Mode", "in-cluster")

	if missing := cc.Cfg.MissingTrinoSettings(); len(missing) > 0 {
		return report, apperr.New("Missing required environment variables: " + strings.Join(missing, ", "))
	}
	report.add("Trino environment", "ok")

	if !opts.Ping {
		return report, nil
	}
	if _, err := cc.QueryService().Run(ctx, query.Request{SQL: "SELECT 1", MaxRows: 1}); err != nil {
		return report, apperr.Wrap(err, "Trino connection failed: "+err.Error())
	}
	report.add("Trino connection", "ok")
	return report, nil
}
