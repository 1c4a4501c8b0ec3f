package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/netcheck"
	"github.com/adt-dummy/dami/internal/remote"
)

// NewNetCommand creates the net command group.
func NewNetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "net",
		Short: "Network diagnostics from inside the cluster",
		Long: `Run DNS, TCP and HTTP checks from the toolbox pod.

Outside the cluster every check is forwarded to the pod, so results reflect
the pod's network view.`,
	}

	cmd.AddCommand(newNetDNSCommand())
	cmd.AddCommand(newNetTCPCommand())
	cmd.AddCommand(newNetHTTPCommand())

	return cmd
}

func newNetDNSCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "dns NAME",
		Short:   "Resolve A and AAAA records",
		Example: "  dami net dns trino.adt-dynamic.svc",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			name := args[0]

			if !cc.InCluster {
				_, err := cc.RunRemote(cmd.Context(), []string{"net", "dns", name}, remote.Options{})
				return err
			}

			records, err := netcheck.ResolveDNS(cmd.Context(), cc.Resolver(), name)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return apperr.Newf("No DNS results for %s", name)
			}
			for _, r := range records {
				cc.Renderer.Println(r.String())
			}
			return nil
		},
	}
}

func newNetTCPCommand() *cobra.Command {
	var timeout int
	cmd := &cobra.Command{
		Use:     "tcp HOST:PORT",
		Short:   "Open a TCP connection",
		Example: "  dami net tcp trino.adt-dynamic.svc:443\n  dami net tcp [fd00::1]:5432",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			target := args[0]

			if !cc.InCluster {
				remoteArgs := []string{"net", "tcp", target}
				if cmd.Flags().Changed("timeout") {
					remoteArgs = append(remoteArgs, "--timeout", strconv.Itoa(timeout))
				}
				_, err := cc.RunRemote(cmd.Context(), remoteArgs, remote.Options{})
				return err
			}

			host, port, err := netcheck.ParseHostPort(target)
			if err != nil {
				return err
			}
			if err := netcheck.TCPCheck(cmd.Context(), host, port, time.Duration(timeout)*time.Second); err != nil {
				return err
			}
			cc.Renderer.Printf("TCP connection ok: %s:%d\n", host, port)
			return nil
		},
	}

	cmd.Flags().IntVar(&timeout, "timeout", int(netcheck.DefaultTCPTimeout/time.Second), "Connect timeout in seconds")

	return cmd
}

type netHTTPOptions struct {
	Method          string
	Headers         []string
	Timeout         int
	Data            string
	DataRaw         string
	JSON            string
	JSONRaw         string
	ShowBody        bool
	AllowHTTPErrors bool
}

func newNetHTTPCommand() *cobra.Command {
	opts := &netHTTPOptions{}
	cmd := &cobra.Command{
		Use:   "http URL",
		Short: "Send an HTTP request",
		Long: `Send an HTTP request and print the status line.

--data and --json accept a literal value or @path to read a file. Files are
read on the local machine before the request is forwarded to the pod.`,
		Example: `  dami net http https://trino.adt-dynamic.svc/v1/info
  dami net http https://api.example.com/items --method POST --json @item.json --show-body`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetHTTP(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Method, "method", "GET", "HTTP method")
	cmd.Flags().StringArrayVar(&opts.Headers, "header", nil, "Request header 'Key: Value' (repeatable)")
	cmd.Flags().IntVar(&opts.Timeout, "timeout", int(netcheck.DefaultHTTPTimeout/time.Second), "Request timeout in seconds")
	cmd.Flags().StringVar(&opts.Data, "data", "", "Request body, or @file")
	cmd.Flags().StringVar(&opts.DataRaw, "data-raw", "", "Request body used verbatim")
	cmd.Flags().StringVar(&opts.JSON, "json", "", "JSON request body, or @file")
	cmd.Flags().StringVar(&opts.JSONRaw, "json-raw", "", "JSON request body used verbatim")
	cmd.Flags().BoolVar(&opts.ShowBody, "show-body", false, "Print the response body")
	cmd.Flags().BoolVar(&opts.AllowHTTPErrors, "allow-http-errors", false, "Exit zero on 4xx and 5xx responses")
	_ = cmd.Flags().MarkHidden("data-raw")
	_ = cmd.Flags().MarkHidden("json-raw")

	return cmd
}

// optionalFlag returns a pointer to value when the flag was set.
func optionalFlag(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func runNetHTTP(cmd *cobra.Command, url string, opts *netHTTPOptions) error {
	cc := NewCommandContext(cmd)

	data := optionalFlag(cmd, "data", opts.Data)
	jsonValue := optionalFlag(cmd, "json", opts.JSON)
	dataRaw := optionalFlag(cmd, "data-raw", opts.DataRaw)
	jsonRaw := optionalFlag(cmd, "json-raw", opts.JSONRaw)

	if !cc.InCluster {
		return proxyNetHTTP(cmd, cc, url, opts, data, jsonValue)
	}

	isDataRaw, isJSONRaw := dataRaw != nil, jsonRaw != nil
	if isDataRaw {
		data = dataRaw
	}
	if isJSONRaw {
		jsonValue = jsonRaw
	}

	headers, err := netcheck.ParseHeaders(opts.Headers)
	if err != nil {
		return err
	}
	body, doc, err := netcheck.BuildBody(data, jsonValue, isDataRaw, isJSONRaw)
	if err != nil {
		return err
	}

	res, err := netcheck.HTTPRequest(cmd.Context(), cc.HTTPClient(), netcheck.HTTPOptions{
		Method:  opts.Method,
		URL:     url,
		Header:  headers,
		Timeout: time.Duration(opts.Timeout) * time.Second,
		Data:    body,
		JSON:    doc,
	})
	if err != nil {
		return err
	}

	cc.Renderer.Println(res.StatusLine())
	if opts.ShowBody {
		cc.Renderer.Println(res.Body)
	}
	if res.IsError() && !opts.AllowHTTPErrors {
		return apperr.Newf("HTTP request failed with status %d", res.StatusCode)
	}
	return nil
}

// proxyNetHTTP forwards the request, resolving @file payloads locally.
func proxyNetHTTP(cmd *cobra.Command, cc *CommandContext, url string, opts *netHTTPOptions, data, jsonValue *string) error {
	if data != nil && jsonValue != nil {
		return apperr.New("Use either --data or --json, not both.")
	}

	remoteArgs := []string{"net", "http", url, "--method", opts.Method, "--timeout", strconv.Itoa(opts.Timeout)}
	for _, h := range opts.Headers {
		remoteArgs = append(remoteArgs, "--header", h)
	}
	if data != nil {
		resolved, err := netcheck.LoadPayload(*data)
		if err != nil {
			return err
		}
		remoteArgs = append(remoteArgs, "--data-raw", resolved)
	}
	if jsonValue != nil {
		resolved, err := netcheck.LoadPayload(*jsonValue)
		if err != nil {
			return err
		}
		remoteArgs = append(remoteArgs, "--json-raw", resolved)
	}
	if opts.ShowBody {
		remoteArgs = append(remoteArgs, "--show-body")
	}
	if opts.AllowHTTPErrors {
		remoteArgs = append(remoteArgs, "--allow-http-errors")
	}

	_, err := cc.RunRemote(cmd.Context(), remoteArgs, remote.Options{})
	return err
}
