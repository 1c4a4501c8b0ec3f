package netcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adt-dummy/dami/internal/apperr"
)

// DefaultHTTPTimeout bounds HTTPRequest when no timeout is given.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPOptions describes one HTTP probe.
type HTTPOptions struct {
	Method  string
	URL     string
	Header  http.Header
	Timeout time.Duration
	// Data is sent verbatim as the request body.
	Data *string
	// JSON is a validated JSON document sent with Content-Type application/json.
	JSON json.RawMessage
}

// HTTPResult is the outcome of an HTTP probe.
type HTTPResult struct {
	StatusCode int
	Reason     string
	Body       string
	Duration   time.Duration
}

// StatusLine formats the result as "Status: CODE REASON (N ms)".
func (r *HTTPResult) StatusLine() string {
	return fmt.Sprintf("Status: %d %s (%d ms)", r.StatusCode, r.Reason, r.Duration.Milliseconds())
}

// IsError reports a 4xx or 5xx status.
func (r *HTTPResult) IsError() bool {
	return r.StatusCode >= 400
}

// BuildBody validates the mutually exclusive --data / --json payloads.
// Values are loaded from "@file" unless raw is set for them.
func BuildBody(data, jsonValue *string, dataRaw, jsonRaw bool) (*string, json.RawMessage, error) {
	if data != nil && jsonValue != nil {
		return nil, nil, apperr.New("Use either --data or --json, not both.")
	}

	var body *string
	if data != nil {
		v := *data
		if !dataRaw {
			loaded, err := LoadPayload(v)
			if err != nil {
				return nil, nil, err
			}
			v = loaded
		}
		body = &v
	}

	var doc json.RawMessage
	if jsonValue != nil {
		v := *jsonValue
		if !jsonRaw {
			loaded, err := LoadPayload(v)
			if err != nil {
				return nil, nil, err
			}
			v = loaded
		}
		var probe any
		if err := json.Unmarshal([]byte(v), &probe); err != nil {
			return nil, nil, apperr.Wrap(err, fmt.Sprintf("Invalid JSON body: %v", err))
		}
		doc = json.RawMessage(v)
	}
	return body, doc, nil
}

// HTTPRequest performs the probe and reads the full body.
func HTTPRequest(ctx context.Context, client *http.Client, opts HTTPOptions) (*HTTPResult, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	c := *client
	c.Timeout = timeout

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	switch {
	case opts.JSON != nil:
		body = bytes.NewReader(opts.JSON)
	case opts.Data != nil:
		body = strings.NewReader(*opts.Data)
	}

	req, err := http.NewRequestWithContext(ctx, method, opts.URL, body)
	if err != nil {
		return nil, apperr.Wrap(err, fmt.Sprintf("HTTP request failed: %v", err))
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.JSON != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, fmt.Sprintf("HTTP request failed: %v", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(err, fmt.Sprintf("HTTP request failed: %v", err))
	}

	return &HTTPResult{
		StatusCode: resp.StatusCode,
		Reason:     http.StatusText(resp.StatusCode),
		Body:       string(data),
		Duration:   time.Since(start),
	}, nil
}
