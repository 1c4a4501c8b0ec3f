// Package netcheck implements the DNS, TCP and HTTP probes behind "dami net".
package netcheck

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/adt-dummy/dami/internal/apperr"
)

// DefaultTCPTimeout bounds TCPCheck when no timeout is given.
const DefaultTCPTimeout = 5 * time.Second

// Record is a resolved address.
type Record struct {
	Type    string
	Address string
}

func (r Record) String() string {
	return r.Type + "\t" + r.Address
}

// ParseHeaders turns "Key: Value" items into a header set. Later keys win.
func ParseHeaders(items []string) (http.Header, error) {
	headers := make(http.Header, len(items))
	for _, item := range items {
		key, value, ok := strings.Cut(item, ":")
		if !ok {
			return nil, apperr.Newf("Invalid header: %s. Use 'Key: Value'.", item)
		}
		headers.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return headers, nil
}

// ParseHostPort splits HOST:PORT or [IPv6]:PORT.
func ParseHostPort(target string) (string, int, error) {
	var host, portStr string
	if strings.HasPrefix(target, "[") && strings.Contains(target, "]") {
		var rest string
		host, rest, _ = strings.Cut(target, "]")
		host = strings.TrimLeft(host, "[")
		if !strings.HasPrefix(rest, ":") {
			return "", 0, apperr.New("Invalid target. Use HOST:PORT or [IPv6]:PORT")
		}
		portStr = rest[1:]
	} else {
		i := strings.LastIndex(target, ":")
		if i < 0 {
			return "", 0, apperr.New("Invalid target. Use HOST:PORT")
		}
		host, portStr = target[:i], target[i+1:]
	}

	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil {
		return "", 0, apperr.Wrap(err, "Port must be an integer")
	}
	return host, port, nil
}

// LoadPayload returns value, or the contents of the file named by "@path".
func LoadPayload(value string) (string, error) {
	path, ok := strings.CutPrefix(value, "@")
	if !ok {
		return value, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperr.Wrap(err, "File not found: "+path)
		}
		return "", apperr.Wrap(err, fmt.Sprintf("Failed to read file: %s", path))
	}
	return string(data), nil
}

// ResolveDNS looks up name and returns A and AAAA records in resolver order.
// Internationalized names are converted to their ASCII form first;
// IP literals are returned as-is.
func ResolveDNS(ctx context.Context, resolver *net.Resolver, name string) ([]Record, error) {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	ascii := name
	if net.ParseIP(name) == nil {
		var err error
		ascii, err = idna.Lookup.ToASCII(name)
		if err != nil {
			return nil, apperr.Wrap(err, fmt.Sprintf("DNS lookup failed for %s: %v", name, err))
		}
	}

	addrs, err := resolver.LookupIPAddr(ctx, ascii)
	if err != nil {
		return nil, apperr.Wrap(err, fmt.Sprintf("DNS lookup failed for %s: %v", name, err))
	}

	seen := make(map[string]bool, len(addrs))
	records := make([]Record, 0, len(addrs))
	for _, a := range addrs {
		addr := a.String()
		if seen[addr] {
			continue
		}
		seen[addr] = true
		if a.IP.To4() != nil {
			records = append(records, Record{Type: "A", Address: addr})
		} else {
			records = append(records, Record{Type: "AAAA", Address: addr})
		}
	}
	return records, nil
}

// TCPCheck opens and closes a TCP connection to host:port.
func TCPCheck(ctx context.Context, host string, port int, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTCPTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return apperr.Wrap(err, fmt.Sprintf("TCP connection failed to %s:%d: %v", host, port, err))
	}
	return conn.Close()
}
