package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/yndnr/statmesh/internal/infra/buildinfo"
	"github.com/yndnr/statmesh/internal/infra/tlsroots"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

const (
	unixScheme = "unix://"
	// unixBaseURL is the placeholder host used for requests over a socket.
	unixBaseURL = "http://unix"
)

// Options configures an HTTPClient.
type Options struct {
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string
	// Insecure skips server certificate verification.
	Insecure bool
	// Timeout bounds each request. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for server: host:port, an http(s) URL,
// or unix:///path/to/socket for the local admin socket.
func NewHTTPClient(server string, opts Options) (*HTTPClient, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if socket, ok := strings.CutPrefix(server, unixScheme); ok {
		if socket == "" {
			return nil, fmt.Errorf("invalid server address %q: missing socket path", server)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		}
		return &HTTPClient{
			baseURL: unixBaseURL,
			client:  &http.Client{Timeout: timeout, Transport: transport},
		}, nil
	}

	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", server, err)
	}

	if strings.HasPrefix(baseURL, "https://") {
		pool := tlsroots.NewPool()
		if opts.CAFile != "" {
			if err := pool.AddCertFile(opts.CAFile); err != nil {
				return nil, err
			}
		}
		transport.TLSClientConfig = pool.ClientConfig(opts.Insecure)
	}

	return &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and returns the body of a 2xx response.
func (c *HTTPClient) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + encodeQuery(query)
	}
	return c.do(ctx, http.MethodGet, target)
}

// Post performs a bodiless POST request and returns the body of a 2xx
// response.
func (c *HTTPClient) Post(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, c.baseURL+path)
}

func (c *HTTPClient) do(ctx context.Context, method, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "statmesh-cli/"+buildinfo.Version)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp, body)
	}
	return body, nil
}

// encodeQuery encodes values like url.Values.Encode but writes keys with
// an empty value as bare flags, the form the stats endpoint documents.
func encodeQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range query[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			if v != "" {
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
	}
	return b.String()
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	// Code is the X-Error-Code header, if the server sent one.
	Code string
	// Message is the server's explanation, taken from the JSON envelope
	// or the plain text body.
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server returned %d [%s]: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func newStatusError(resp *http.Response, body []byte) *StatusError {
	e := &StatusError{
		StatusCode: resp.StatusCode,
		Code:       resp.Header.Get("X-Error-Code"),
		Message:    strings.TrimSpace(string(body)),
	}

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
		e.Message = envelope.Message
		if e.Code == "" {
			e.Code = envelope.Code
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
