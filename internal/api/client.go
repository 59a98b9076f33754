// Package api provides clients for the cloud directory and geo-IP lookup services.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"

	"github.com/Ch00k/cloud-compass/internal/logging"
)

const (
	defaultDirectoryURL = "https://api.aiven.io/v1/clouds"
	defaultGeoURL       = "https://ipapi.co/json/"
	defaultTimeout      = 10 * time.Second
	defaultVersion      = "dev"
)

// Client encapsulates the HTTP client for the directory and geo-IP services
type Client struct {
	httpClient   *http.Client
	directoryURL string
	geoURL       string
	version      string
	logLevel     logging.LogLevel
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithDirectoryURL sets a custom cloud directory URL
func WithDirectoryURL(url string) ClientOption {
	return func(c *Client) {
		c.directoryURL = url
	}
}

// WithGeoURL sets a custom geo-IP lookup URL
func WithGeoURL(url string) ClientOption {
	return func(c *Client) {
		c.geoURL = url
	}
}

// WithTimeout sets a custom timeout for HTTP requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithVersion sets the version string for the User-Agent header
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.version = version
	}
}

// WithLogLevel sets the log level for the client
func WithLogLevel(logLevel logging.LogLevel) ClientOption {
	return func(c *Client) {
		c.logLevel = logLevel
	}
}

// WithProxyConfig routes requests through the proxies in cfg instead of the ones
// taken from the environment
func WithProxyConfig(cfg *httpproxy.Config) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = newTransport(cfg)
	}
}

// NewClient creates a new API client with the given options
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: newTransport(httpproxy.FromEnvironment()),
		},
		directoryURL: defaultDirectoryURL,
		geoURL:       defaultGeoURL,
		version:      defaultVersion,
		logLevel:     logging.LogLevelError,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// newTransport clones the default transport and resolves proxies from cfg.
// HTTP_PROXY, HTTPS_PROXY and NO_PROXY are honoured.
func newTransport(cfg *httpproxy.Config) *http.Transport {
	proxyFunc := cfg.ProxyFunc()
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}
	return transport
}

// Error represents a structured error from the API client
type Error struct {
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("API error: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// isSuccessStatus reports whether a status code is in the 2xx range
func isSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// newRequest builds a GET request carrying the client's User-Agent
func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", fmt.Sprintf("cloud-compass/%s", c.version))
	req.Header.Set("Accept", "application/json")
	return req, nil
}
