// Package networking provides shared HTTP client plumbing for calls to the
// external collaborators (identity provider, policy decision point).
package networking

import (
	"net/http"
	"time"
)

// HttpTimeout is the default timeout for outgoing HTTP requests. Every
// upstream call must complete within it; callers treat a timeout like any
// other transport failure (deny by default, never hang the request).
const HttpTimeout = 10 * time.Second

// HTTPClient is the interface for HTTP clients, satisfied by *http.Client.
// Components accept it so tests can substitute a recording client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HttpClientBuilder provides a fluent interface for building HTTP clients
type HttpClientBuilder struct {
	clientTimeout         time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
}

// NewHttpClientBuilder returns a new HttpClientBuilder
func NewHttpClientBuilder() *HttpClientBuilder {
	return &HttpClientBuilder{
		clientTimeout:         HttpTimeout,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 10 * time.Second,
	}
}

// WithTimeout sets the overall client timeout
func (b *HttpClientBuilder) WithTimeout(timeout time.Duration) *HttpClientBuilder {
	b.clientTimeout = timeout
	return b
}

// Build creates the configured HTTP client
func (b *HttpClientBuilder) Build() *http.Client {
	transport := &http.Transport{
		TLSHandshakeTimeout:   b.tlsHandshakeTimeout,
		ResponseHeaderTimeout: b.responseHeaderTimeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   b.clientTimeout,
	}
}
