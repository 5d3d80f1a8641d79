// Package net provides the HTTP exchange layer used by the ACME client.
// It performs GET/POST requests and surfaces every transport level failure
// as a *TransportError; it performs no semantic validation of responses.
package net

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime"
)

const (
	version       = "0.2.0"
	userAgentBase = "dmfigol.certbot"
	locale        = "en-us"
)

// ACMENet makes HTTP requests to an ACME server. TLS trust configuration
// happens once here, at construction time, by the composing application.
type ACMENet struct {
	httpClient *http.Client
}

// New creates an ACMENet. If customCABundle is not empty it must be a path
// to one or more PEM encoded CA certificates that will be the only trust
// roots for HTTPS requests; otherwise the system roots are used.
func New(customCABundle string) (*ACMENet, error) {
	var caBundle *x509.CertPool
	if customCABundle != "" {
		pemBundle, err := os.ReadFile(customCABundle)
		if err != nil {
			return nil, err
		}

		caBundle = x509.NewCertPool()
		if !caBundle.AppendCertsFromPEM(pemBundle) {
			return nil, fmt.Errorf("no CA certificates found in %q", customCABundle)
		}
	}

	return &ACMENet{
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					RootCAs: caBundle,
				},
			},
		},
	}, nil
}

// NetResponse holds the results from calling Do with an HTTP Request.
type NetResponse struct {
	// The HTTP Response object from making the request.
	Response *http.Response
	// The response body.
	RespBody []byte
	// The response dumped by httputil to a printable form.
	RespDump []byte
	// The request dumped by httputil to a printable form.
	ReqDump []byte
}

// TransportError wraps a connection, timeout, TLS or DNS failure, or
// a response whose transport characteristics made it unusable (unparseable
// body, unexpected content type with no compensating structured body,
// missing required link). The Response field carries the raw response when
// one was received, and is nil for pure connectivity failures.
type TransportError struct {
	Response *NetResponse
	Err      error
}

func (e *TransportError) Error() string {
	if e.Response != nil && e.Response.Response != nil && e.Err != nil {
		return fmt.Sprintf("transport error (HTTP %d): %s",
			e.Response.Response.StatusCode, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s", e.Err)
	}
	return "transport error"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError builds a TransportError from an optional raw response
// and an underlying error.
func NewTransportError(resp *NetResponse, err error) *TransportError {
	return &TransportError{Response: resp, Err: err}
}

// Do performs an HTTP request, returning a pointer to a NetResponse
// instance or a *TransportError. User-Agent and Accept-Language headers are
// automatically added to the request. The body of the HTTP response is read
// into the NetResponse and can not be read again.
func (c *ACMENet) Do(req *http.Request) (*NetResponse, error) {
	ua := fmt.Sprintf("%s %s (%s; %s)",
		userAgentBase, version, runtime.GOOS, runtime.GOARCH)
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept-Language", locale)

	reqDump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return nil, NewTransportError(nil, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError(nil, err)
	}
	defer resp.Body.Close()

	respDump, err := httputil.DumpResponse(resp, false)
	if err != nil {
		return nil, NewTransportError(nil, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(nil, err)
	}

	return &NetResponse{
		Response: resp,
		RespBody: respBody,
		RespDump: respDump,
		ReqDump:  reqDump,
	}, nil
}

// GetRequest constructs a GET request to the given URL bound to ctx.
func (c *ACMENet) GetRequest(ctx context.Context, url string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
}

// GetURL is a convenience wrapper combining GetRequest and Do.
func (c *ACMENet) GetURL(ctx context.Context, url string) (*NetResponse, error) {
	req, err := c.GetRequest(ctx, url)
	if err != nil {
		return nil, NewTransportError(nil, err)
	}
	return c.Do(req)
}

// PostRequest constructs a POST request to the given URL with the given
// body. The body is expected to be a serialized JWS envelope.
func (c *ACMENet) PostRequest(ctx context.Context, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/jose+json")
	return req, nil
}

// PostURL is a convenience wrapper combining PostRequest and Do.
func (c *ACMENet) PostURL(ctx context.Context, url string, body []byte) (*NetResponse, error) {
	req, err := c.PostRequest(ctx, url, body)
	if err != nil {
		return nil, NewTransportError(nil, err)
	}
	return c.Do(req)
}
