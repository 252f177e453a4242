package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Request is an outgoing upload request.
type Request struct {
	Method string

	// Path is resolved against the transport's base URL.
	Path string

	// ContentType is the body-derived Content-Type, boundary included.
	ContentType string

	Body io.Reader

	// Size is the body length in bytes, or 0 when unknown.
	Size int64

	// FileName is the name of the file carried by Body.
	FileName string
}

// Response is the server's answer to a Request.
type Response struct {
	StatusCode int
	Status     string

	// URL is the final URL after redirects.
	URL string
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport sends upload requests.
//
// Implementations return an error only when no response was received.
// Non-2xx responses are returned as a Response.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// RoundTrip calls f(ctx, req).
func (f TransportFunc) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Middleware wraps a Transport.
type Middleware func(next Transport) Transport

// Chain wraps t with mws. The first middleware is the outermost.
func Chain(t Transport, mws ...Middleware) Transport {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			t = mws[i](t)
		}
	}
	return t
}

// HTTPTransport sends requests with net/http.
//
// Redirects are followed, so a 303 to the results page counts as success
// once the results page answers 2xx.
type HTTPTransport struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPTransport creates a transport resolving paths against baseURL.
// A nil client means http.DefaultClient.
func NewHTTPTransport(baseURL string, client *http.Client) (*HTTPTransport, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("upload: invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upload: base URL %q must be absolute", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{base: base, client: client}, nil
}

// BaseURL returns the URL request paths are resolved against.
func (t *HTTPTransport) BaseURL() string {
	return t.base.String()
}

// Resolve returns the absolute URL for path.
func (t *HTTPTransport) Resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("upload: invalid path %q: %w", path, err)
	}
	return t.base.ResolveReference(ref).String(), nil
}

// RoundTrip implements Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	target, err := t.Resolve(req.Path)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, req.Body)
	if err != nil {
		return nil, fmt.Errorf("upload: build request: %w", err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if httpReq.ContentLength == 0 && req.Size > 0 {
		httpReq.ContentLength = req.Size
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        finalURL,
	}, nil
}

func transportError(err error) error {
	if errors.Is(err, ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
