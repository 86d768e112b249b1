package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"sync"
	"time"
)

const (
	defaultBufferSize = 4096
	maxBufferSize     = 1024 * 1024
	defaultTimeout    = 30 * time.Second
)

// Client is a pooled HTTP client. Request bodies given as []byte or
// io.Reader are sent verbatim; any other value is encoded as JSON.
type Client struct {
	client         *http.Client
	requestOptPool sync.Pool
	bufferPool     sync.Pool
}

// Option configures the HTTP client
type Option func(*Client)

// WithClient sets a custom HTTP client
func WithClient(client *http.Client) Option {
	return func(h *Client) {
		h.client = client
	}
}

// WithTimeout bounds each request including reading the response body
func WithTimeout(timeout time.Duration) Option {
	return func(h *Client) {
		h.client.Timeout = timeout
	}
}

// WithTransport sets the round tripper shared by all requests
func WithTransport(rt http.RoundTripper) Option {
	return func(h *Client) {
		h.client.Transport = rt
	}
}

// New creates an HTTP client with pooled request options and buffers
func New(opts ...Option) *Client {
	h := &Client{
		client: &http.Client{Timeout: defaultTimeout},
		requestOptPool: sync.Pool{
			New: func() any {
				return &RequestOption{
					header: make(map[string]string, 8),
				}
			},
		},
		bufferPool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
			},
		},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// RequestOption holds options for individual HTTP requests
type RequestOption struct {
	ctx      context.Context
	header   map[string]string
	response any
}

// WithContext sets the request context
func WithContext(ctx context.Context) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.ctx = ctx
	}
}

// WithHeader sets multiple headers for the request, overriding defaults
func WithHeader(header map[string]string) func(*RequestOption) {
	return func(opt *RequestOption) {
		maps.Copy(opt.header, header)
	}
}

// WithResponse decodes a JSON response body into response and closes it
func WithResponse(response any) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.response = response
	}
}

func (opt *RequestOption) reset() {
	opt.ctx = nil
	clear(opt.header)
	opt.header["Content-Type"] = ContentTypeJSON
	opt.response = nil
}

// Request sends an HTTP request with the specified method, URL, and body
func (cli *Client) Request(method, url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	opt := cli.getRequestOption()
	defer cli.putRequestOption(opt)

	for _, o := range opts {
		o(opt)
	}

	ctx := opt.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := cli.createRequest(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range opt.header {
		req.Header.Set(k, v)
	}

	resp, err := cli.client.Do(req)
	if err != nil {
		return nil, err
	}

	return cli.processResponse(resp, opt.response)
}

func (cli *Client) getRequestOption() *RequestOption {
	opt := cli.requestOptPool.Get().(*RequestOption)
	opt.reset()
	return opt
}

func (cli *Client) putRequestOption(opt *RequestOption) {
	cli.requestOptPool.Put(opt)
}

func (cli *Client) createRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	switch v := body.(type) {
	case nil:
		return http.NewRequestWithContext(ctx, method, url, nil)
	case []byte:
		return http.NewRequestWithContext(ctx, method, url, bytes.NewReader(v))
	case io.Reader:
		return http.NewRequestWithContext(ctx, method, url, v)
	default:
		return cli.createJSONRequest(ctx, method, url, v)
	}
}

func (cli *Client) createJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	buf := cli.getBuffer()
	defer cli.putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return nil, err
	}

	// the pooled buffer is reused after return, so the request owns a copy
	return http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bytes.Clone(buf.Bytes())))
}

func (cli *Client) getBuffer() *bytes.Buffer {
	buf := cli.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer drops oversized buffers instead of pooling them
func (cli *Client) putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxBufferSize {
		cli.bufferPool.Put(buf)
	}
}

func (cli *Client) processResponse(resp *http.Response, dest any) (*http.Response, error) {
	if dest == nil {
		return resp, nil
	}

	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return nil, err
	}

	return resp, nil
}

// Get performs a GET request
func (cli *Client) Get(url string, opts ...func(*RequestOption)) (*http.Response, error) {
	return cli.Request(MethodGet, url, nil, opts...)
}

// Post performs a POST request
func (cli *Client) Post(url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return cli.Request(MethodPost, url, body, opts...)
}

// Delete performs a DELETE request
func (cli *Client) Delete(url string, opts ...func(*RequestOption)) (*http.Response, error) {
	return cli.Request(MethodDelete, url, nil, opts...)
}
