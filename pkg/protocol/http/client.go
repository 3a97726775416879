package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// StatusTransportFailure is the status reported when no HTTP status was
// obtained: bad URL, failed connect, failed send or failed header receive.
const StatusTransportFailure = 0

var errUnsupportedURL = errors.New("url does not support HTTP/HTTPS")

// Request is a single HTTP exchange. Header keys are sent as given.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response carries the result of Do. Status is StatusTransportFailure when the
// exchange failed before a status line was received.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

type Client struct {
	client    *http.Client
	transport *http.Transport
	config    ClientConfig
}

func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,

		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAliveTimeout,
		}).DialContext,
	}

	if config.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(config.ProxyURL)
	}

	if config.TLSConfig != nil {
		transport.TLSClientConfig = config.TLSConfig
	} else if config.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return &HTTPError{
					Type:      ErrorTypeHTTP,
					Operation: "redirect",
					URL:       req.URL.String(),
					Status:    http.StatusTooManyRequests,
					Err:       fmt.Errorf("too many redirects (max: %d)", config.MaxRedirects),
				}
			}
			return nil
		},
	}

	return &Client{
		client:    client,
		transport: transport,
		config:    *config,
	}
}

// Do performs one blocking exchange and reads the whole body. The returned
// Response is never nil. A non-nil error with Status == StatusTransportFailure
// means no status was obtained; 4xx and 5xx responses are not errors. Do never
// retries.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	resp := &Response{Status: StatusTransportFailure}

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	if !c.Supports(r.URL) {
		return resp, NewHTTPValidationError(method, r.URL, errUnsupportedURL)
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return resp, NewHTTPValidationError(method, r.URL, err)
	}

	c.applyHeaders(req, r.Headers)

	res, err := c.client.Do(req)
	if err != nil {
		return resp, requestError(method, r.URL, err)
	}
	defer res.Body.Close()

	resp.Status = res.StatusCode
	resp.Headers = res.Header

	b, err := io.ReadAll(res.Body)
	resp.Body = b
	if err != nil {
		return resp, NewHTTPNetworkError(method, r.URL, fmt.Errorf("failed to read body: %w", err))
	}

	return resp, nil
}

func (c *Client) applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range c.config.DefaultHeaders {
		req.Header.Set(k, v)
	}

	for k, v := range headers {
		req.Header.Del(k)
		req.Header[k] = []string{v}
	}
}

func (c *Client) Supports(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && parsed.Host != ""
}

func (c *Client) Cleanup() error {
	c.transport.CloseIdleConnections()
	return nil
}

// requestError maps a failed client.Do into an HTTPError.
func requestError(op, urlStr string, err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewHTTPTimeoutError(op, urlStr, err)
	}

	return NewHTTPNetworkError(op, urlStr, err)
}
