package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Sink receives a streamed body. Begin is called once, after a 2xx status was
// received and before the first Write, with the declared Content-Length
// (0 when the server did not send one).
type Sink interface {
	Begin(contentLength int64) error
	io.Writer
}

// Stream GETs urlStr and copies the body into sink chunk by chunk. ctx is
// checked before every read; once it is done Stream returns ErrCanceled and
// whatever the sink already received stays there. The returned count is the
// number of bytes handed to the sink.
func (c *Client) Stream(ctx context.Context, urlStr string, headers map[string]string, sink Sink) (int64, error) {
	if ctx.Err() != nil {
		return 0, ErrCanceled
	}

	if !c.Supports(urlStr) {
		return 0, NewHTTPValidationError(http.MethodGet, urlStr, errUnsupportedURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return 0, NewHTTPValidationError(http.MethodGet, urlStr, err)
	}

	c.applyHeaders(req, headers)

	res, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ErrCanceled
		}
		return 0, requestError(http.MethodGet, urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return 0, NewHTTPStatusError(http.MethodGet, urlStr, res.StatusCode,
			fmt.Errorf("unexpected status %q", res.Status))
	}

	contentLength := res.ContentLength
	if contentLength < 0 {
		contentLength = 0
	}

	if err := sink.Begin(contentLength); err != nil {
		return 0, NewHTTPIOError("open", urlStr, err)
	}

	return c.copyChunks(ctx, urlStr, res.Body, sink)
}

func (c *Client) copyChunks(ctx context.Context, urlStr string, body io.Reader, sink io.Writer) (int64, error) {
	size := c.config.ChunkSize
	if size <= 0 {
		size = 32 * 1024
	}
	buf := make([]byte, size)

	var written int64
	for {
		if ctx.Err() != nil {
			return written, ErrCanceled
		}

		n, rerr := body.Read(buf)
		if n > 0 {
			wn, werr := sink.Write(buf[:n])
			written += int64(wn)
			if werr == nil && wn < n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, NewHTTPIOError("write", urlStr, werr)
			}
		}

		switch {
		case rerr == io.EOF:
			return written, nil
		case rerr != nil:
			if ctx.Err() != nil {
				return written, ErrCanceled
			}
			return written, NewHTTPNetworkError("read", urlStr, rerr)
		case n == 0:
			return written, nil
		}
	}
}
