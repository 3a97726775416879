// Package fetch is a synchronous page retrieval helper used by parsers. It
// does not go through the download queue.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/NamanBalaji/mirrordl/internal/logger"
	httpproto "github.com/NamanBalaji/mirrordl/pkg/protocol/http"
)

var ErrFetchFailed = errors.New("fetch failed")

type Headers = map[string]string

// Requester performs one HTTP exchange. *httpproto.Client satisfies it.
type Requester interface {
	Do(ctx context.Context, req httpproto.Request) (*httpproto.Response, error)
}

type Fetcher struct {
	client Requester
}

func New(client Requester) *Fetcher {
	return &Fetcher{client: client}
}

// GetBody GETs url and returns the body when the status is 2xx. Otherwise the
// body is empty. The status is always returned; 0 means no response was
// received. The call blocks for the whole round trip and never retries.
func (f *Fetcher) GetBody(ctx context.Context, url string, headers Headers) ([]byte, int) {
	resp, err := f.client.Do(ctx, httpproto.Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers,
	})

	status := httpproto.StatusTransportFailure
	if resp != nil {
		status = resp.Status
	}

	if err != nil {
		logger.Warnf("GET failed: %s status=%d: %v", url, status, err)
		return nil, status
	}

	if !resp.OK() {
		logger.Warnf("GET failed: %s status=%d", url, status)
		return nil, status
	}

	return resp.Body, status
}

// ParseFunc turns a fetched page into T.
type ParseFunc[T any] func(body []byte) (T, error)

// FetchAndParse fetches url and hands a non-empty 2xx body to parse.
func FetchAndParse[T any](ctx context.Context, f *Fetcher, url string, headers Headers, parse ParseFunc[T]) (T, error) {
	var zero T

	body, status := f.GetBody(ctx, url, headers)
	if status < 200 || status >= 300 || len(body) == 0 {
		logger.Errorf("Failed to fetch page: %s", url)
		return zero, fmt.Errorf("%w: %s (status %d)", ErrFetchFailed, url, status)
	}

	v, err := parse(body)
	if err != nil {
		return zero, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return v, nil
}
