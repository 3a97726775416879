package http

import (
	"crypto/tls"
	"net/url"
	"time"
)

const defaultUserAgent = "mirrordl/1.0"

type ClientConfig struct {
	// Connection settings
	ProxyURL              *url.URL
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	ExpectContinueTimeout time.Duration
	MaxRedirects          int

	// Timeouts
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	KeepAliveTimeout      time.Duration

	// TLS
	SkipTLSVerify bool
	TLSConfig     *tls.Config

	// ChunkSize is the read buffer used by Stream.
	ChunkSize int

	// Headers
	DefaultHeaders map[string]string
}

// DefaultConfig returns a ClientConfig with sensible defaults
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxRedirects:          10,
		DialTimeout:           30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		KeepAliveTimeout:      30 * time.Second,
		ChunkSize:             32 * 1024,

		DefaultHeaders: map[string]string{
			"User-Agent": defaultUserAgent,
		},
	}
}
